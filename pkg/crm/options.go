package crm

import (
	"time"

	"go.uber.org/zap"
)

var defaultSeedNames = []string{"Naveen", "Rahul", "Neo", "Kundan"}

const (
	defaultMaxSeedOrders = 100
	defaultSeedWorkers   = 4
	defaultEventCount    = 10
	defaultEventDelay    = time.Second
)

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for seeding and input rejection messages.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithSeedNames replaces the customers created at construction. An empty
// slice disables seeding.
func WithSeedNames(names []string) Option {
	return func(c *Client) {
		c.seedNames = names
	}
}

// WithMaxSeedOrders bounds the random order count attached to each seeded
// customer (uniform in [1, n]).
func WithMaxSeedOrders(n int) Option {
	return func(c *Client) {
		c.maxSeedOrders = n
	}
}

// WithEventDelay sets the pause between consecutive customer events.
func WithEventDelay(d time.Duration) Option {
	return func(c *Client) {
		c.eventDelay = d
	}
}

// WithEventCount sets how many events one CustomerEvents call emits.
func WithEventCount(n int) Option {
	return func(c *Client) {
		c.eventCount = n
	}
}
