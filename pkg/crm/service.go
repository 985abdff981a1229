package crm

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Client is the data access service. It owns the store and the id generator;
// all methods are safe for concurrent use without external locking.
type Client struct {
	store Store
	ids   idGenerator
	log   *zap.Logger

	seedNames     []string
	maxSeedOrders int
	seedWorkers   int
	eventCount    int
	eventDelay    time.Duration

	seeded chan struct{}
}

// New creates a Client backed by the given store and kicks off background
// seeding. The constructor does not wait for seeding: queries issued
// immediately after New may observe a partially populated store. Use Seeded
// to wait for the initial data.
func New(store Store, opts ...Option) *Client {
	c := &Client{
		store:         store,
		log:           zap.NewNop(),
		seedNames:     defaultSeedNames,
		maxSeedOrders: defaultMaxSeedOrders,
		seedWorkers:   defaultSeedWorkers,
		eventCount:    defaultEventCount,
		eventDelay:    defaultEventDelay,
		seeded:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.seed(context.Background())
	return c
}

// Seeded is closed once background seeding has finished.
func (c *Client) Seeded() <-chan struct{} {
	return c.seeded
}

// AddCustomer allocates a fresh id, stores the customer with an empty order
// collection, and returns it. Blank names are rejected with ErrInvalidName.
func (c *Client) AddCustomer(ctx context.Context, name string) (Customer, error) {
	if strings.TrimSpace(name) == "" {
		c.log.Warn("rejected blank customer name")
		return Customer{}, ErrInvalidName
	}
	id := c.ids.next()
	if _, err := c.store.Orders(ctx, id); err == nil {
		// The generator guarantees unique ids; a collision means the
		// invariant is broken and nothing downstream can be trusted.
		panic(fmt.Sprintf("crm: duplicate customer id %d", id))
	}
	cust := Customer{ID: id, Name: name}
	if err := c.store.Put(ctx, cust, []Order{}); err != nil {
		return Customer{}, fmt.Errorf("store customer: %w", err)
	}
	return cust, nil
}

// Customers returns a snapshot of all customers. Each call re-reads the
// store; ordering is unspecified but stable within one returned slice.
func (c *Client) Customers(ctx context.Context) ([]Customer, error) {
	return c.store.Customers(ctx)
}

// CustomerByID returns the customer with the given id, or ErrNotFound.
func (c *Client) CustomerByID(ctx context.Context, id int) (Customer, error) {
	customers, err := c.store.Customers(ctx)
	if err != nil {
		return Customer{}, err
	}
	for _, cust := range customers {
		if cust.ID == id {
			return cust, nil
		}
	}
	return Customer{}, ErrNotFound
}

// CustomersByName returns every customer whose name matches case-insensitively.
func (c *Client) CustomersByName(ctx context.Context, name string) ([]Customer, error) {
	customers, err := c.store.Customers(ctx)
	if err != nil {
		return nil, err
	}
	matches := make([]Customer, 0)
	for _, cust := range customers {
		if strings.EqualFold(cust.Name, name) {
			matches = append(matches, cust)
		}
	}
	return matches, nil
}

// OrdersFor returns a snapshot of the customer's orders. An unknown customer
// id yields an empty slice, not an error.
func (c *Client) OrdersFor(ctx context.Context, customerID int) ([]Order, error) {
	orders, err := c.store.Orders(ctx, customerID)
	if err == ErrNotFound {
		return []Order{}, nil
	}
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// seed populates the store with the configured names, each with a random
// number of orders. Runs once, in the background, on a bounded worker pool.
func (c *Client) seed(ctx context.Context) {
	defer close(c.seeded)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.seedWorkers)
	for _, name := range c.seedNames {
		name := name
		g.Go(func() error {
			cust, err := c.AddCustomer(ctx, name)
			if err != nil {
				return fmt.Errorf("seed %q: %w", name, err)
			}
			// Order ids restart at 1 for every customer.
			count := 1 + rand.Intn(c.maxSeedOrders)
			for orderID := 1; orderID <= count; orderID++ {
				o := Order{ID: orderID, CustomerID: cust.ID}
				if err := c.store.AppendOrder(ctx, cust.ID, o); err != nil {
					return fmt.Errorf("seed orders for %q: %w", name, err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		c.log.Error("seeding failed", zap.Error(err))
		return
	}
	c.log.Info("seeded customers", zap.Int("count", len(c.seedNames)))
}
