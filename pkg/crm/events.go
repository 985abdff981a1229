package crm

import (
	"context"
	"math/rand"
	"time"
)

// CustomerEvents produces a paced stream of synthetic activity for the given
// customer: one randomly typed CREATED/UPDATED event per delay interval,
// closing the channel after the configured count. An unknown customer id
// yields an already-closed channel. Cancelling ctx stops the producer and
// releases its timer; the remaining events are never generated. Every call
// resolves the customer and draws fresh random types.
func (c *Client) CustomerEvents(ctx context.Context, customerID int) <-chan CustomerEvent {
	out := make(chan CustomerEvent)

	cust, err := c.CustomerByID(ctx, customerID)
	if err != nil {
		close(out)
		return out
	}

	go func() {
		defer close(out)
		timer := time.NewTimer(c.eventDelay)
		defer timer.Stop()
		for i := 0; i < c.eventCount; i++ {
			if i > 0 {
				timer.Reset(c.eventDelay)
			}
			select {
			case <-timer.C:
			case <-ctx.Done():
				return
			}
			ev := CustomerEvent{Customer: cust, Type: EventCreated}
			if rand.Float64() > .5 {
				ev.Type = EventUpdated
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
