// Package crm provides concurrent in-memory access to customers, their
// orders, and a synthetic per-customer event stream.
package crm

import (
	"context"
	"errors"
)

// Customer is an identified party. ID is unique and immutable once assigned.
type Customer struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Order is a record belonging to exactly one customer. IDs are scoped to the
// owning customer's collection and are not globally unique.
type Order struct {
	ID         int `json:"id"`
	CustomerID int `json:"customerId"`
}

// EventType classifies a synthetic customer event.
type EventType string

const (
	EventCreated EventType = "CREATED"
	EventUpdated EventType = "UPDATED"
)

// CustomerEvent is one tick of a simulated activity feed. Events are produced
// on demand and never stored.
type CustomerEvent struct {
	Customer Customer  `json:"customer"`
	Type     EventType `json:"event"`
}

// Store defines behavior for keeping customers and their orders.
type Store interface {
	// Put inserts a customer with the given initial orders. Putting an
	// existing customer id overwrites the whole entry.
	Put(ctx context.Context, c Customer, orders []Order) error
	// Orders returns a snapshot of the customer's order collection.
	Orders(ctx context.Context, customerID int) ([]Order, error)
	// Customers returns a snapshot of all stored customers, safe to iterate
	// while writers run.
	Customers(ctx context.Context) ([]Customer, error)
	// AppendOrder adds one order to an existing customer's collection.
	AppendOrder(ctx context.Context, customerID int, o Order) error
}

// ErrNotFound indicates the requested customer does not exist.
var ErrNotFound = errors.New("customer not found")

// ErrInvalidName indicates an empty or blank customer name. AddCustomer
// rejects such input rather than storing it.
var ErrInvalidName = errors.New("customer name must not be blank")
