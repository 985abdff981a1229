package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"crmflow/pkg/crm"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := New()
	c := crm.Customer{ID: 1, Name: "Naveen"}
	if err := s.Put(ctx, c, []crm.Order{}); err != nil {
		t.Fatalf("put: %v", err)
	}

	orders, err := s.Orders(ctx, 1)
	if err != nil {
		t.Fatalf("orders: %v", err)
	}
	if len(orders) != 0 {
		t.Fatalf("expected empty orders, got %d", len(orders))
	}

	if err := s.AppendOrder(ctx, 1, crm.Order{ID: 1, CustomerID: 1}); err != nil {
		t.Fatalf("append: %v", err)
	}
	orders, err = s.Orders(ctx, 1)
	if err != nil || len(orders) != 1 {
		t.Fatalf("orders after append: %v len=%d", err, len(orders))
	}

	customers, err := s.Customers(ctx)
	if err != nil || len(customers) != 1 {
		t.Fatalf("customers: %v len=%d", err, len(customers))
	}
	if customers[0].Name != "Naveen" {
		t.Fatalf("unexpected name: %s", customers[0].Name)
	}
}

func TestStoreUnknownCustomer(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, err := s.Orders(ctx, 42); err != crm.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.AppendOrder(ctx, 42, crm.Order{ID: 1, CustomerID: 42}); err != crm.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStorePutOverwrites(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.Put(ctx, crm.Customer{ID: 1, Name: "Naveen"}, []crm.Order{{ID: 1, CustomerID: 1}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put(ctx, crm.Customer{ID: 1, Name: "Rahul"}, []crm.Order{}); err != nil {
		t.Fatalf("put again: %v", err)
	}
	orders, err := s.Orders(ctx, 1)
	if err != nil || len(orders) != 0 {
		t.Fatalf("expected overwritten empty orders, got %v len=%d", err, len(orders))
	}
	customers, _ := s.Customers(ctx)
	if len(customers) != 1 || customers[0].Name != "Rahul" {
		t.Fatalf("expected single overwritten customer, got %v", customers)
	}
}

func TestStoreConcurrentAppendsAndReads(t *testing.T) {
	ctx := context.Background()
	s := New()
	const customers = 4
	const perWriter = 100
	const writers = 5
	for id := 1; id <= customers; id++ {
		if err := s.Put(ctx, crm.Customer{ID: id, Name: fmt.Sprintf("c%d", id)}, []crm.Order{}); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	var wg sync.WaitGroup
	for id := 1; id <= customers; id++ {
		for w := 0; w < writers; w++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				for i := 0; i < perWriter; i++ {
					if err := s.AppendOrder(ctx, id, crm.Order{ID: i, CustomerID: id}); err != nil {
						t.Errorf("append: %v", err)
						return
					}
				}
			}(id)
		}
	}
	// Readers iterate snapshots while the appends run.
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				all, err := s.Customers(ctx)
				if err != nil {
					t.Errorf("customers: %v", err)
					return
				}
				for _, c := range all {
					if _, err := s.Orders(ctx, c.ID); err != nil {
						t.Errorf("orders: %v", err)
						return
					}
				}
			}
		}()
	}
	wg.Wait()

	for id := 1; id <= customers; id++ {
		orders, err := s.Orders(ctx, id)
		if err != nil {
			t.Fatalf("orders: %v", err)
		}
		if len(orders) != writers*perWriter {
			t.Fatalf("customer %d: expected %d orders, got %d (lost appends)", id, writers*perWriter, len(orders))
		}
	}
}
