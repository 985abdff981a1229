package crm

import (
	"sync"
	"testing"
)

func TestIDGeneratorUniqueUnderConcurrency(t *testing.T) {
	var g idGenerator
	const goroutines = 50
	const perGoroutine = 200

	results := make([][]int, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids := make([]int, 0, perGoroutine)
			for j := 0; j < perGoroutine; j++ {
				ids = append(ids, g.next())
			}
			results[i] = ids
		}(i)
	}
	wg.Wait()

	seen := make(map[int]bool, goroutines*perGoroutine)
	for _, ids := range results {
		prev := 0
		for _, id := range ids {
			if seen[id] {
				t.Fatalf("id %d handed out twice", id)
			}
			seen[id] = true
			if id <= prev {
				t.Fatalf("ids not increasing within one caller: %d after %d", id, prev)
			}
			prev = id
		}
	}
	if len(seen) != goroutines*perGoroutine {
		t.Fatalf("expected %d distinct ids, got %d", goroutines*perGoroutine, len(seen))
	}
}
