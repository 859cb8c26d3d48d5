package parallel

import (
	"sync/atomic"
	"testing"
)

func TestParallelizeCoversAllItems(t *testing.T) {
	const items = 1000
	seen := make([]int32, items)

	Parallelize(items, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&seen[i], 1)
		}
	})

	for i, count := range seen {
		if count != 1 {
			t.Fatalf("item %d visited %d times, want 1", i, count)
		}
	}
}

func TestParallelizeZeroItems(t *testing.T) {
	called := false
	Parallelize(0, func(start, end int) {
		called = true
	})
	if called {
		t.Error("fn should not be called for zero items")
	}
}

func TestParallelizeFewerItemsThanWorkers(t *testing.T) {
	var total int64
	Parallelize(2, func(start, end int) {
		atomic.AddInt64(&total, int64(end-start))
	})
	if total != 2 {
		t.Fatalf("covered %d items, want 2", total)
	}
}

func TestParallelizeWithThreshold(t *testing.T) {
	t.Run("below threshold runs sequentially", func(t *testing.T) {
		var calls int32
		ParallelizeWithThreshold(10, 100, func(start, end int) {
			atomic.AddInt32(&calls, 1)
			if start != 0 || end != 10 {
				t.Errorf("expected single full range, got [%d, %d)", start, end)
			}
		})
		if calls != 1 {
			t.Fatalf("expected 1 call, got %d", calls)
		}
	})

	t.Run("above threshold covers all items", func(t *testing.T) {
		var total int64
		ParallelizeWithThreshold(500, 100, func(start, end int) {
			atomic.AddInt64(&total, int64(end-start))
		})
		if total != 500 {
			t.Fatalf("covered %d items, want 500", total)
		}
	})
}
