package parallel

import (
	"runtime"
	"sync/atomic"
	"testing"
)

// =============================================================================
// Pool Creation Tests
// =============================================================================

func TestPool_Create(t *testing.T) {
	pool := NewPool(4)
	defer pool.Close()

	if pool.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", pool.Workers())
	}
	if !pool.IsRunning() {
		t.Error("Pool should be running after creation")
	}
}

func TestPool_CreateZeroWorkers(t *testing.T) {
	pool := NewPool(0)
	defer pool.Close()

	if want := runtime.GOMAXPROCS(0); pool.Workers() != want {
		t.Errorf("Workers() = %d, want %d (GOMAXPROCS)", pool.Workers(), want)
	}
}

// =============================================================================
// Range Tests
// =============================================================================

func TestPool_RangeCoversEveryIndex(t *testing.T) {
	pool := NewPool(4)
	defer pool.Close()

	const n = 10007
	hits := make([]atomic.Int32, n)
	pool.Range(n, 128, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			hits[i].Add(1)
		}
	})
	pool.Wait()

	for i := range hits {
		if got := hits[i].Load(); got != 1 {
			t.Fatalf("index %d visited %d times, want 1", i, got)
		}
	}
}

func TestPool_RangeDefaultChunk(t *testing.T) {
	pool := NewPool(3)
	defer pool.Close()

	var chunks, total atomic.Int64
	pool.Range(100, 0, func(lo, hi int) {
		chunks.Add(1)
		total.Add(int64(hi - lo))
	})
	pool.Wait()

	if chunks.Load() != 3 {
		t.Errorf("chunks = %d, want 3", chunks.Load())
	}
	if total.Load() != 100 {
		t.Errorf("total = %d, want 100", total.Load())
	}
}

func TestPool_RangeEmpty(t *testing.T) {
	pool := NewPool(2)
	defer pool.Close()

	called := false
	pool.Range(0, 16, func(lo, hi int) { called = true })
	pool.Wait()
	if called {
		t.Error("Range(0) should not call fn")
	}
}

// =============================================================================
// Ordering Tests
// =============================================================================

func TestPool_WaitOrdersStages(t *testing.T) {
	pool := NewPool(4)
	defer pool.Close()

	const n = 4096
	stage1 := make([]int32, n)
	var bad atomic.Int32

	for range 10 {
		pool.Range(n, 64, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				stage1[i]++
			}
		})
		pool.Wait()

		want := stage1[0]
		pool.Range(n, 64, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				if stage1[i] != want {
					bad.Add(1)
				}
			}
		})
		pool.Wait()
	}

	if bad.Load() != 0 {
		t.Errorf("%d reads observed unfinished writes", bad.Load())
	}
}

// =============================================================================
// Close Tests
// =============================================================================

func TestPool_CloseTwice(t *testing.T) {
	pool := NewPool(2)
	pool.Close()
	pool.Close()

	if pool.IsRunning() {
		t.Error("IsRunning() = true after Close")
	}
}

func TestPool_GoAfterCloseRunsInline(t *testing.T) {
	pool := NewPool(2)
	pool.Close()

	ran := false
	pool.Go(func() { ran = true })
	if !ran {
		t.Error("Go after Close should run inline")
	}
}
