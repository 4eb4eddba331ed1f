package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a pool of goroutines that executes grid dispatches.
//
// Each worker owns a queue. Idle workers steal from the other queues, which
// keeps the load even when chunks of a dispatch cost different amounts
// (reflect chunks near the table end are shorter than the rest).
//
// Work is issued asynchronously by Range and Go and completed by Wait. The
// pool is meant to be driven from one goroutine: Range, Go and Wait must not
// be called concurrently with each other.
type Pool struct {
	workers int

	// queues holds per-worker work queues.
	queues []chan func()

	done chan struct{}
	wg   sync.WaitGroup

	// pending counts issued but unfinished work items.
	pending sync.WaitGroup

	running atomic.Bool

	// next is the queue that receives the next item.
	next int
}

// NewPool creates a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := max(workers*4, 8)

	p := &Pool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan func(), queueSize)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	own := p.queues[id]
	for {
		select {
		case <-p.done:
			p.drain(own)
			return
		case fn := <-own:
			fn()
		default:
			if fn := p.steal(id); fn != nil {
				fn()
				continue
			}
			select {
			case <-p.done:
				p.drain(own)
				return
			case fn := <-own:
				fn()
			}
		}
	}
}

func (p *Pool) drain(queue chan func()) {
	for {
		select {
		case fn := <-queue:
			fn()
		default:
			return
		}
	}
}

// steal takes one item from another worker's queue, or returns nil.
func (p *Pool) steal(self int) func() {
	for i := range p.workers {
		if i == self {
			continue
		}
		select {
		case fn := <-p.queues[i]:
			return fn
		default:
		}
	}
	return nil
}

// Go issues fn without waiting for it. If the pool is closed, fn runs
// inline.
func (p *Pool) Go(fn func()) {
	if fn == nil {
		return
	}
	if !p.running.Load() {
		fn()
		return
	}

	p.pending.Add(1)
	wrapped := func() {
		defer p.pending.Done()
		fn()
	}

	q := p.queues[p.next]
	p.next = (p.next + 1) % p.workers
	select {
	case q <- wrapped:
	case <-p.done:
		wrapped()
	}
}

// Range splits [0, n) into chunks of at most chunk items and issues
// fn(lo, hi) for each one. It does not wait; call Wait to complete the
// dispatch.
func (p *Pool) Range(n, chunk int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	if chunk <= 0 {
		chunk = (n + p.workers - 1) / p.workers
	}
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		p.Go(func() { fn(lo, hi) })
	}
}

// Wait blocks until every issued item has finished.
func (p *Pool) Wait() {
	p.pending.Wait()
}

// Close waits for queued work and stops the workers.
// Close is safe to call multiple times.
func (p *Pool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *Pool) Workers() int {
	return p.workers
}

// IsRunning reports whether the pool accepts work.
func (p *Pool) IsRunning() bool {
	return p.running.Load()
}
