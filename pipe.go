package webcodecs

import (
	"context"
	"sync"
)

// pipe is the delivery primitive behind every output stream: an unbounded
// FIFO of output units plus a single-slot terminal status cell. Engine
// callbacks push into it and never block; a single consumer pulls from it.
//
// Read discipline: queued data is preferred over the terminal status, so
// units enqueued before the engine died are still delivered in order. Once
// the queue is drained (or a unit arrives after the terminal status was
// recorded, in which case it is discarded) every read returns the same
// terminal status.
type pipe[T any] struct {
	mu       sync.Mutex
	queue    []T
	terminal error
	dropped  bool // consumer closed its half

	notify chan struct{} // 1-buffered wakeup for the single consumer
	done   chan struct{} // closed once terminal is set

	// discard releases a unit that will never reach the consumer.
	// May be nil for units without host resources.
	discard func(T)
}

func newPipe[T any](discard func(T)) *pipe[T] {
	return &pipe[T]{
		notify:  make(chan struct{}, 1),
		done:    make(chan struct{}),
		discard: discard,
	}
}

func (p *pipe[T]) wake() {
	select {
	case p.notify <- struct{}{}:
	default:
	}
}

// push enqueues one unit. It reports false when the consumer half is gone,
// in which case the unit was discarded; the caller records ErrDropped.
// Units arriving after the terminal status are silently discarded because
// the engine connection is already severed.
func (p *pipe[T]) push(item T) bool {
	p.mu.Lock()
	if p.dropped || p.terminal != nil {
		wasDropped := p.dropped
		discard := p.discard
		p.mu.Unlock()
		if discard != nil {
			discard(item)
		}
		return !wasDropped
	}
	p.queue = append(p.queue, item)
	p.mu.Unlock()
	p.wake()
	return true
}

// fail records the terminal status. The first status wins; later calls,
// including a clean close after an error, are ignored.
func (p *pipe[T]) fail(err error) {
	p.mu.Lock()
	if p.terminal == nil {
		p.terminal = err
		close(p.done)
	}
	p.mu.Unlock()
	p.wake()
}

// closed returns a channel that is closed once the terminal status fires.
func (p *pipe[T]) closed() <-chan struct{} { return p.done }

// terminalErr returns the recorded terminal status, or nil.
func (p *pipe[T]) terminalErr() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.terminal
}

// next returns the next queued unit, suspending until one is pushed or the
// terminal status fires. After the queue drains, it returns the terminal
// status on every call.
func (p *pipe[T]) next(ctx context.Context) (T, error) {
	var zero T
	for {
		p.mu.Lock()
		if len(p.queue) > 0 {
			item := p.queue[0]
			p.queue = p.queue[1:]
			p.mu.Unlock()
			return item, nil
		}
		if p.terminal != nil {
			err := p.terminal
			p.mu.Unlock()
			return zero, err
		}
		p.mu.Unlock()

		select {
		case <-p.notify:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// close tears down the consumer half. Queued units are released and any
// later push becomes a no-op.
func (p *pipe[T]) close() {
	p.mu.Lock()
	queued := p.queue
	p.queue = nil
	p.dropped = true
	discard := p.discard
	p.mu.Unlock()
	if discard != nil {
		for _, item := range queued {
			discard(item)
		}
	}
}

// watchCell is a single-writer observable slot holding the most recent
// value. Readers get an owned snapshot; waiters are released by the first
// store. Later stores replace the value (last-write-wins).
type watchCell[T any] struct {
	mu    sync.Mutex
	value T
	set   bool
	ready chan struct{}
}

func newWatchCell[T any]() *watchCell[T] {
	return &watchCell[T]{ready: make(chan struct{})}
}

func (c *watchCell[T]) store(v T) {
	c.mu.Lock()
	c.value = v
	first := !c.set
	c.set = true
	c.mu.Unlock()
	if first {
		close(c.ready)
	}
}

func (c *watchCell[T]) load() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.set
}

// present returns a channel that is closed once a value has been stored.
func (c *watchCell[T]) present() <-chan struct{} { return c.ready }
