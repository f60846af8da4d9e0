package roster

import (
	"log/slog"
	"sync"
)

// outbox hands events to a sink on a background goroutine, in emission
// order. WriteEvent never blocks on the sink, so board calls release their
// lock without waiting for journal I/O.
type outbox struct {
	sink EventWriter
	log  *slog.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	pending []Event
	queued  int
	written int
	closed  bool

	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
}

func newOutbox(sink EventWriter, logger *slog.Logger) *outbox {
	o := &outbox{
		sink: sink,
		log:  logger,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	o.cond = sync.NewCond(&o.mu)
	o.wg.Add(1)
	go o.run()
	return o
}

// WriteEvent queues e. After close it writes synchronously.
func (o *outbox) WriteEvent(e Event) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return o.sink.WriteEvent(e)
	}
	o.pending = append(o.pending, e)
	o.queued++
	o.mu.Unlock()
	select {
	case o.wake <- struct{}{}:
	default:
	}
	return nil
}

func (o *outbox) run() {
	defer o.wg.Done()
	for {
		select {
		case <-o.wake:
			o.drain()
		case <-o.done:
			o.drain()
			return
		}
	}
}

func (o *outbox) drain() {
	for {
		o.mu.Lock()
		batch := o.pending
		o.pending = nil
		o.mu.Unlock()
		if len(batch) == 0 {
			return
		}
		for _, e := range batch {
			if err := o.sink.WriteEvent(e); err != nil {
				o.log.Warn("journal write failed", "unit", e.UnitID, "kind", e.Kind, "err", err)
			}
		}
		o.mu.Lock()
		o.written += len(batch)
		o.cond.Broadcast()
		o.mu.Unlock()
	}
}

// flush blocks until every event queued so far has reached the sink.
func (o *outbox) flush() {
	o.mu.Lock()
	target := o.queued
	for o.written < target {
		o.cond.Wait()
	}
	o.mu.Unlock()
}

// close drains the queue and stops the goroutine.
func (o *outbox) close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	o.mu.Unlock()
	close(o.done)
	o.wg.Wait()
}
