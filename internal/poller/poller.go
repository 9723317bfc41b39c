package poller

import (
	"context"
	"sync"
	"time"
)

// Poller runs a task at a fixed interval for the lifetime of a page. Unlike
// a bare ticker loop, it is tied to a context and can be stopped exactly
// once from any goroutine. Ticks never overlap: a slow task delays the next
// run instead of piling up.
type Poller struct {
	interval time.Duration
	task     func(ctx context.Context)

	started  bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// New creates a poller; nothing runs until Start.
func New(interval time.Duration, task func(ctx context.Context)) *Poller {
	return &Poller{
		interval: interval,
		task:     task,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the polling loop. The task runs once per interval until the
// context is cancelled or Stop is called.
func (p *Poller) Start(ctx context.Context) {
	p.started = true
	go func() {
		defer close(p.done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-p.stop:
				return
			case <-ticker.C:
				p.task(ctx)
			}
		}
	}()
}

// Stop ends the loop and waits for any in-progress task to finish. Safe to
// call multiple times.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		close(p.stop)
	})
	if p.started {
		<-p.done
	}
}
