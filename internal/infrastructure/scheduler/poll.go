package scheduler

import (
	"context"
	"time"

	"eumenides/internal/ports"
)

// PollScheduler triggers the crawl job on a fixed interval, with an
// immediate first run.
type PollScheduler struct {
	interval time.Duration
	stop     chan struct{}
}

var _ ports.Scheduler = (*PollScheduler)(nil)

// NewPollScheduler builds a scheduler ticking every interval.
func NewPollScheduler(interval time.Duration) *PollScheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &PollScheduler{interval: interval}
}

// Start begins ticking until the context is cancelled or Stop is called.
func (p *PollScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	if p.stop != nil {
		return nil
	}

	p.stop = make(chan struct{})
	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		job(time.Now())
		for {
			select {
			case t := <-ticker.C:
				job(t)
			case <-ctx.Done():
				return
			case <-p.stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the ticker goroutine.
func (p *PollScheduler) Stop(ctx context.Context) error {
	if p.stop == nil {
		return nil
	}
	close(p.stop)
	p.stop = nil
	return nil
}
