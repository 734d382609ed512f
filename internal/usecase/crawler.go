package usecase

import (
	"context"
	"log/slog"
	"time"

	"eumenides/internal/ports"
)

// Crawler wires the poll driver with the ingestion use case, walking the
// configured seed handles on every tick.
type Crawler struct {
	driver   ports.Scheduler
	ingest   *Ingest
	platform string
	handles  []string
	delay    time.Duration
	logger   *slog.Logger
}

// NewCrawler returns a helper to start/stop the recurring crawl. delay is
// the pause between consecutive handles within one pass, keeping pressure
// on the provider low.
func NewCrawler(driver ports.Scheduler, ingest *Ingest, platform string, handles []string, delay time.Duration, logger *slog.Logger) *Crawler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Crawler{
		driver:   driver,
		ingest:   ingest,
		platform: platform,
		handles:  handles,
		delay:    delay,
		logger:   logger,
	}
}

// Start registers the crawl pass with the provided scheduler.
func (c *Crawler) Start(ctx context.Context) error {
	if c.driver == nil || c.ingest == nil {
		return nil
	}

	job := func(trigger time.Time) {
		c.runPass(ctx, trigger)
	}

	return c.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (c *Crawler) Stop(ctx context.Context) error {
	if c.driver == nil {
		return nil
	}

	return c.driver.Stop(ctx)
}

func (c *Crawler) runPass(ctx context.Context, trigger time.Time) {
	c.logger.Debug("crawl pass", "platform", c.platform, "handles", len(c.handles), "trigger", trigger.UTC().Format(time.RFC3339))

	for _, handle := range c.handles {
		if ctx.Err() != nil {
			return
		}

		if err := c.ingest.Execute(ctx, c.platform, handle); err != nil {
			c.logger.Error("ingest failed", "platform", c.platform, "handle", handle, "error", err)
		}

		if c.delay > 0 {
			select {
			case <-time.After(c.delay):
			case <-ctx.Done():
				return
			}
		}
	}
}
