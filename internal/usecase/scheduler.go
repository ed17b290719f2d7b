package usecase

import (
	"context"
	"log/slog"
	"time"

	"NewsPolarity/internal/ports"
)

// Cycle runs scrape then analysis once; used by the watch loop.
type Cycle struct {
	Scrape   *ScrapePipeline
	Analysis *AnalysisPipeline
	Logger   *slog.Logger
}

// Run executes both stages. A scrape failure does not block analysis of older batches.
func (c *Cycle) Run(ctx context.Context, trigger time.Time) {
	if c.Scrape != nil {
		report, err := c.Scrape.Run(ctx)
		if err != nil {
			c.logError("scrape failed", "trigger", trigger, "error", err)
		} else {
			c.info("scrape done", "trigger", trigger, "fetched", report.Fetched, "batches", len(report.Keys))
		}
	}
	if c.Analysis != nil {
		if _, err := c.Analysis.Run(ctx); err != nil {
			c.logError("analysis failed", "trigger", trigger, "error", err)
		}
	}
}

func (c *Cycle) info(msg string, args ...any) {
	if c.Logger != nil {
		c.Logger.Info(msg, args...)
	}
}

func (c *Cycle) logError(msg string, args ...any) {
	if c.Logger != nil {
		c.Logger.Error(msg, args...)
	}
}

// Scheduler wires the interval driver with the pipeline cycle.
type Scheduler struct {
	driver ports.Scheduler
	cycle  *Cycle
}

// NewScheduler returns a helper to start/stop recurring jobs.
func NewScheduler(driver ports.Scheduler, cycle *Cycle) *Scheduler {
	return &Scheduler{driver: driver, cycle: cycle}
}

// Start registers the cycle with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.cycle == nil {
		return nil
	}

	job := func(trigger time.Time) {
		s.cycle.Run(ctx, trigger)
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
