// Package jobs runs periodic maintenance in the background.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"tutor-service/pkg/sl"
)

const reconcileTimeout = 5 * time.Minute

type Reconciler interface {
	ReconcileAggregates(ctx context.Context) (int64, error)
}

type Scheduler struct {
	log  *slog.Logger
	cron *cron.Cron
	rec  Reconciler
}

// New schedules aggregate reconciliation on spec, a standard cron
// expression or a descriptor such as "@hourly".
func New(log *slog.Logger, spec string, rec Reconciler) (*Scheduler, error) {
	const op = "jobs.New"

	s := &Scheduler{
		log:  log.With(slog.String("component", "jobs")),
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		rec:  rec,
	}

	if _, err := s.cron.AddFunc(spec, s.Reconcile); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.log.Info("scheduler started")
	s.cron.Start()
}

// Stop waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
		s.log.Info("scheduler stopped")
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out")
	}
}

// Reconcile recomputes the lesson counters once.
func (s *Scheduler) Reconcile() {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()

	start := time.Now()
	fixed, err := s.rec.ReconcileAggregates(ctx)
	if err != nil {
		s.log.Error("failed to reconcile aggregates", sl.Err(err))
		return
	}

	s.log.Info("aggregates reconciled",
		slog.Int64("fixed", fixed),
		slog.String("duration", time.Since(start).String()),
	)
}
