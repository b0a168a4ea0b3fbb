// Package scheduler wires up the cron job that periodically drops favorite
// ids whose job no longer exists.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Pruner removes dangling favorites and reports how many it dropped.
type Pruner interface {
	PruneFavorites(ctx context.Context) (int, error)
}

// Scheduler wraps robfig/cron and manages the prune loop.
type Scheduler struct {
	cron   *cron.Cron
	pruner Pruner
	log    logrus.FieldLogger
	spec   string // cron spec, e.g. "@every 60m"
}

// New creates a Scheduler that fires every intervalMinutes minutes.
func New(pruner Pruner, log logrus.FieldLogger, intervalMinutes int) *Scheduler {
	log = log.WithField("component", "scheduler")
	logger := cron.PrintfLogger(log)
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(logger), cron.WithChain(cron.SkipIfStillRunning(logger))),
		pruner: pruner,
		log:    log,
		spec:   fmt.Sprintf("@every %dm", intervalMinutes),
	}
}

// Spec returns the cron spec the job is registered with.
func (s *Scheduler) Spec() string { return s.spec }

// Start registers the job and starts the scheduler. One prune runs
// immediately so favorites left over from a previous run are cleaned up
// without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.log.WithField("spec", s.spec).Info("cron started")

	go s.RunOnce(ctx)

	return nil
}

// Stop shuts down the scheduler and waits for a running prune to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("cron stopped")
}

// RunOnce runs a single prune. Failures are logged, never returned.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	removed, err := s.pruner.PruneFavorites(ctx)
	if err != nil {
		s.log.WithError(err).Warn("prune favorites failed")
		return 0
	}
	if removed > 0 {
		s.log.WithField("removed", removed).Info("pruned dangling favorites")
	}
	return removed
}
