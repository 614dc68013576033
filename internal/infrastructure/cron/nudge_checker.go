package cron

import (
	"context"
	"fmt"
	"time"

	"habit-garden/internal/domain/service"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// scanTimeout bounds one nudge scan
const scanTimeout = 5 * time.Minute

// NudgeChecker periodically looks for lapsed habits and publishes nudge events
type NudgeChecker struct {
	habitService service.HabitService
	cron         *cron.Cron
	interval     time.Duration
	logger       *zap.Logger
}

// NewNudgeChecker creates a new nudge checker
func NewNudgeChecker(habitService service.HabitService, checkInterval time.Duration, logger *zap.Logger) *NudgeChecker {
	return &NudgeChecker{
		habitService: habitService,
		cron:         cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		interval:     checkInterval,
		logger:       logger,
	}
}

// Start schedules the scan
func (n *NudgeChecker) Start() error {
	cronExpr := fmt.Sprintf("@every %s", n.interval.String())

	if _, err := n.cron.AddFunc(cronExpr, n.RunOnce); err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	n.cron.Start()
	n.logger.Info("nudge_checker_started", zap.Duration("interval", n.interval))
	return nil
}

// Stop waits for a running scan to finish
func (n *NudgeChecker) Stop() {
	ctx := n.cron.Stop()
	<-ctx.Done()
	n.logger.Info("nudge_checker_stopped")
}

// RunOnce performs a single scan
func (n *NudgeChecker) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	due, err := n.habitService.ProcessNudges(ctx)
	if err != nil {
		n.logger.Error("nudge_scan_failed", zap.Error(err))
		return
	}

	n.logger.Debug("nudge_scan_completed", zap.Int("due", due))
}
