package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/cognitionx/trackerx/internal/config"
	"github.com/cognitionx/trackerx/internal/service/dashboard"
	"github.com/cognitionx/trackerx/internal/service/reporting"
)

// Scheduler manages scheduled tasks: the periodic dashboard reload and the
// daily audit summary export.
type Scheduler struct {
	cron         *cron.Cron
	reportingSvc *reporting.Service
	ctrl         *dashboard.Controller
	cfg          config.Config
	logger       *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg config.Config, reportingSvc *reporting.Service, ctrl *dashboard.Controller, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	// robfig/cron/v3 default parser is standard cron (5 fields: min, hour, dom, month, dow).
	c := cron.New()

	return &Scheduler{
		cron:         c,
		reportingSvc: reportingSvc,
		ctrl:         ctrl,
		cfg:          cfg,
		logger:       logger,
	}
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler")

	if _, err := s.cron.AddFunc(s.cfg.Dashboard.ReloadSchedule, s.reloadDashboard); err != nil {
		s.logger.Error("failed to schedule dashboard reload", zap.Error(err))
	}

	if _, err := s.cron.AddFunc(s.cfg.Reporting.CronSchedule, s.exportDailySummary); err != nil {
		s.logger.Error("failed to schedule daily summary export", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

// reloadDashboard re-runs the unfiltered work order load so the table stays
// fresh between user-triggered refreshes.
func (s *Scheduler) reloadDashboard() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s.ctrl.Refresh(ctx); err != nil {
		s.logger.Error("scheduled dashboard reload failed", zap.Error(err))
		return
	}
	s.logger.Debug("dashboard reloaded on schedule")
}

func (s *Scheduler) exportDailySummary() {
	s.logger.Info("exporting daily audit summary")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.reportingSvc.ExportDailySummary(ctx, time.Now()); err != nil {
		s.logger.Error("failed to export daily summary", zap.Error(err))
	}
}
