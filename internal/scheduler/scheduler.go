package scheduler

import (
	"context"
	"log/slog"
	"time"

	"article_cms/internal/domain"
)

// Auditor inspects the article hierarchy.
type Auditor interface {
	Audit(ctx context.Context) (*domain.AuditReport, error)
}

// Scheduler runs the hierarchy audit once at start and then every interval.
type Scheduler struct {
	auditor  Auditor
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

func NewScheduler(auditor Auditor, interval, timeout time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		auditor:  auditor,
		interval: interval,
		timeout:  timeout,
		logger:   logger.With("component", "scheduler"),
	}
}

// Start blocks until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	s.runAudit(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runAudit(ctx)
		}
	}
}

func (s *Scheduler) runAudit(ctx context.Context) {
	auditCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	report, err := s.auditor.Audit(auditCtx)
	if err != nil {
		s.logger.Error("audit failed", "error", err)
		return
	}

	if len(report.OrphanIDs) > 0 {
		s.logger.Warn("articles reference missing parents",
			"count", len(report.OrphanIDs),
			"ids", report.OrphanIDs,
		)
	}
	s.logger.Info("audit completed",
		"total", report.Total,
		"past_due", report.PastDue,
		"orphans", len(report.OrphanIDs),
	)
}
