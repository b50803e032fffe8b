package scheduler

import (
	"context"
	"time"

	"github.com/Juadebfm/ecorewards-deploy/internal/service"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ReconcileScheduler runs the counter reconciliation pass on a cron
// cadence so drifted counters heal without operator action.
type ReconcileScheduler struct {
	cron      *cron.Cron
	reconcile *service.ReconcileService
	cronExpr  string
}

func NewReconcileScheduler(reconcile *service.ReconcileService, cronExpr string) *ReconcileScheduler {
	return &ReconcileScheduler{
		cron:      cron.New(cron.WithSeconds()),
		reconcile: reconcile,
		cronExpr:  cronExpr,
	}
}

func (s *ReconcileScheduler) Start() error {
	_, err := s.cron.AddFunc(s.cronExpr, s.run)
	if err != nil {
		return err
	}

	s.cron.Start()
	logrus.WithField("cron", s.cronExpr).Info("Reconciliation scheduler started")
	return nil
}

func (s *ReconcileScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logrus.Info("Reconciliation scheduler stopped")
}

func (s *ReconcileScheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if _, err := s.reconcile.Run(ctx); err != nil {
		logrus.WithError(err).Error("Scheduled reconciliation failed")
	}
}
