package revenue

import (
	"context"
	"errors"
	"time"

	"github.com/prompttemplates/marketplace/internal/config"
	"github.com/prompttemplates/marketplace/internal/observability/metrics"
	"github.com/prompttemplates/marketplace/internal/stats"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const defaultInterval = time.Minute

type Params struct {
	fx.In

	Log      *zap.Logger
	Cfg      config.Config
	StatsSvc stats.Service
	Metrics  *metrics.PaymentMetrics `optional:"true"`
}

// Worker periodically snapshots revenue aggregates into metrics gauges so
// dashboards do not query the database on every scrape.
type Worker struct {
	log      *zap.Logger
	interval time.Duration
	statsSvc stats.Service
	metrics  *metrics.PaymentMetrics
}

func NewWorker(p Params) *Worker {
	interval := p.Cfg.RevenueSnapshotAt
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Worker{
		log:      p.Log.Named("revenue.snapshot"),
		interval: interval,
		statsSvc: p.StatsSvc,
		metrics:  p.Metrics,
	}
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := w.RunOnce(ctx); err != nil {
			w.log.Warn("revenue snapshot failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *Worker) RunOnce(ctx context.Context) error {
	if w.statsSvc == nil {
		return errors.New("stats_service_unavailable")
	}

	runCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	dashboard, err := w.statsSvc.Dashboard(runCtx)
	if err != nil {
		return err
	}

	w.metrics.SetRevenueSnapshot(dashboard.TotalSales, dashboard.SuccessfulPayments, dashboard.FailedPayments)
	return nil
}
