package metrics

import (
	"context"
	"sync/atomic"

	"github.com/prompttemplates/marketplace/internal/config"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PaymentMetrics tracks charge outcomes and snapshot revenue totals.
type PaymentMetrics struct {
	outcomes metric.Int64Counter

	totalSales   atomic.Int64
	completed    atomic.Int64
	failed       atomic.Int64
	registration metric.Registration
}

func NewPaymentMetrics(cfg config.Config, provider *Provider) (*PaymentMetrics, error) {
	meter := provider.MeterProvider.Meter(meterName(cfg.ServiceName, "payment"))

	outcomes, err := meter.Int64Counter("payment.charge.outcomes")
	if err != nil {
		return nil, err
	}

	m := &PaymentMetrics{outcomes: outcomes}

	totalSales, err := meter.Int64ObservableGauge("payment.revenue.total_sales")
	if err != nil {
		return nil, err
	}
	completed, err := meter.Int64ObservableGauge("payment.revenue.completed_count")
	if err != nil {
		return nil, err
	}
	failed, err := meter.Int64ObservableGauge("payment.revenue.failed_count")
	if err != nil {
		return nil, err
	}

	m.registration, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(totalSales, m.totalSales.Load())
		o.ObserveInt64(completed, m.completed.Load())
		o.ObserveInt64(failed, m.failed.Load())
		return nil
	}, totalSales, completed, failed)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordOutcome counts one charge attempt by result.
func (m *PaymentMetrics) RecordOutcome(ctx context.Context, succeeded bool) {
	if m == nil {
		return
	}
	result := "failed"
	if succeeded {
		result = "succeeded"
	}
	m.outcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// SetRevenueSnapshot publishes the latest revenue aggregates.
func (m *PaymentMetrics) SetRevenueSnapshot(totalSales, completed, failed int64) {
	if m == nil {
		return
	}
	m.totalSales.Store(totalSales)
	m.completed.Store(completed)
	m.failed.Store(failed)
}
