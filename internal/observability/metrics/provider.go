package metrics

import (
	"net/http"
	"strings"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Provider bundles the otel meter provider with its prometheus registry so
// the server can mount the exposition endpoint.
type Provider struct {
	MeterProvider metric.MeterProvider
	registry      *promclient.Registry
}

// NewProvider wires an otel meter provider backed by a prometheus exporter.
func NewProvider() (*Provider, error) {
	registry := promclient.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, err
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	return &Provider{MeterProvider: provider, registry: registry}, nil
}

// Handler serves the prometheus exposition format.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func meterName(serviceName, suffix string) string {
	name := strings.TrimSpace(serviceName)
	if name == "" {
		name = "marketplace"
	}
	return name + "/" + suffix
}
