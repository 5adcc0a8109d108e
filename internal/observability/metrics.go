package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Metrics bundles the instruments the redirect core reports on. Counters
// are exported in Prometheus format via the registry held alongside them.
type Metrics struct {
	Registry      *prometheus.Registry
	MeterProvider *sdkmetric.MeterProvider

	Redirects      metric.Int64Counter // by outcome attribute
	ClicksRecorded metric.Int64Counter
	ClicksDropped  metric.Int64Counter
	SlugsGenerated metric.Int64Counter // by mode attribute
}

// NewMetrics builds a meter provider backed by a Prometheus exporter and
// registers the service counters on it.
func NewMetrics(serviceName string) (*Metrics, error) {
	registry := prometheus.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter(serviceName)

	m := &Metrics{Registry: registry, MeterProvider: provider}

	if m.Redirects, err = meter.Int64Counter("redirects_total",
		metric.WithDescription("Terminal resolution outcomes by kind")); err != nil {
		return nil, err
	}
	if m.ClicksRecorded, err = meter.Int64Counter("clicks_recorded_total",
		metric.WithDescription("Click events persisted")); err != nil {
		return nil, err
	}
	if m.ClicksDropped, err = meter.Int64Counter("clicks_dropped_total",
		metric.WithDescription("Click events lost to recorder failures")); err != nil {
		return nil, err
	}
	if m.SlugsGenerated, err = meter.Int64Counter("slugs_generated_total",
		metric.WithDescription("Slugs issued by generation mode")); err != nil {
		return nil, err
	}

	return m, nil
}
