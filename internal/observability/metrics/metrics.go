package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	kpiQueries    metric.Int64Counter
	otdInferences metric.Int64Counter
	entityWrites  metric.Int64Counter
	tenantFaults  metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "plantpulse"
	}
	meter := provider.Meter(name)

	kpiQueries, err := meter.Int64Counter("plantpulse_kpi_queries_total")
	if err != nil {
		return nil, err
	}
	otdInferences, err := meter.Int64Counter("plantpulse_otd_inferences_total")
	if err != nil {
		return nil, err
	}
	entityWrites, err := meter.Int64Counter("plantpulse_entity_writes_total")
	if err != nil {
		return nil, err
	}
	tenantFaults, err := meter.Int64Counter("plantpulse_tenant_faults_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		kpiQueries:    kpiQueries,
		otdInferences: otdInferences,
		entityWrites:  entityWrites,
		tenantFaults:  tenantFaults,
	}, nil
}

// RecordKPIQuery increments per-KPI query counts.
func (m *Metrics) RecordKPIQuery(ctx context.Context, kpi string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("kpi", strings.TrimSpace(kpi)))
	m.kpiQueries.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordOTDInference increments inference counts by provenance source.
func (m *Metrics) RecordOTDInference(ctx context.Context, source string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("source", strings.TrimSpace(source)))
	m.otdInferences.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordEntityWrite increments write counts per entity type.
func (m *Metrics) RecordEntityWrite(ctx context.Context, entity string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("entity", strings.TrimSpace(entity)))
	m.entityWrites.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordTenantFault counts client-mismatch integrity faults. These should
// stay at zero; any increase is a data leak investigation.
func (m *Metrics) RecordTenantFault(ctx context.Context, entity string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("entity", strings.TrimSpace(entity)))
	m.tenantFaults.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"kpi":         {},
	"source":      {},
	"entity":      {},
	"endpoint":    {},
	"status_code": {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
