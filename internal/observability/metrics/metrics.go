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
	movementsRecorded   metric.Int64Counter
	invoicesRecorded    metric.Int64Counter
	footprintRecomputes metric.Int64Counter
	ocrFallbacks        metric.Int64Counter
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
		name = "ecotrail"
	}
	meter := provider.Meter(name)

	movementsRecorded, err := meter.Int64Counter("ecotrail_movements_recorded_total")
	if err != nil {
		return nil, err
	}
	invoicesRecorded, err := meter.Int64Counter("ecotrail_invoices_recorded_total")
	if err != nil {
		return nil, err
	}
	footprintRecomputes, err := meter.Int64Counter("ecotrail_footprint_recomputes_total")
	if err != nil {
		return nil, err
	}
	ocrFallbacks, err := meter.Int64Counter("ecotrail_ocr_fallbacks_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		movementsRecorded:   movementsRecorded,
		invoicesRecorded:    invoicesRecorded,
		footprintRecomputes: footprintRecomputes,
		ocrFallbacks:        ocrFallbacks,
	}, nil
}

// RecordMovement increments recorded movement counts per transport mode.
func (m *Metrics) RecordMovement(ctx context.Context, mode string) {
	if m == nil {
		return
	}
	m.movementsRecorded.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", strings.TrimSpace(mode))))
}

// RecordInvoice increments recorded invoice counts per source type.
func (m *Metrics) RecordInvoice(ctx context.Context, invoiceType string) {
	if m == nil {
		return
	}
	m.invoicesRecorded.Add(ctx, 1, metric.WithAttributes(attribute.String("type", strings.TrimSpace(invoiceType))))
}

// RecordFootprintRecompute increments daily aggregation counts.
func (m *Metrics) RecordFootprintRecompute(ctx context.Context) {
	if m == nil {
		return
	}
	m.footprintRecomputes.Add(ctx, 1)
}

// RecordOCRFallback increments manual-entry fallback counts.
func (m *Metrics) RecordOCRFallback(ctx context.Context) {
	if m == nil {
		return
	}
	m.ocrFallbacks.Add(ctx, 1)
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	ctx := context.Background()
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "", "grpc":
		return otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(endpoint),
			otlpmetricgrpc.WithInsecure(),
		)
	case "http", "http/protobuf":
		return otlpmetrichttp.New(ctx,
			otlpmetrichttp.WithEndpoint(endpoint),
			otlpmetrichttp.WithInsecure(),
		)
	default:
		return nil, fmt.Errorf("unsupported otlp protocol %q", protocol)
	}
}
