package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/multierr"
)

type MetricsExporter uint8

const (
	NoMetrics MetricsExporter = iota
	StdoutMetrics
	PrometheusMetrics
	_metricsMax
)

func (e MetricsExporter) String() string {
	switch e {
	case NoMetrics:
		return "none"
	case StdoutMetrics:
		return "stdout"
	case PrometheusMetrics:
		return "prometheus"
	default:
	}
	return "unknown"
}

func ParseMetricsExporter(exporter string) (MetricsExporter, bool) {
	switch strings.ToLower(strings.TrimSpace(exporter)) {
	case "", "none":
		return NoMetrics, true
	case "stdout", "otel":
		return StdoutMetrics, true
	case "prometheus", "prom":
		return PrometheusMetrics, true
	default:
	}
	return _metricsMax, false
}

// ShutdownFunc flushes the collected metrics, once.
type ShutdownFunc func(ctx context.Context) error

const defaultExportInterval = time.Minute

// NewMeterProvider sets up the exporter and installs the provider as
// the otel global. Both exporters write everything on shutdown,
// the CLI runs are too short for periodic exports.
func NewMeterProvider(exporter MetricsExporter, w io.Writer) (metric.MeterProvider, ShutdownFunc, error) {
	var (
		mp       *sdkmetric.MeterProvider
		shutdown ShutdownFunc
		err      error
	)
	switch exporter {
	case NoMetrics:
		return noop.NewMeterProvider(), func(context.Context) error { return nil }, nil
	case StdoutMetrics:
		mp, shutdown, err = newConsoleMetricsExporter(w, defaultExportInterval, 5*time.Second)
	case PrometheusMetrics:
		mp, shutdown, err = newPrometheusMetricsExporter(w)
	default:
		return nil, nil, errors.New("[observability] unknown metrics exporter " + exporter.String())
	}
	if err != nil {
		return nil, nil, err
	}
	if err = otelruntime.Start(otelruntime.WithMeterProvider(mp)); err != nil {
		return nil, nil, multierr.Append(err, mp.Shutdown(context.Background()))
	}
	otel.SetMeterProvider(mp)
	return mp, shutdown, nil
}

// Serves for test/dev environment.
func newConsoleMetricsExporter(w io.Writer, interval, timeout time.Duration) (*sdkmetric.MeterProvider, ShutdownFunc, error) {
	exporter, err := stdoutmetric.New(
		stdoutmetric.WithWriter(w),
		stdoutmetric.WithPrettyPrint(),
	)
	if err != nil {
		return nil, nil, err
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewPeriodicReader(
		exporter,
		sdkmetric.WithInterval(interval),
		sdkmetric.WithTimeout(timeout),
	)))
	return mp, mp.Shutdown, nil
}

// The registry is dumped in the text exposition format on shutdown
// instead of being served over HTTP.
func newPrometheusMetricsExporter(w io.Writer) (*sdkmetric.MeterProvider, ShutdownFunc, error) {
	registry := promclient.NewRegistry()
	exporter, err := prometheus.New(
		prometheus.WithRegisterer(registry),
		prometheus.WithoutScopeInfo(),
	)
	if err != nil {
		return nil, nil, err
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	return mp, func(ctx context.Context) error {
		families, err := registry.Gather()
		for _, mf := range families {
			if _, writeErr := expfmt.MetricFamilyToText(w, mf); writeErr != nil {
				err = multierr.Append(err, writeErr)
				break
			}
		}
		return multierr.Append(err, mp.Shutdown(ctx))
	}, nil
}
