package observability

import (
	"context"
	"os"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/multierr"
)

const appStatsPrefix = "xbst/app"

func appStatsName(name string) string {
	builder := &strings.Builder{}
	builder.WriteString(appStatsPrefix)
	builder.WriteString("/")
	if name = strings.TrimSpace(name); name != "" {
		builder.WriteString(name)
	} else {
		builder.WriteString("default")
	}
	return builder.String()
}

// StartAppStats observes the goroutines, GOMAXPROCS and the resident
// memory of the current process on every collection.
func StartAppStats(mp metric.MeterProvider, name string) error {
	meter := mp.Meter(
		appStatsName(name),
		metric.WithInstrumentationVersion(otelruntime.Version()),
	)

	var merr error
	_, err := meter.Int64ObservableUpDownCounter(
		"app.core.goroutines",
		metric.WithDescription(`The application goroutines' info.`),
		metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
			ob.Observe(int64(runtime.NumGoroutine()))
			return nil
		}),
	)
	merr = multierr.Append(merr, err)

	_, err = meter.Int64ObservableUpDownCounter(
		"app.core.processes",
		metric.WithDescription(`The application processes' info.`),
		metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
			ob.Observe(int64(runtime.GOMAXPROCS(0)))
			return nil
		}),
	)
	merr = multierr.Append(merr, err)

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return multierr.Append(merr, err)
	}
	_, err = meter.Int64ObservableGauge(
		"app.core.rss",
		metric.WithDescription(`The resident set size of the application.`),
		metric.WithUnit("By"),
		metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
			mem, err := proc.MemoryInfoWithContext(ctx)
			if err != nil {
				return err
			}
			ob.Observe(int64(mem.RSS))
			return nil
		}),
	)
	return multierr.Append(merr, err)
}
