package observability

import (
	"context"
	"runtime"
	"strings"

	"github.com/samber/lo"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	AppStatsName = "xboot/xtree-app"
)

type AppStats struct {
	goroutines metric.Int64ObservableUpDownCounter
	processes  metric.Int64ObservableUpDownCounter
}

func appStatsMeterName(name string) string {
	builder := &strings.Builder{}
	builder.WriteString(AppStatsName)
	builder.Write([]byte("/"))
	if len(strings.TrimSpace(name)) > 0 {
		builder.WriteString(name)
	} else {
		builder.WriteString("default")
	}
	return builder.String()
}

// NewAppStats observes the goroutines and GOMAXPROCS of the process
// on every collection and starts the go runtime metrics on the same
// provider. A nil provider falls back to the global one.
func NewAppStats(provider metric.MeterProvider, name string) (*AppStats, error) {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter(
		appStatsMeterName(name),
		metric.WithInstrumentationVersion(otelruntime.Version()),
	)
	stats := &AppStats{
		goroutines: lo.Must[metric.Int64ObservableUpDownCounter](meter.
			Int64ObservableUpDownCounter(
				"app.core.goroutines",
				metric.WithDescription(`The application goroutines' info.`),
				metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
					ob.Observe(int64(runtime.NumGoroutine()))
					return nil
				}),
			),
		),
		processes: lo.Must[metric.Int64ObservableUpDownCounter](meter.
			Int64ObservableUpDownCounter(
				"app.core.processes",
				metric.WithDescription(`The application processes' info.`),
				metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
					ob.Observe(int64(runtime.GOMAXPROCS(0)))
					return nil
				}),
			),
		),
	}
	if err := otelruntime.Start(otelruntime.WithMeterProvider(provider)); err != nil {
		return nil, err
	}
	return stats, nil
}
