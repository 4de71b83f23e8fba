package commands

import (
	"context"
	"io"
	"strings"

	"github.com/benz9527/xtree/lib/tree"
	"github.com/benz9527/xtree/observability"
	"github.com/benz9527/xtree/xlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
)

type appOut struct {
	stdout io.Writer
	stderr io.Writer
}

// The provider is nil when the metrics are disabled.
type meterRuntime struct {
	provider metric.MeterProvider
}

// treeFactory builds the trees of a command with the shared
// logger and stats options.
type treeFactory struct {
	strategy string
	opts     []tree.TreeOption
}

func (f *treeFactory) options(extra ...tree.TreeOption) []tree.TreeOption {
	return append(append(make([]tree.TreeOption, 0, len(f.opts)+len(extra)), f.opts...), extra...)
}

func newLogger(lc fx.Lifecycle, cfg *Config, out *appOut) xlog.XLogger {
	enc := xlog.PlainText
	if strings.ToLower(cfg.Log.Encoder) == "json" {
		enc = xlog.JSON
	}
	logger := xlog.NewXLogger(
		xlog.WithXLoggerName("xtree"),
		xlog.WithXLoggerLevelName(cfg.Log.Level),
		xlog.WithXLoggerEncoder(enc),
		xlog.WithXLoggerWriteSyncer(zapcore.AddSync(out.stderr)),
		xlog.WithXLoggerFile(cfg.Log.File),
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			// Syncing a terminal may fail and there is nothing left to flush.
			_ = logger.Sync()
			return nil
		},
	})
	return logger
}

func newMeterRuntime(lc fx.Lifecycle, cfg *Config, out *appOut, logger xlog.XLogger) (*meterRuntime, error) {
	if !cfg.Metrics.Enabled {
		return &meterRuntime{}, nil
	}
	mp, shutdown, err := observability.NewConsoleMetricsExporter(
		cfg.Metrics.Interval,
		cfg.Metrics.Timeout,
		stdoutmetric.WithWriter(out.stdout),
	)
	if err != nil {
		return nil, err
	}
	if _, err = observability.NewAppStats(mp, "xtree"); err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Debug("metrics exporter shutdown")
			return shutdown(ctx)
		},
	})
	return &meterRuntime{provider: mp}, nil
}

func newTreeFactory(cfg *Config, logger xlog.XLogger, mr *meterRuntime) *treeFactory {
	opts := []tree.TreeOption{
		tree.WithTreeLogger(logger),
	}
	if mr.provider != nil {
		opts = append(opts, tree.WithTreeStats(mr.provider))
	}
	return &treeFactory{
		strategy: cfg.Strategy,
		opts:     opts,
	}
}

type appDeps struct {
	logger  xlog.XLogger
	factory *treeFactory
}

// runApp starts the fx app, runs the command body with the
// provided dependencies and stops the app to flush the logs
// and the metrics. The log files are closed last.
func runApp(ctx context.Context, cfg *Config, out *appOut, body func(ctx context.Context, deps appDeps) error) (err error) {
	deps := appDeps{}
	app := fx.New(
		fx.Supply(cfg, out),
		fx.Provide(
			newLogger,
			newMeterRuntime,
			newTreeFactory,
		),
		fx.WithLogger(func(logger xlog.XLogger) fxevent.Logger {
			return xlog.NewFxXLogger(logger)
		}),
		fx.Populate(&deps.logger, &deps.factory),
	)
	if err = app.Err(); err != nil {
		return err
	}
	if err = app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopErr := app.Stop(context.WithoutCancel(ctx))
		// The fx events are logged until Stop returns.
		stopErr = multierr.Append(stopErr, deps.logger.Close())
		if err == nil {
			err = stopErr
		}
	}()
	return body(ctx, deps)
}
