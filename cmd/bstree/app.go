package main

import (
	"context"
	"io"
	"iter"
	"strconv"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xbst/lib/paint"
	"github.com/benz9527/xbst/lib/tree"
	"github.com/benz9527/xbst/observability"
	"github.com/benz9527/xbst/xlog"
)

const valueSeparator = " , "

type output struct {
	out    io.Writer
	logOut io.Writer
}

func newLogger(lc fx.Lifecycle, cfg *config, o output) (xlog.XLogger, error) {
	logOutput := xlog.WithXLoggerWriter(o.logOut)
	if fileCfg := cfg.fileLog(); fileCfg != nil {
		fileLog, err := xlog.NewFileLog(fileCfg)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.StopHook(fileLog.Close))
		logOutput = xlog.WithXLoggerFileWriter(fileLog)
	}

	// Flags were checked by parseConfig.
	enc, _ := xlog.ParseLogEncoder(cfg.logFormat)
	tsEnc, _ := xlog.ParseTimeEncoder(cfg.logTime)
	opts := []xlog.XLoggerOption{
		logOutput,
		xlog.WithXLoggerEncoder(enc),
		xlog.WithXLoggerTimeEncoder(tsEnc),
	}
	if cfg.logColour {
		opts = append(opts, xlog.WithXLoggerLevelEncoder(zapcore.CapitalColorLevelEncoder))
	}
	if lvl, ok := xlog.ParseLogLevel(cfg.logLevel); ok {
		opts = append(opts, xlog.WithXLoggerLevel(lvl))
	}
	return xlog.NewXLogger(opts...), nil
}

// Metrics are written after the traversals, when the app stops.
func newMeterProvider(lc fx.Lifecycle, cfg *config, o output, logger xlog.XLogger) (metric.MeterProvider, error) {
	mp, shutdown, err := observability.NewMeterProvider(cfg.metrics, o.out)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(shutdown))
	if cfg.metrics != observability.NoMetrics {
		if err = observability.StartAppStats(mp, "bstree"); err != nil {
			logger.Warn("[bstree] app stats partially disabled", zap.Error(err))
		}
	}
	return mp, nil
}

func newTree(cfg *config, logger xlog.XLogger, mp metric.MeterProvider) tree.OrderedTree[int] {
	t := tree.NewOrderedTree[int](
		tree.WithOrderedTreeLogger[int](logger),
		tree.WithOrderedTreeMeter[int](mp.Meter("github.com/benz9527/xbst/lib/tree")),
		tree.WithOrderedTreeAutoBalance[int](!cfg.noAutoBalance),
	)
	if cfg.workers > 0 {
		return tree.NewSyncOrderedTree[int](t)
	}
	return t
}

// insertValues stops at the first error when inserting sequentially.
// The pool keeps going and reports every failed value.
func insertValues(t tree.OrderedTree[int], values []int, workers int, logger xlog.XLogger) error {
	if workers <= 0 {
		for _, v := range values {
			if err := t.Insert(v); err != nil {
				return err
			}
		}
		return nil
	}

	pool, err := ants.NewPool(workers, ants.WithLogger(xlog.NewAntsXLogger(logger)))
	if err != nil {
		return err
	}
	defer pool.Release()

	var (
		wg   sync.WaitGroup
		lock sync.Mutex
		merr error
	)
	appendErr := func(err error) {
		lock.Lock()
		defer lock.Unlock()
		merr = multierr.Append(merr, err)
	}
	for _, v := range values {
		wg.Add(1)
		if err = pool.Submit(func() {
			defer wg.Done()
			if err := t.Insert(v); err != nil {
				appendErr(err)
			}
		}); err != nil {
			wg.Done()
			appendErr(err)
		}
	}
	wg.Wait()
	return merr
}

func newPainter(cfg *config) paint.Painter {
	if cfg.painter == nil {
		return paint.NopPainter
	}
	return cfg.painter
}

// printTraversal writes every value followed by " , " on one line.
func printTraversal(w io.Writer, seq iter.Seq[int], p paint.Painter) error {
	var sb strings.Builder
	for v := range seq {
		sb.WriteString(p(strconv.Itoa(v)))
		sb.WriteString(valueSeparator)
	}
	sb.WriteByte('\n')
	_, err := io.WriteString(w, sb.String())
	return err
}

func buildAndPrint(
	cfg *config,
	t tree.OrderedTree[int],
	p paint.Painter,
	logger xlog.XLogger,
	o output,
) error {
	if err := insertValues(t, cfg.values, cfg.workers, logger); err != nil {
		return err
	}
	if cfg.noAutoBalance {
		t.Balance()
	}
	logger.Info("[bstree] tree built",
		zap.Int64("size", t.Len()),
		zap.Int64("height", t.Height()),
		zap.Bool("balanced", t.IsBalanced()),
		zap.Int("workers", cfg.workers),
	)

	var merr error
	for _, order := range cfg.orders {
		if len(cfg.orders) > 1 {
			_, err := io.WriteString(o.out, order.String()+": ")
			merr = multierr.Append(merr, err)
		}
		merr = multierr.Append(merr, printTraversal(o.out, t.Traverse(order), p))
	}
	return merr
}

// run does the work on start, a failure rolls back the hooks
// registered before, e.g. closing the log file.
func run(
	lc fx.Lifecycle,
	cfg *config,
	t tree.OrderedTree[int],
	p paint.Painter,
	logger xlog.XLogger,
	o output,
) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return buildAndPrint(cfg, t, p, logger, o)
		},
		OnStop: func(context.Context) error {
			t.Release()
			// stderr may refuse fsync.
			_ = logger.Sync()
			return nil
		},
	})
}

func newApp(cfg *config, o output) *fx.App {
	return fx.New(
		fx.Supply(cfg, o),
		fx.Provide(
			newLogger,
			newMeterProvider,
			newTree,
			newPainter,
		),
		fx.WithLogger(func(logger xlog.XLogger) fxevent.Logger {
			return xlog.NewFxXLogger(logger)
		}),
		fx.Invoke(run),
	)
}

func runApp(ctx context.Context, cfg *config, o output) error {
	app := newApp(cfg, o)
	if err := app.Err(); err != nil {
		return err
	}
	if err := app.Start(ctx); err != nil {
		return err
	}
	return app.Stop(ctx)
}
