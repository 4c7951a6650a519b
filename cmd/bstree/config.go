package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/benz9527/xbst/lib/paint"
	"github.com/benz9527/xbst/lib/tree"
	"github.com/benz9527/xbst/observability"
	"github.com/benz9527/xbst/xlog"
)

var errBstreeInvalidArgs = errors.New("[bstree] invalid arguments")

const orderAll = "all"

type config struct {
	orders        []tree.TraversalOrder
	colour        string
	rgb           string
	hex           string
	logLevel      string
	logFormat     string
	logTime       string
	logColour     bool
	noAutoBalance bool
	workers       int
	logFile       string
	logMaxSize    string
	logMaxBackups int
	logCompress   bool
	metrics       observability.MetricsExporter
	values        []int
	painter       paint.Painter
}

func parseConfig(args []string, stderr io.Writer) (*config, error) {
	fs := flag.NewFlagSet("bstree", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		_, _ = fmt.Fprintln(fs.Output(), "Usage: bstree [flags] value...")
		fs.PrintDefaults()
	}

	var (
		cfg     = &config{}
		order   string
		metrics string
	)
	fs.StringVar(&order, "order", "in", "traversal order: in, pre, post or all")
	fs.StringVar(&cfg.colour, "colour", "", "paint values with a colour name or index (0-7)")
	fs.StringVar(&cfg.rgb, "rgb", "", "paint values with an r,g,b triple")
	fs.StringVar(&cfg.hex, "hex", "", "paint values with a #RRGGBB colour")
	fs.StringVar(&cfg.logLevel, "log-level", "", "DEBUG, INFO, WARN or ERROR (default $XLOG_LVL)")
	fs.StringVar(&cfg.logFormat, "log-format", "text", "log encoder: json or text")
	fs.StringVar(&cfg.logTime, "log-time", "iso8601", "log time layout: iso8601, rfc3339, rfc3339nano, epoch, millis or nanos")
	fs.BoolVar(&cfg.logColour, "log-colour", false, "colour the levels of the text logs, never the log file")
	fs.BoolVar(&cfg.noAutoBalance, "no-auto-balance", false, "do not rebuild after inserts, balance once at the end")
	fs.IntVar(&cfg.workers, "workers", 0, "insert concurrently with a pool of n workers, the shape then depends on scheduling")
	fs.StringVar(&cfg.logFile, "log-file", "", "write logs to this file instead of stderr")
	fs.StringVar(&cfg.logMaxSize, "log-max-size", "", "rotate the log file at this size, e.g. 512KB or 10MB")
	fs.IntVar(&cfg.logMaxBackups, "log-max-backups", 3, "rotated log files to keep")
	fs.StringVar(&metrics, "metrics", "", "dump metrics to stdout on exit: stdout (otel JSON) or prometheus")
	fs.BoolVar(&cfg.logCompress, "log-compress", false, "zip the rotated log files beyond -log-max-backups")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	var merr error
	if order == orderAll {
		cfg.orders = []tree.TraversalOrder{
			tree.InOrderTraversal,
			tree.PreOrderTraversal,
			tree.PostOrderTraversal,
		}
	} else if o, ok := tree.ParseTraversalOrder(order); ok {
		cfg.orders = []tree.TraversalOrder{o}
	} else {
		merr = multierr.Append(merr, fmt.Errorf("order %q, %w", order, errBstreeInvalidArgs))
	}

	if painters := lo.Compact([]string{cfg.colour, cfg.rgb, cfg.hex}); len(painters) > 1 {
		merr = multierr.Append(merr, fmt.Errorf("only one of -colour, -rgb, -hex allowed, %w", errBstreeInvalidArgs))
	} else if p, err := cfg.parsePainter(); err != nil {
		merr = multierr.Append(merr, err)
	} else {
		cfg.painter = p
	}

	if _, ok := xlog.ParseLogLevel(cfg.logLevel); cfg.logLevel != "" && !ok {
		merr = multierr.Append(merr, fmt.Errorf("log level %q, %w", cfg.logLevel, errBstreeInvalidArgs))
	}

	if _, ok := xlog.ParseTimeEncoder(cfg.logTime); !ok {
		merr = multierr.Append(merr, fmt.Errorf("log time %q, %w", cfg.logTime, errBstreeInvalidArgs))
	}

	if _, ok := xlog.ParseLogEncoder(cfg.logFormat); !ok {
		merr = multierr.Append(merr, fmt.Errorf("log format %q, %w", cfg.logFormat, errBstreeInvalidArgs))
	}

	if exporter, ok := observability.ParseMetricsExporter(metrics); ok {
		cfg.metrics = exporter
	} else {
		merr = multierr.Append(merr, fmt.Errorf("metrics %q, %w", metrics, errBstreeInvalidArgs))
	}

	if cfg.workers < 0 {
		merr = multierr.Append(merr, fmt.Errorf("workers %d, %w", cfg.workers, errBstreeInvalidArgs))
	}

	values, err := parseValues(fs.Args())
	merr = multierr.Append(merr, err)
	cfg.values = values

	if merr != nil {
		return nil, merr
	}
	return cfg, nil
}

func parseValues(args []string) ([]int, error) {
	var merr error
	values := lo.FilterMap(args, func(arg string, _ int) (int, bool) {
		v, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil {
			merr = multierr.Append(merr, fmt.Errorf("value %q, %w", arg, errBstreeInvalidArgs))
			return 0, false
		}
		return v, true
	})
	return values, merr
}

func (cfg *config) fileLog() *xlog.FileLogConfig {
	if cfg.logFile == "" {
		return nil
	}
	return &xlog.FileLogConfig{
		Dir:        filepath.Dir(cfg.logFile),
		Filename:   filepath.Base(cfg.logFile),
		MaxSize:    cfg.logMaxSize,
		MaxBackups: cfg.logMaxBackups,
		Compress:   cfg.logCompress,
	}
}

func (cfg *config) parsePainter() (paint.Painter, error) {
	switch {
	case cfg.colour != "":
		c, ok := paint.ParseColour(cfg.colour)
		if !ok {
			return nil, fmt.Errorf("colour %q, %w", cfg.colour, errBstreeInvalidArgs)
		}
		return paint.NewPainter(c), nil
	case cfg.rgb != "":
		parts := lo.Map(strings.Split(cfg.rgb, ","), func(s string, _ int) string {
			return strings.TrimSpace(s)
		})
		if len(parts) != 3 {
			return nil, fmt.Errorf("rgb %q, %w", cfg.rgb, errBstreeInvalidArgs)
		}
		rgb, err := parseValues(parts)
		if err != nil {
			return nil, err
		}
		return paint.NewRGBPainter(rgb[0], rgb[1], rgb[2]), nil
	case cfg.hex != "":
		p, err := paint.NewHexPainter(cfg.hex)
		if err != nil {
			return nil, fmt.Errorf("%w, %w", err, errBstreeInvalidArgs)
		}
		return p, nil
	default:
	}
	return paint.NopPainter, nil
}
