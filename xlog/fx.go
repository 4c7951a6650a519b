package xlog

import (
	"time"

	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ fxevent.Logger = (*FxXLogger)(nil)

// FxXLogger routes the fx lifecycle events into the xlog logger.
type FxXLogger struct {
	logger XLogger
}

// fxEventEntry is one log line of an fx event. A non nil err turns
// it into an error line whatever lvl is.
type fxEventEntry struct {
	lvl    zapcore.Level
	msg    string
	err    error
	fields []zap.Field
}

func fxHookFields(function, caller string) []zap.Field {
	return []zap.Field{
		zap.String("function", function),
		zap.String("caller", caller),
	}
}

func fxHookExecutedFields(function, caller string, runtime time.Duration) []zap.Field {
	return append(fxHookFields(function, caller), zap.Duration("runtime", runtime))
}

// newFxEventEntry returns false for the events nobody reads, e.g.
// the successful invokes, which fx reports again as Started.
func newFxEventEntry(event fxevent.Event) (fxEventEntry, bool) {
	switch e := event.(type) {
	case *fxevent.OnStartExecuting:
		return fxEventEntry{
			lvl:    zapcore.DebugLevel,
			msg:    "[fx] OnStart hook executing",
			fields: fxHookFields(e.FunctionName, e.CallerName),
		}, true
	case *fxevent.OnStartExecuted:
		return fxEventEntry{
			lvl:    zapcore.DebugLevel,
			msg:    "[fx] OnStart hook executed",
			err:    e.Err,
			fields: fxHookExecutedFields(e.FunctionName, e.CallerName, e.Runtime),
		}, true
	case *fxevent.OnStopExecuting:
		return fxEventEntry{
			lvl:    zapcore.DebugLevel,
			msg:    "[fx] OnStop hook executing",
			fields: fxHookFields(e.FunctionName, e.CallerName),
		}, true
	case *fxevent.OnStopExecuted:
		return fxEventEntry{
			lvl:    zapcore.DebugLevel,
			msg:    "[fx] OnStop hook executed",
			err:    e.Err,
			fields: fxHookExecutedFields(e.FunctionName, e.CallerName, e.Runtime),
		}, true
	case *fxevent.Supplied:
		return fxEventEntry{
			lvl:    zapcore.DebugLevel,
			msg:    "[fx] supplied",
			err:    e.Err,
			fields: []zap.Field{zap.String("type", e.TypeName)},
		}, true
	case *fxevent.Provided:
		return fxEventEntry{
			lvl: zapcore.DebugLevel,
			msg: "[fx] provided",
			err: e.Err,
			fields: []zap.Field{
				zap.String("constructor", e.ConstructorName),
				zap.Strings("types", e.OutputTypeNames),
				zap.Bool("private", e.Private),
			},
		}, true
	case *fxevent.Invoking:
		return fxEventEntry{
			lvl:    zapcore.DebugLevel,
			msg:    "[fx] invoking",
			fields: []zap.Field{zap.String("function", e.FunctionName)},
		}, true
	case *fxevent.Invoked:
		return fxEventEntry{
			msg:    "[fx] invoke",
			err:    e.Err,
			fields: []zap.Field{zap.String("function", e.FunctionName), zap.String("trace", e.Trace)},
		}, e.Err != nil
	case *fxevent.Stopping:
		signal := "none"
		if e.Signal != nil {
			signal = e.Signal.String()
		}
		return fxEventEntry{
			lvl:    zapcore.DebugLevel,
			msg:    "[fx] stopping",
			fields: []zap.Field{zap.String("signal", signal)},
		}, true
	case *fxevent.Stopped:
		return fxEventEntry{msg: "[fx] stop", err: e.Err}, e.Err != nil
	case *fxevent.RollingBack:
		return fxEventEntry{
			lvl:    zapcore.WarnLevel,
			msg:    "[fx] start failed, rolling back",
			fields: []zap.Field{zap.Error(e.StartErr)},
		}, true
	case *fxevent.RolledBack:
		return fxEventEntry{msg: "[fx] roll back", err: e.Err}, e.Err != nil
	case *fxevent.Started:
		return fxEventEntry{lvl: zapcore.DebugLevel, msg: "[fx] started", err: e.Err}, true
	case *fxevent.LoggerInitialized:
		return fxEventEntry{
			lvl:    zapcore.DebugLevel,
			msg:    "[fx] logger initialized",
			err:    e.Err,
			fields: []zap.Field{zap.String("constructor", e.ConstructorName)},
		}, true
	default:
	}
	return fxEventEntry{}, false
}

func (l *FxXLogger) LogEvent(event fxevent.Event) {
	if l == nil || l.logger == nil {
		return
	}
	entry, ok := newFxEventEntry(event)
	if !ok {
		return
	}
	if entry.err != nil {
		l.logger.Error(entry.err, entry.msg+" failed", entry.fields...)
		return
	}
	switch entry.lvl {
	case zapcore.DebugLevel:
		l.logger.Debug(entry.msg, entry.fields...)
	case zapcore.WarnLevel:
		l.logger.Warn(entry.msg, entry.fields...)
	default:
		l.logger.Info(entry.msg, entry.fields...)
	}
}

// NewFxXLogger names the child logger "Fx" and drops the caller
// fields, fx events are reported from fx internals anyway.
func NewFxXLogger(logger XLogger) *FxXLogger {
	if logger == nil {
		return &FxXLogger{}
	}
	return &FxXLogger{logger: newComponentXLogger(logger, "Fx")}
}
