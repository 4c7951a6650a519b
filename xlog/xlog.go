package xlog

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xbst/lib/infra"
)

var _ XLogger = (*xLogger)(nil)

// xLogger is wrapper logger of Uber zap logger.
type xLogger struct {
	logger              atomic.Pointer[zap.Logger]
	dynamicLevelEnabler zap.AtomicLevel
	encoder             logEncoderType
}

func (l *xLogger) zap() *zap.Logger {
	return l.logger.Load()
}

// IncreaseLogLevel we can increase or decrease the log level concurrently.
func (l *xLogger) IncreaseLogLevel(level zapcore.Level) {
	l.dynamicLevelEnabler.SetLevel(level)
}

func (l *xLogger) Sync() error {
	return l.logger.Load().Sync()
}

func (l *xLogger) Level() string {
	return l.dynamicLevelEnabler.Level().String()
}

func (l *xLogger) Debug(msg string, fields ...zap.Field) {
	l.logger.Load().Debug(msg, fields...)
}

func (l *xLogger) Info(msg string, fields ...zap.Field) {
	l.logger.Load().Info(msg, fields...)
}

func (l *xLogger) Warn(msg string, fields ...zap.Field) {
	l.logger.Load().Warn(msg, fields...)
}

func (l *xLogger) Error(err error, msg string, fields ...zap.Field) {
	newFields := make([]zap.Field, 0, len(fields)+1)
	if err != nil {
		newFields = append(newFields, zap.String("error", err.Error()))
	}
	newFields = append(newFields, fields...)
	l.logger.Load().Error(msg, newFields...)
}

func (l *xLogger) ErrorStack(err error, msg string, fields ...zap.Field) {
	l.logger.Load().Error(msg, append(errorStackFields(err), fields...)...)
}

func (l *xLogger) Logf(lvl zapcore.Level, format string, args ...any) {
	l.logger.Load().Log(lvl, fmt.Sprintf(format, args...))
}

func (l *xLogger) ErrorStackf(err error, format string, args ...any) {
	l.logger.Load().Log(zap.ErrorLevel, fmt.Sprintf(format, args...), errorStackFields(err)...)
}

// errorStackFields logs the frames of the innermost stack in the
// chain. The text comes from err itself, so the context added by
// fmt.Errorf around a stack is kept.
func errorStackFields(err error) []zap.Field {
	es := infra.WrapErrorStack(err)
	if es == nil {
		return nil
	}
	if outer, ok := err.(infra.ErrorStack); ok {
		return []zap.Field{zap.Inline(outer)}
	}
	return []zap.Field{
		zap.String("error", err.Error()),
		zap.Array("errorStack", infra.Frames(es.Frames())),
	}
}

type loggerOutput struct {
	ws      zapcore.WriteSyncer
	newCore coreConstructor
}

type loggerCfg struct {
	encoderType *logEncoderType
	lvlEncoder  zapcore.LevelEncoder
	tsEncoder   zapcore.TimeEncoder
	level       *zapcore.Level
	outputs     []loggerOutput
}

func (cfg *loggerCfg) apply(l *xLogger) xLogMultiCore {
	if cfg.encoderType != nil {
		l.encoder = *cfg.encoderType
	} else {
		l.encoder = JSON
	}

	if cfg.level != nil {
		l.dynamicLevelEnabler = zap.NewAtomicLevelAt(*cfg.level)
	} else {
		l.dynamicLevelEnabler = zap.NewAtomicLevelAt(getLogLevelOrDefault(os.Getenv(envLogLevel)))
	}

	if cfg.lvlEncoder == nil {
		cfg.lvlEncoder = zapcore.CapitalLevelEncoder
	}

	if cfg.tsEncoder == nil {
		cfg.tsEncoder = zapcore.ISO8601TimeEncoder
	}

	if len(cfg.outputs) == 0 {
		cfg.outputs = []loggerOutput{{ws: zapcore.Lock(os.Stderr), newCore: newConsoleCore}}
	}

	return lo.FilterMap(cfg.outputs, func(out loggerOutput, _ int) (xLogCore, bool) {
		core := out.newCore(l.encoder, out.ws, l.dynamicLevelEnabler, cfg.lvlEncoder, cfg.tsEncoder)
		return core, core != nil
	})
}

type XLoggerOption func(*loggerCfg) error

// NewXLogger writes to stderr unless a writer option is given.
// Invalid options panic.
func NewXLogger(opts ...XLoggerOption) XLogger {
	cfg := &loggerCfg{}
	for _, o := range opts {
		if o == nil {
			continue
		}
		if err := o(cfg); err != nil {
			panic(err)
		}
	}
	xl := &xLogger{}
	cores := cfg.apply(xl)

	// Disable zap logger error stack.
	l := zap.New(
		cores,
		zap.AddCallerSkip(1), // Use caller filename as service
		zap.AddCaller(),
	)
	xl.logger.Store(l)
	return xl
}

// NewNopXLogger discards everything. It is the default logger
// of the library components.
func NewNopXLogger() XLogger {
	xl := &xLogger{
		dynamicLevelEnabler: zap.NewAtomicLevelAt(zapcore.FatalLevel),
		encoder:             JSON,
	}
	xl.logger.Store(zap.NewNop())
	return xl
}

func withXLoggerOutput(w io.Writer, newCore coreConstructor) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if w == nil {
			return infra.NewErrorStack("[XLogger] nil writer")
		}
		cfg.outputs = append(cfg.outputs, loggerOutput{
			ws:      zapcore.Lock(zapcore.AddSync(w)),
			newCore: newCore,
		})
		return nil
	}
}

// WithXLoggerWriter adds a console output using the configured
// encoder and level encoder.
func WithXLoggerWriter(w io.Writer) XLoggerOption {
	return withXLoggerOutput(w, newConsoleCore)
}

// WithXLoggerFileWriter adds an output that is always JSON without
// colours, e.g. a writer returned by NewFileLog.
func WithXLoggerFileWriter(w io.Writer) XLoggerOption {
	return withXLoggerOutput(w, newFileCore)
}

func WithXLoggerEncoder(logEnc logEncoderType) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if logEnc >= _encMax {
			return infra.NewErrorStack("unknown xlogger encoder")
		}
		cfg.encoderType = &logEnc
		return nil
	}
}

func WithXLoggerLevel(lvl logLevel) XLoggerOption {
	return func(cfg *loggerCfg) error {
		_lvl := lvl.zapLevel()
		cfg.level = &_lvl
		return nil
	}
}

// WithXLoggerLevelEncoder applies to the console outputs only.
func WithXLoggerLevelEncoder(lvlEnc zapcore.LevelEncoder) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if lvlEnc == nil {
			return infra.NewErrorStack("[XLogger] nil level encoder")
		}
		cfg.lvlEncoder = lvlEnc
		return nil
	}
}

func WithXLoggerTimeEncoder(tsEnc zapcore.TimeEncoder) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if tsEnc == nil {
			return infra.NewErrorStack("[XLogger] nil time encoder")
		}
		cfg.tsEncoder = tsEnc
		return nil
	}
}

// Unknown names fall back to DEBUG.
func getLogLevelOrDefault(level string) zapcore.Level {
	lvl, _ := ParseLogLevel(level)
	return lvl.zapLevel()
}
