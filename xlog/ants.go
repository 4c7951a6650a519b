package xlog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// AntsXLogger receives the ants pool messages, which are only
// reported for worker panics.
type AntsXLogger struct {
	logger XLogger
}

func (l *AntsXLogger) Printf(format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Logf(zapcore.ErrorLevel, format, args...)
}

func NewAntsXLogger(logger XLogger) *AntsXLogger {
	if logger == nil {
		return &AntsXLogger{}
	}
	return &AntsXLogger{logger: newComponentXLogger(logger, "Ants")}
}

// newComponentXLogger returns a named child sharing the parent's
// level, re-encoded without the caller fields.
func newComponentXLogger(parent XLogger, name string) *xLogger {
	l := &xLogger{
		dynamicLevelEnabler: zap.NewAtomicLevel(),
		encoder:             JSON,
	}
	if p, ok := parent.(*xLogger); ok {
		l.dynamicLevelEnabler = p.dynamicLevelEnabler
		l.encoder = p.encoder
	}
	l.logger.Store(parent.
		zap().
		Named(name).
		WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			if cc, ok := core.(xLogCore); ok {
				return cc.withEncoderConfig(componentCoreEncoderCfg)
			}
			return core
		})),
	)
	return l
}
