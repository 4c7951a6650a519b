package xlog

import (
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ xLogCore = (xLogMultiCore)(nil)

// xLogMultiCore is zapcore.NewTee keeping the cores re-encodable.
type xLogMultiCore []xLogCore

func (mc xLogMultiCore) withEncoderConfig(cfg zapcore.EncoderConfig) xLogCore {
	return xLogMultiCore(lo.Map(mc, func(core xLogCore, _ int) xLogCore {
		return core.withEncoderConfig(cfg)
	}))
}

func (mc xLogMultiCore) With(fields []zap.Field) zapcore.Core {
	return zapcore.NewTee(lo.Map(mc, func(core xLogCore, _ int) zapcore.Core {
		return core.With(fields)
	})...)
}

func (mc xLogMultiCore) Enabled(lvl zapcore.Level) bool {
	return lo.ContainsBy(mc, func(core xLogCore) bool {
		return core.Enabled(lvl)
	})
}

func (mc xLogMultiCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	for _, core := range mc {
		ce = core.Check(ent, ce)
	}
	return ce
}

// Write reports every failed writer, not only the first.
func (mc xLogMultiCore) Write(ent zapcore.Entry, fields []zap.Field) error {
	var merr error
	for _, core := range mc {
		merr = multierr.Append(merr, core.Write(ent, fields))
	}
	return merr
}

func (mc xLogMultiCore) Sync() error {
	var merr error
	for _, core := range mc {
		merr = multierr.Append(merr, core.Sync())
	}
	return merr
}
