package xlog

import (
	"go.uber.org/zap/zapcore"
)

var _ xLogCore = (*commonCore)(nil)

// commonCore is a zap io core that remembers how it was built,
// so the component loggers can re-encode it.
type commonCore struct {
	zapcore.Core
	lvlEnabler zapcore.LevelEnabler
	lvlEnc     zapcore.LevelEncoder
	tsEnc      zapcore.TimeEncoder
	ws         zapcore.WriteSyncer
	enc        func(cfg zapcore.EncoderConfig) zapcore.Encoder
}

func newCommonCore(
	enc func(cfg zapcore.EncoderConfig) zapcore.Encoder,
	ws zapcore.WriteSyncer,
	lvlEnabler zapcore.LevelEnabler,
	lvlEnc zapcore.LevelEncoder,
	tsEnc zapcore.TimeEncoder,
	cfg zapcore.EncoderConfig,
) *commonCore {
	cfg.EncodeLevel = lvlEnc
	cfg.EncodeTime = tsEnc
	return &commonCore{
		Core:       zapcore.NewCore(enc(cfg), ws, lvlEnabler),
		lvlEnabler: lvlEnabler,
		lvlEnc:     lvlEnc,
		tsEnc:      tsEnc,
		ws:         ws,
		enc:        enc,
	}
}

func (cc *commonCore) withEncoderConfig(cfg zapcore.EncoderConfig) xLogCore {
	return newCommonCore(cc.enc, cc.ws, cc.lvlEnabler, cc.lvlEnc, cc.tsEnc, cfg)
}

// Used by component child loggers, e.g. the fx event logger.
var componentCoreEncoderCfg = zapcore.EncoderConfig{
	MessageKey:    "msg",
	LevelKey:      "lvl",
	TimeKey:       "ts",
	CallerKey:     coreKeyIgnored,
	FunctionKey:   coreKeyIgnored,
	NameKey:       "component",
	EncodeName:    zapcore.FullNameEncoder,
	StacktraceKey: coreKeyIgnored,
}
