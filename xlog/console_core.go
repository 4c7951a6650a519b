package xlog

import (
	"go.uber.org/zap/zapcore"
)

var consoleEncoderCfg = zapcore.EncoderConfig{
	MessageKey:    "msg",
	LevelKey:      "lvl",
	TimeKey:       "ts",
	CallerKey:     "callAt",
	EncodeCaller:  zapcore.ShortCallerEncoder,
	FunctionKey:   "fn",
	NameKey:       "component",
	EncodeName:    zapcore.FullNameEncoder,
	StacktraceKey: coreKeyIgnored,
}

// newConsoleCore writes with the configured encoder and level
// encoder, colours included.
func newConsoleCore(
	encoder logEncoderType,
	ws zapcore.WriteSyncer,
	lvlEnabler zapcore.LevelEnabler,
	lvlEnc zapcore.LevelEncoder,
	tsEnc zapcore.TimeEncoder,
) xLogCore {
	if ws == nil {
		return nil
	}
	return newCommonCore(getEncoderByType(encoder), ws, lvlEnabler, lvlEnc, tsEnc, consoleEncoderCfg)
}
