package xlog

import (
	"go.uber.org/zap/zapcore"
)

var fileEncoderCfg = zapcore.EncoderConfig{
	MessageKey:    "msg",
	LevelKey:      "lvl",
	TimeKey:       "ts",
	CallerKey:     "callAt",
	EncodeCaller:  zapcore.FullCallerEncoder,
	FunctionKey:   coreKeyIgnored,
	NameKey:       "component",
	EncodeName:    zapcore.FullNameEncoder,
	StacktraceKey: coreKeyIgnored,
}

// newFileCore always writes JSON lines with plain capital levels,
// whatever the console encoder is, so the files stay greppable.
func newFileCore(
	_ logEncoderType,
	ws zapcore.WriteSyncer,
	lvlEnabler zapcore.LevelEnabler,
	_ zapcore.LevelEncoder,
	tsEnc zapcore.TimeEncoder,
) xLogCore {
	if ws == nil {
		return nil
	}
	return newCommonCore(zapcore.NewJSONEncoder, ws, lvlEnabler, zapcore.CapitalLevelEncoder, tsEnc, fileEncoderCfg)
}
