package xlog

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type logLevel string

const (
	LogLevelDebug logLevel = "DEBUG"
	LogLevelInfo  logLevel = "INFO"
	LogLevelWarn  logLevel = "WARN"
	LogLevelError logLevel = "ERROR"
)

func (lvl logLevel) zapLevel() zapcore.Level {
	switch lvl {
	case LogLevelInfo:
		return zapcore.InfoLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	case LogLevelError:
		return zapcore.ErrorLevel
	case LogLevelDebug:
		fallthrough
	default:
	}
	return zapcore.DebugLevel
}

func (lvl logLevel) String() string {
	return string(lvl)
}

// ParseLogLevel accepts the level names case-insensitively.
func ParseLogLevel(level string) (logLevel, bool) {
	switch lvl := logLevel(strings.ToUpper(strings.TrimSpace(level))); lvl {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return lvl, true
	default:
	}
	return LogLevelDebug, false
}

type logEncoderType uint8

const (
	JSON logEncoderType = iota
	PlainText
	_encMax
)

// ParseLogEncoder maps "json" and "text"/"plain" to the encoder types.
func ParseLogEncoder(enc string) (logEncoderType, bool) {
	switch strings.ToLower(strings.TrimSpace(enc)) {
	case "json":
		return JSON, true
	case "text", "plain", "plaintext":
		return PlainText, true
	default:
	}
	return _encMax, false
}

const (
	coreKeyIgnored = ""
	envLogLevel    = "XLOG_LVL"
)

var encoderMap = map[logEncoderType]func(cfg zapcore.EncoderConfig) zapcore.Encoder{
	JSON:      zapcore.NewJSONEncoder,
	PlainText: zapcore.NewConsoleEncoder,
}

func getEncoderByType(typ logEncoderType) func(cfg zapcore.EncoderConfig) zapcore.Encoder {
	enc, ok := encoderMap[typ]
	if !ok {
		return zapcore.NewJSONEncoder
	}
	return enc
}

// ParseTimeEncoder maps the zap time layout names to encoders,
// empty means ISO8601.
func ParseTimeEncoder(name string) (zapcore.TimeEncoder, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "iso8601":
		return zapcore.ISO8601TimeEncoder, true
	case "rfc3339":
		return zapcore.RFC3339TimeEncoder, true
	case "rfc3339nano":
		return zapcore.RFC3339NanoTimeEncoder, true
	case "epoch":
		return zapcore.EpochTimeEncoder, true
	case "millis":
		return zapcore.EpochMillisTimeEncoder, true
	case "nanos":
		return zapcore.EpochNanosTimeEncoder, true
	default:
	}
	return nil, false
}

type xLogCore interface {
	zapcore.Core
	// withEncoderConfig rebuilds the core with other keys. The writer,
	// the level enabler and the level/time encoders are kept.
	withEncoderConfig(cfg zapcore.EncoderConfig) xLogCore
}

// coreConstructor builds the core of one writer, nil for nil writers.
type coreConstructor func(
	encoder logEncoderType,
	ws zapcore.WriteSyncer,
	lvlEnabler zapcore.LevelEnabler,
	lvlEnc zapcore.LevelEncoder,
	tsEnc zapcore.TimeEncoder,
) xLogCore

// XLogger mainly implemented by Uber zap logger.
//
// ErrorStack is used to print the error frames captured by
// infra.ErrorStack as an inline JSON array instead of the zap
// default stacktrace string.
//
// Log format is not recommended, because it is low performance.
type XLogger interface {
	zap() *zap.Logger

	IncreaseLogLevel(level zapcore.Level)
	Level() string
	Sync() error

	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(err error, msg string, fields ...zap.Field)
	ErrorStack(err error, msg string, fields ...zap.Field)

	Logf(lvl zapcore.Level, format string, args ...any)
	ErrorStackf(err error, format string, args ...any)
}
