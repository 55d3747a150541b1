// Package logging provides the structured logger used throughout kinoplan,
// a thin wrapper over zap.SugaredLogger with context-aware debug logging and
// named sub-loggers, grounded on the viam-server logging package but reduced
// to what a single planning library needs.
package logging

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the interface every package in this module logs through. It is
// satisfied by *impl, constructed via New/NewDebug, never directly.
type Logger interface {
	Debugf(template string, args ...interface{})
	CDebugf(ctx context.Context, template string, args ...interface{})
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})

	// Sublogger returns a named child logger sharing this logger's level and
	// output, matching the parent/child naming convention of viam-server's
	// logging package.
	Sublogger(subname string) Logger

	// AsZap exposes the underlying SugaredLogger for collaborators that
	// expect one directly.
	AsZap() *zap.SugaredLogger
}

type impl struct {
	name string
	zl   *zap.SugaredLogger
}

// New returns a Logger that emits Info+ logs to stdout, matching
// logging.NewLogger's default level in the teacher package.
func New(name string) Logger {
	return newWithLevel(name, zap.InfoLevel)
}

// NewDebug returns a Logger that emits Debug+ logs to stdout.
func NewDebug(name string) Logger {
	return newWithLevel(name, zap.DebugLevel)
}

func newWithLevel(name string, level zapcore.Level) Logger {
	cfg := zap.Config{
		Level:    zap.NewAtomicLevelAt(level),
		Encoding: "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "msg",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalColorLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		DisableStacktrace: true,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
	}
	zl, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		// cfg is static and always buildable; a failure here means the zap
		// API itself changed shape.
		panic(err)
	}
	return &impl{name: name, zl: zl.Named(name).Sugar()}
}

func (imp *impl) Debugf(template string, args ...interface{}) {
	imp.zl.Debugf(template, args...)
}

func (imp *impl) CDebugf(ctx context.Context, template string, args ...interface{}) {
	select {
	case <-ctx.Done():
		return
	default:
	}
	imp.zl.Debugf(template, args...)
}

func (imp *impl) Infof(template string, args ...interface{})  { imp.zl.Infof(template, args...) }
func (imp *impl) Warnf(template string, args ...interface{})  { imp.zl.Warnf(template, args...) }
func (imp *impl) Errorf(template string, args ...interface{}) { imp.zl.Errorf(template, args...) }

func (imp *impl) Sublogger(subname string) Logger {
	return &impl{name: imp.name + "." + subname, zl: imp.zl.Named(subname)}
}

func (imp *impl) AsZap() *zap.SugaredLogger {
	return imp.zl
}
