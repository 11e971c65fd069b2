package logsvc

import (
	"go.uber.org/zap"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
)

// ZapLogger writes structured logs. Errors, extra data and the request Principal found in args
// become fields.
type ZapLogger struct {
	zl *zap.Logger
}

var _ core.Logger = (*ZapLogger)(nil)

func NewZapLogger(conf *core.Config) (*ZapLogger, error) {
	var (
		zl  *zap.Logger
		err error
	)
	if conf.Debug || conf.TestMode {
		zl, err = zap.NewDevelopment()
	} else {
		zl, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	zl = zl.With(zap.String("app", conf.AppName), zap.String("env", conf.Env), zap.String("build", conf.Build))
	return &ZapLogger{zl: zl.WithOptions(zap.AddCallerSkip(1))}, nil
}

// NewNopLogger discards everything.
func NewNopLogger() *ZapLogger {
	return &ZapLogger{zl: zap.NewNop()}
}

func (l ZapLogger) Sync() error { return l.zl.Sync() }

func fields(args []interface{}) []zap.Field {
	fs := make([]zap.Field, 0, len(args))
	for _, arg := range args {
		switch v := arg.(type) {
		case error:
			fs = append(fs, zap.Error(v))
		case core.Principal:
			fs = append(fs, zap.String("user_id", v.ID), zap.Bool("is_instructor", v.IsInstructor))
		case map[string]interface{}:
			for key, val := range v {
				fs = append(fs, zap.Any(key, val))
			}
		default:
			fs = append(fs, zap.Any("extra", v))
		}
	}
	return fs
}

func (l ZapLogger) Debug(msg string, args ...interface{}) { l.zl.Debug(msg, fields(args)...) }
func (l ZapLogger) Info(msg string, args ...interface{})  { l.zl.Info(msg, fields(args)...) }
func (l ZapLogger) Warn(msg string, args ...interface{})  { l.zl.Warn(msg, fields(args)...) }
func (l ZapLogger) Error(msg string, args ...interface{}) { l.zl.Error(msg, fields(args)...) }
func (l ZapLogger) Fatal(msg string, args ...interface{}) { l.zl.Fatal(msg, fields(args)...) }
