package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	Production   bool
	LogstashAddr string
}

// New builds the process logger. Production emits JSON at info level,
// development emits console output at debug level. When a Logstash address is
// set, JSON records are teed to it as well.
func New(opts Options) (*zap.Logger, func(), error) {
	var cfg zap.Config
	if opts.Production {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	base, err := cfg.Build()
	if err != nil {
		return nil, func() {}, err
	}
	if opts.LogstashAddr == "" {
		return base, func() { _ = base.Sync() }, nil
	}

	sink, err := NewLogstashSink(opts.LogstashAddr)
	if err != nil {
		_ = base.Sync()
		return nil, func() {}, err
	}
	logger := base.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, newLogstashCore(sink, cfg.Level))
	}))
	cleanup := func() {
		_ = logger.Sync()
		_ = sink.Close()
	}
	return logger, cleanup, nil
}

func newLogstashCore(sink zapcore.WriteSyncer, level zapcore.LevelEnabler) zapcore.Core {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "@timestamp"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewCore(zapcore.NewJSONEncoder(enc), sink, level)
}

// Fallback is used before configuration has been loaded.
func Fallback() *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.Lock(os.Stderr),
		zap.InfoLevel,
	)
	return zap.New(core)
}
