// Package logging builds the zap loggers used by the CLI and API.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"prioq/internal/sched"
)

// New returns a JSON logger writing to stderr at the given level.
func New(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = lvl > zapcore.DebugLevel
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// Observer logs scheduler events at debug level.
func Observer(log *zap.Logger) sched.Observer {
	return sched.ObserverFunc(func(ev sched.Event) {
		if ev.Kind == sched.EventDeadlineMiss {
			log.Warn("deadline missed",
				zap.String("task_id", ev.TaskID),
				zap.Float64("clock", ev.Clock))
			return
		}
		log.Debug(ev.Kind.String(),
			zap.String("task_id", ev.TaskID),
			zap.Int("priority", ev.Priority),
			zap.Float64("clock", ev.Clock))
	})
}
