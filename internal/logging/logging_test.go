package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"prioq/internal/sched"
)

func TestNew(t *testing.T) {
	tests := map[string]struct {
		level   string
		wantErr bool
		enabled zapcore.Level
	}{
		"debug":   {level: "debug", enabled: zapcore.DebugLevel},
		"info":    {level: "info", enabled: zapcore.InfoLevel},
		"warn":    {level: "warn", enabled: zapcore.WarnLevel},
		"unknown": {level: "loud", wantErr: true},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			log, err := New(tt.level)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, log.Core().Enabled(tt.enabled))
			assert.False(t, log.Core().Enabled(tt.enabled-1))
		})
	}
}

func TestObserver(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := sched.New(sched.WithObserver(Observer(zap.New(core))))

	s.Schedule([]*sched.Task{
		sched.NewTask("a", 1, 0, sched.WithExecutionTime(2), sched.WithDeadline(1)),
	})

	entries := logs.AllUntimed()
	require.Len(t, entries, 4)
	assert.Equal(t, "Enqueued", entries[0].Message)
	assert.Equal(t, "Dispatch", entries[1].Message)
	assert.Equal(t, "Complete", entries[2].Message)

	miss := entries[3]
	assert.Equal(t, zapcore.WarnLevel, miss.Level)
	assert.Equal(t, "deadline missed", miss.Message)
	assert.Equal(t, "a", miss.ContextMap()["task_id"])
	assert.Equal(t, 2.0, miss.ContextMap()["clock"])
}
