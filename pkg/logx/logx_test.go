package logx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestReplaceLogger(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	restore := ReplaceLogger(zap.New(core))
	defer restore()

	Infof("generated %d matches", 3)
	Warn("queue full")
	Infow("match created", "match_id", "MATCH-20240101-ABCDE")

	require.Equal(t, 3, recorded.Len())
	assert.Equal(t, "generated 3 matches", recorded.All()[0].Message)
	assert.Equal(t, zapcore.WarnLevel, recorded.All()[1].Level)
	assert.Equal(t, "MATCH-20240101-ABCDE", recorded.All()[2].ContextMap()["match_id"])
}

func TestWith(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	restore := ReplaceLogger(zap.New(core))
	defer restore()

	With("worker", 2).Info("started")

	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, int64(2), recorded.All()[0].ContextMap()["worker"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		wantErr  bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			lvl, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, lvl)
		})
	}
}

func TestSetLevel(t *testing.T) {
	defer SetLevel(LevelInfo)

	SetLevel(LevelError)
	assert.Equal(t, zapcore.ErrorLevel, atom.Level())

	SetLevel(LevelDebug)
	assert.Equal(t, zapcore.DebugLevel, atom.Level())
}

func TestConfigure(t *testing.T) {
	defer SetLevel(LevelInfo)

	require.NoError(t, Configure(Config{Level: "warn", JSON: true}))
	assert.Equal(t, zapcore.WarnLevel, atom.Level())

	assert.Error(t, Configure(Config{Level: "loud"}))
}
