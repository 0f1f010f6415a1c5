package logging

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		mode      string
		verbose   bool
		wantDebug bool
	}{
		{name: "development", mode: "dev", wantDebug: false},
		{name: "development verbose", mode: "", verbose: true, wantDebug: true},
		{name: "production", mode: "production", wantDebug: false},
		{name: "production verbose", mode: "PROD", verbose: true, wantDebug: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.mode, tt.verbose)

			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
			assert.Equal(t, tt.wantDebug, logger.Core().Enabled(zapcore.DebugLevel))
		})
	}
}

func TestDevelopmentConfig_Color(t *testing.T) {
	entry := zapcore.Entry{Level: zapcore.WarnLevel, Time: time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC), Message: "fallback used"}

	for _, color := range []bool{false, true} {
		cfg := developmentConfig(color)
		buf, err := zapcore.NewConsoleEncoder(cfg.EncoderConfig).EncodeEntry(entry, nil)
		require.NoError(t, err)

		out := buf.String()
		assert.Contains(t, out, "WARN")
		assert.Equal(t, color, strings.Contains(out, "\x1b["), "color=%v", color)
		assert.True(t, cfg.DisableStacktrace)
	}
}

func TestSecret(t *testing.T) {
	assert.Equal(t, "<unset>", Secret("api_key", "").String)
	assert.Equal(t, "<redacted>", Secret("api_key", "sk-123").String)
}
