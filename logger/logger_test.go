package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventFormatting(t *testing.T) {
	tests := []struct {
		name string
		kv   []any
		want string
	}{
		{name: "no fields", want: "event=login_success"},
		{name: "plain values", kv: []any{"user_id", 7, "role", "admin"}, want: "event=login_success user_id=7 role=admin"},
		{name: "quoted values", kv: []any{"reason", "user not found", "path", ""}, want: `event=login_success reason="user not found" path=""`},
		{name: "dangling key", kv: []any{"user_id"}, want: "event=login_success user_id="},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatEvent("login_success", tt.kv))
		})
	}
}

func TestConsoleOutputRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	lg := New(Options{Level: logging.WARNING, Output: &buf})

	lg.Info("hidden")
	lg.Event(logging.WARNING, "auth_rejected", "reason", "missing_header")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "event=auth_rejected reason=missing_header")
	assert.Contains(t, out, "[WARNING]")
}

func TestGetLogs(t *testing.T) {
	lg := Discard()
	lg.Debug("one")
	lg.Infof("two %d", 2)
	lg.Warning("three")
	lg.Error("four")

	all := lg.GetLogs(10, "debug")
	require.Len(t, all, 4)
	assert.True(t, strings.HasSuffix(all[0], "ERROR - four"))
	assert.True(t, strings.HasSuffix(all[3], "DEBUG - one"))

	warn := lg.GetLogs(10, "warn")
	require.Len(t, warn, 2)
	assert.True(t, strings.HasSuffix(warn[0], "four"))
	assert.True(t, strings.HasSuffix(warn[1], "three"))

	assert.Len(t, lg.GetLogs(1, "debug"), 1)
}

func TestBufferIsBounded(t *testing.T) {
	lg := Discard()
	for i := 0; i < maxLogBufferSize+5; i++ {
		lg.Debug(i)
	}
	assert.Len(t, lg.buffer, maxLogBufferSize)
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, logging.WARNING, lvl)

	lvl, err = ParseLevel("info")
	require.NoError(t, err)
	assert.Equal(t, logging.INFO, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}
