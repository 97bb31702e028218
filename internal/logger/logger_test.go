package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_CustomWriter(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{
		Level:  slog.LevelInfo,
		Format: "json",
		Writer: &buf,
	}

	log := New(cfg)
	log.Info("scan complete", "library_id", "lib-1")

	assert.Contains(t, buf.String(), "scan complete")
	assert.Contains(t, buf.String(), "\"level\":\"INFO\"")
	assert.Contains(t, buf.String(), "lib-1")
}

func TestNew_PrettyFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: slog.LevelDebug, Format: "pretty", Writer: &buf})

	log.Debug("probing file", "path", "/x.mp3")

	out := buf.String()
	assert.Contains(t, out, "probing file")
	assert.Contains(t, out, "path=/x.mp3")
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: slog.LevelWarn, Format: "json", Writer: &buf})

	log.Info("should be dropped")
	log.Warn("should appear")

	assert.NotContains(t, buf.String(), "should be dropped")
	assert.Contains(t, buf.String(), "should appear")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "level %q", tt.in)
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: slog.LevelInfo, Format: "json", Writer: &buf})

	log.WithError(assert.AnError).Error("copy failed")

	assert.Contains(t, buf.String(), assert.AnError.Error())
}
