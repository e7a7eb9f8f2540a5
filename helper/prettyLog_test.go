package helper

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPrettyHandler(t *testing.T) {
	t.Run("Create PrettyHandler with default options", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

		assert.NotNil(t, handler, "Expected NewPrettyHandler to return a non-nil handler")
		assert.NotNil(t, handler.Handler, "Expected handler to have a non-nil Handler field")
		assert.NotNil(t, handler.l, "Expected handler to have a non-nil logger field")
	})
}

func TestPrettyHandlerHandle(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		level    slog.Level
		message  string
		attrs    []slog.Attr
		contains []string
	}{
		{
			name:     "Handle DEBUG level log",
			level:    slog.LevelDebug,
			message:  "stage skipped",
			attrs:    []slog.Attr{slog.String("stage", "regex_fallback")},
			contains: []string{"DEBUG:", "stage skipped", "stage", "regex_fallback"},
		},
		{
			name:     "Handle INFO level log",
			level:    slog.LevelInfo,
			message:  "intent classified",
			attrs:    []slog.Attr{slog.Float64("confidence", 0.92)},
			contains: []string{"INFO:", "intent classified", "confidence", "0.92"},
		},
		{
			name:     "Handle WARN level log",
			level:    slog.LevelWarn,
			message:  "model unavailable",
			attrs:    []slog.Attr{slog.Bool("fallback", true)},
			contains: []string{"WARN:", "model unavailable", "fallback", "true"},
		},
		{
			name:     "Handle ERROR level log with error value",
			level:    slog.LevelError,
			message:  "insert failed",
			attrs:    []slog.Attr{slog.Any("error", errors.New("connection refused"))},
			contains: []string{"ERROR:", "insert failed", "connection refused"},
		},
		{
			name:     "Handle log with no attributes",
			level:    slog.LevelInfo,
			message:  "simple message",
			contains: []string{"INFO:", "simple message", "{}"},
		},
		{
			name:    "Handle log with nested attributes",
			level:   slog.LevelInfo,
			message: "entities merged",
			attrs: []slog.Attr{slog.Any("entities", map[string]string{
				"name": "John",
			})},
			contains: []string{"entities merged", "entities", "John"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			handler := NewPrettyHandler(&buf, PrettyHandlerOptions{SlogOpts: slog.HandlerOptions{Level: slog.LevelDebug}})

			record := slog.NewRecord(time.Now(), tt.level, tt.message, 0)
			record.AddAttrs(tt.attrs...)

			err := handler.Handle(ctx, record)
			assert.NoError(t, err, "Expected Handle to not return an error")

			output := buf.String()
			for _, c := range tt.contains {
				assert.Contains(t, output, c)
			}
		})
	}

	t.Run("Handle log formats timestamp correctly", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

		record := slog.NewRecord(time.Now(), slog.LevelInfo, "time test", 0)
		err := handler.Handle(ctx, record)

		assert.NoError(t, err, "Expected Handle to not return an error")
		assert.Regexp(t, `\[\d{2}:\d{2}:\d{2}\.\d{3}\]`, buf.String(), "Expected output to contain properly formatted timestamp")
	})
}

func TestPrettyHandlerWithAttrs(t *testing.T) {
	t.Run("Attributes from With are printed", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(NewPrettyHandler(&buf, PrettyHandlerOptions{}))

		logger.With(slog.String("component", "pipeline")).Info("ready")

		output := buf.String()
		assert.Contains(t, output, "INFO:")
		assert.Contains(t, output, "ready")
		assert.Contains(t, output, "component")
		assert.Contains(t, output, "pipeline")
	})

	t.Run("Level filter is respected", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf, slog.LevelInfo)

		logger.Debug("hidden")

		assert.Empty(t, buf.String(), "Expected debug record to be filtered")
	})
}
