package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestLogLevel(t *testing.T) {
	tests := []struct {
		env      string
		expected slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.env)
			if got := LogLevel(); got != tt.expected {
				t.Errorf("LogLevel() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNewLogger_JSON(t *testing.T) {
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "INFO")

	var buf bytes.Buffer
	logger := WithWorkflowID(NewLogger(&buf), "TRANSFER-ABC-001")
	logger.Info("transfer requested")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if entry["workflow_id"] != "TRANSFER-ABC-001" {
		t.Errorf("workflow_id = %v", entry["workflow_id"])
	}
	if entry["msg"] != "transfer requested" {
		t.Errorf("msg = %v", entry["msg"])
	}
}

func TestFromContext(t *testing.T) {
	// Без логгера в контексте возвращается глобальный
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext should never return nil")
	}

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := WithLogger(context.Background(), logger)
	if FromContext(ctx) != logger {
		t.Error("FromContext should return logger stored in context")
	}
}
