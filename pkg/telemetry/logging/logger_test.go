package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func newTestLogger(t *testing.T, level string) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger, err := New(Config{Level: level, Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return logger, &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "defaults", cfg: Config{}},
		{name: "text", cfg: Config{Level: "debug", Format: "text"}},
		{name: "console", cfg: Config{Level: "WARN", Format: "console"}},
		{name: "bad level", cfg: Config{Level: "trace"}, wantErr: true},
		{name: "bad format", cfg: Config{Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	logger, buf := newTestLogger(t, "warn")

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	lines := decodeLines(t, buf)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %s", len(lines), buf.String())
	}
	if lines[0]["msg"] != "warn message" || lines[1]["msg"] != "error message" {
		t.Errorf("unexpected messages: %v", lines)
	}
}

func TestLogger_RedactsSensitiveKeys(t *testing.T) {
	logger, buf := newTestLogger(t, "info")

	logger.Info("public location computed",
		"lat", 52.520008,
		"lng", 13.404954,
		"location_key", "Hauptstraße 1user-42",
		"Address", "Hauptstraße 1",
		"owner_id", "user-42",
		"duration_ms", 3,
	)

	out := buf.String()
	for _, leaked := range []string{"52.520008", "13.404954", "Hauptstraße"} {
		if strings.Contains(out, leaked) {
			t.Errorf("log output leaked %q: %s", leaked, out)
		}
	}

	line := decodeLines(t, buf)[0]
	if line["lat"] != Redacted || line["location_key"] != Redacted || line["Address"] != Redacted {
		t.Errorf("sensitive keys not redacted: %v", line)
	}
	if line["owner_id"] != "user-42" {
		t.Errorf("owner_id should be kept, got %v", line["owner_id"])
	}
	if line["duration_ms"] != float64(3) {
		t.Errorf("duration_ms changed: %v", line["duration_ms"])
	}
}

func TestLogger_RedactsWithAndSlog(t *testing.T) {
	logger, buf := newTestLogger(t, "info")

	logger.With("address", "Musterweg 5").Info("with")
	logger.Slog().Info("slog", "note", "pickup at 52.520008, 13.404954")
	logger.Slog().Info("group", slog.Group("listing", slog.Float64("lat", 48.1351)))

	out := buf.String()
	for _, leaked := range []string{"Musterweg", "52.520008", "48.1351"} {
		if strings.Contains(out, leaked) {
			t.Errorf("log output leaked %q: %s", leaked, out)
		}
	}
}

func TestLogger_RedactsErrors(t *testing.T) {
	logger, buf := newTestLogger(t, "info")

	logger.Error("lookup failed", "error", errors.New("no listing at 52.5200, 13.4049 for anna@example.com"))

	out := buf.String()
	if strings.Contains(out, "anna@example.com") || strings.Contains(out, "52.5200") {
		t.Errorf("error value not redacted: %s", out)
	}
	if !strings.Contains(out, "[coordinates]") || !strings.Contains(out, "[email]") {
		t.Errorf("expected redaction markers: %s", out)
	}
}

func TestLogger_ContextFields(t *testing.T) {
	logger, buf := newTestLogger(t, "debug")

	ctx := WithRequestID(context.Background(), "req-0123456789")
	ctx = WithTraceID(ctx, "4bf92f3577b34da6a3ce929d0e0e4736")

	logger.InfoContext(ctx, "checked", "result", "clean")
	logger.WithContext(ctx).Debug("again")
	logger.WithContext(context.Background()).Warn("no fields")

	lines := decodeLines(t, buf)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	for _, line := range lines[:2] {
		if line["request_id"] != "req-0123456789" {
			t.Errorf("request_id = %v", line["request_id"])
		}
		if line["trace_id"] != "4bf92f3577b34da6a3ce929d0e0e4736" {
			t.Errorf("trace_id = %v", line["trace_id"])
		}
	}
	if _, ok := lines[2]["request_id"]; ok {
		t.Error("unexpected request_id without context")
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Error("dropped")
	if logger.Slog() == nil {
		t.Error("Slog() = nil")
	}
}
