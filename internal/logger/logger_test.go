package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("log line is not JSON: %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name  string
		min   Level
		write func(l *Logger)
		want  bool // should log
	}{
		{
			name:  "info at info",
			min:   LevelInfo,
			write: func(l *Logger) { l.Info("test message", Fields{"key": "value"}) },
			want:  true,
		},
		{
			name:  "debug below threshold",
			min:   LevelInfo,
			write: func(l *Logger) { l.Debug("debug message", nil) },
			want:  false,
		},
		{
			name:  "debug at debug",
			min:   LevelDebug,
			write: func(l *Logger) { l.Debug("debug message", nil) },
			want:  true,
		},
		{
			name:  "warn below error threshold",
			min:   LevelError,
			write: func(l *Logger) { l.Warn("warning", nil, nil) },
			want:  false,
		},
		{
			name:  "error with err",
			min:   LevelWarn,
			write: func(l *Logger) { l.Error("error occurred", nil, errors.New("test error")) },
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.write(New(tt.min, &buf))

			logged := buf.Len() > 0
			if logged != tt.want {
				t.Errorf("logged = %v, want %v (output %q)", logged, tt.want, buf.String())
			}
		})
	}
}

func TestLogger_EntryShape(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelDebug, &buf)

	l.Info("Bulletin dispatched", Fields{"run_id": "abc", "channels": 3})
	l.Error("Channel send failed", Fields{"channel": "twitter"}, errors.New("rate limited"))

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	info := entries[0]
	if info["level"] != "INFO" {
		t.Errorf("level = %v, want INFO", info["level"])
	}
	if info["message"] != "Bulletin dispatched" {
		t.Errorf("message = %v", info["message"])
	}
	if _, err := time.Parse(time.RFC3339, info["timestamp"].(string)); err != nil {
		t.Errorf("timestamp %v is not RFC3339: %v", info["timestamp"], err)
	}
	fields, ok := info["fields"].(map[string]interface{})
	if !ok {
		t.Fatalf("fields = %T, want object", info["fields"])
	}
	if fields["run_id"] != "abc" || fields["channels"] != float64(3) {
		t.Errorf("fields = %v", fields)
	}
	if _, ok := info["error"]; ok {
		t.Error("info entry should not carry an error key")
	}

	failure := entries[1]
	if failure["level"] != "ERROR" {
		t.Errorf("level = %v, want ERROR", failure["level"])
	}
	if failure["error"] != "rate limited" {
		t.Errorf("error = %v, want %q", failure["error"], "rate limited")
	}
}

func TestLogger_OmitsEmptyFields(t *testing.T) {
	var buf bytes.Buffer
	New(LevelInfo, &buf).Info("no fields", nil)

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if _, ok := entries[0]["fields"]; ok {
		t.Error("fields key present for empty fields")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{" warn ", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"Error", LevelError, false},
		{"trace", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSetDefault(t *testing.T) {
	original := defaultLogger
	defer SetDefault(original)

	var buf bytes.Buffer
	SetDefault(New(LevelWarn, &buf))

	Info("dropped", nil)
	Warn("kept", Fields{"source": "opensnow"}, errors.New("timeout"))

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0]["message"] != "kept" {
		t.Errorf("message = %v, want kept", entries[0]["message"])
	}
}
