package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"Warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"trace", zerolog.TraceLevel},
		{"off", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn", "json")
	log.Info().Msg("hidden")
	log.Warn().Str("part", "wing").Msg("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if rec["part"] != "wing" || rec["message"] != "shown" || rec["level"] != "warn" {
		t.Errorf("record = %v", rec)
	}
	if _, ok := rec["time"]; !ok {
		t.Error("record has no timestamp")
	}
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug", "console")
	log.Debug().Int("parts", 3).Msg("meshed")
	out := buf.String()
	if !strings.Contains(out, "meshed") || !strings.Contains(out, "parts=3") {
		t.Errorf("console output = %q", out)
	}
}
