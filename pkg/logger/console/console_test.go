package console

import (
	"bytes"
	"strings"
	"testing"
)

func TestConsoleLoggerLevels(t *testing.T) {
	tests := []struct {
		name      string
		debug     bool
		wantDebug bool
	}{
		{name: "info", debug: false, wantDebug: false},
		{name: "debug", debug: true, wantDebug: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewConsoleLogger(ConsoleLoggerParams{Debug: tt.debug, Writer: &buf, Prefix: "render"})

			l.Debug("cache miss", "key", "graphs/a.json")
			l.Info("graph loaded", "nodes", 3)

			out := buf.String()
			if got := strings.Contains(out, "cache miss"); got != tt.wantDebug {
				t.Fatalf("debug line present = %v, want %v\n%s", got, tt.wantDebug, out)
			}
			if !strings.Contains(out, "graph loaded") || !strings.Contains(out, "nodes=3") {
				t.Fatalf("expected info line with keyvals, got %q", out)
			}
			if !strings.Contains(out, "render") {
				t.Fatalf("expected prefix in output, got %q", out)
			}
		})
	}
}
