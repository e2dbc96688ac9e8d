package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zerolog.Level{
		"":         zerolog.InfoLevel,
		"debug":    zerolog.DebugLevel,
		" DEBUG ":  zerolog.DebugLevel,
		"warning":  zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"trace":    zerolog.TraceLevel,
		"nonsense": zerolog.InfoLevel,
	}
	for input, want := range cases {
		if got := ParseLevel(input); got != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", input, got, want)
		}
	}
}

func TestNewJSONWritesStructuredFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := Component(New(Config{Level: "info", Format: FormatJSON, Output: &buf}), "test")
	logger.Info().Str("call_id", "abc").Msg("hello")
	logger.Debug().Msg("hidden")

	out := buf.String()
	for _, want := range []string{`"app":"frontdesk"`, `"component":"test"`, `"call_id":"abc"`, `"message":"hello"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %q", want, out)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug entry should be filtered at info level")
	}
}

func TestNewConsoleIsHumanReadable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(Config{Format: FormatConsole, Output: &buf})
	logger.Warn().Msg("careful")

	out := buf.String()
	if !strings.Contains(out, "careful") || strings.Contains(out, `"message"`) {
		t.Fatalf("unexpected console output: %q", out)
	}
}
