package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" warn ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_FiltersAndTags(t *testing.T) {
	var buf bytes.Buffer
	l := Component(New(Options{Level: "warn", Service: "taskpilot", Output: &buf}), "dispatcher")

	l.Info().Msg("hidden")
	l.Warn().Msg("visible")

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("expected exactly one JSON line, got %q: %v", buf.String(), err)
	}
	if line["message"] != "visible" || line["service"] != "taskpilot" || line["component"] != "dispatcher" {
		t.Fatalf("unexpected log line: %v", line)
	}
}

func TestGet_BeforeAndAfterInit(t *testing.T) {
	mu.Lock()
	instance = nil
	mu.Unlock()

	if Get().GetLevel() != zerolog.Disabled {
		t.Fatalf("expected disabled logger before Init")
	}

	var buf bytes.Buffer
	Init(Options{Level: "debug", Output: &buf})
	l := Get()
	l.Debug().Msg("hello")
	if !bytes.Contains(buf.Bytes(), []byte("hello")) {
		t.Fatalf("expected Get to return the initialised logger")
	}
}
