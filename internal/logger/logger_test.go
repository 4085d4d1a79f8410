package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	l := New(WithWriter(&buf))
	l.Info("hello", "key", "value")

	out := buf.String()
	for _, want := range []string{"hello", "key", "value"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q does not contain %q", out, want)
		}
	}
}

func TestNew_DebugFiltering(t *testing.T) {
	var buf bytes.Buffer
	New(WithWriter(&buf)).Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected debug to be filtered, got %q", buf.String())
	}

	buf.Reset()
	New(WithWriter(&buf), WithDebug(true)).Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected debug output, got %q", buf.String())
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	New(WithWriter(&buf), WithJSON(true), WithPretty(true)).Info("structured", "count", 42)

	var parsed map[string]any
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if parsed["msg"] != "structured" {
		t.Errorf("msg = %v, want structured", parsed["msg"])
	}
	if parsed["count"] != float64(42) {
		t.Errorf("count = %v, want 42", parsed["count"])
	}
}

func TestNew_Pretty(t *testing.T) {
	var buf bytes.Buffer
	New(WithWriter(&buf), WithPretty(true)).Info("pretty output", "frames", 3)
	if !strings.Contains(buf.String(), "pretty output") {
		t.Errorf("output %q missing message", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	Discard().Error("nothing")
}
