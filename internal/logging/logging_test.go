package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewRespectsLevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelWarn, JSON: true, Writer: &buf})
	l.Info("hidden")
	l.Warn("shown", "category", "colormaps")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info should be filtered: %s", out)
	}
	if !strings.Contains(out, `"category":"colormaps"`) {
		t.Fatalf("expected json attrs: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{"debug": LevelDebug, "WARN": LevelWarn, "error": LevelError, "": LevelInfo, "bogus": LevelInfo}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("%q: got %d want %d", in, got, want)
		}
	}
}

func TestWithPrefixesCapture(t *testing.T) {
	c := &Capture{}
	l := With(c, "reloader", "colormaps")
	l.Error("failed", "err", "boom")
	entries := c.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	if len(entries[0].Args) != 4 || entries[0].Args[0] != "reloader" {
		t.Fatalf("prefix args missing: %v", entries[0].Args)
	}
	if !c.Contains("error", "fail") || c.Count("warn") != 0 {
		t.Fatalf("unexpected capture state: %v", entries)
	}
}

func TestOrNoop(t *testing.T) {
	OrNoop(nil).Info("nothing")
	if _, ok := With(nil).(noopLogger); !ok {
		t.Fatalf("expected noop logger passthrough")
	}
}
