package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarn)
	l.Debugf("debug %d", 1)
	l.Infof("info %d", 2)
	l.Warnf("warn %d", 3)
	l.Errorf("error %d", 4)

	out := buf.String()
	if strings.Contains(out, "debug 1") || strings.Contains(out, "info 2") {
		t.Fatalf("messages below WARN leaked: %q", out)
	}
	if !strings.Contains(out, "WARN: warn 3") || !strings.Contains(out, "ERROR: error 4") {
		t.Fatalf("expected warn and error lines, got %q", out)
	}
}

func TestTagSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	root := New(&buf, LevelError)
	seq := root.Tag("SEQ")
	seq.Infof("hidden")
	root.SetLevel(LevelDebug)
	seq.Debugf("applied op %d", 7)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("tagged logger ignored root level: %q", out)
	}
	if !strings.Contains(out, "DEBUG: [SEQ] applied op 7") {
		t.Fatalf("missing tagged line: %q", out)
	}
	if seq.Level() != LevelDebug {
		t.Fatalf("tagged level = %v, want DEBUG", seq.Level())
	}
}

func TestLevelFromString(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		" error ": LevelError,
		"none":    LevelNone,
		"bogus":   LevelInfo,
	}
	for in, want := range cases {
		if got := LevelFromString(in); got != want {
			t.Errorf("LevelFromString(%q) = %v, want %v", in, got, want)
		}
	}
}
