package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		m := map[string]interface{}{}
		if err := json.Unmarshal(line, &m); err != nil {
			t.Fatalf("invalid json line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestZerologAdapter_Levels(t *testing.T) {
	var buf bytes.Buffer
	z := NewZerologAdapterWithLogger(zerolog.New(&buf).Level(zerolog.TraceLevel))

	z.Trace("t")
	z.Debug("d")
	z.Info("i")
	z.Warn("w")
	z.Error("e")

	lines := decodeLines(t, &buf)
	want := []string{"trace", "debug", "info", "warn", "error"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d", len(lines), len(want))
	}
	for i, l := range lines {
		if l["level"] != want[i] {
			t.Errorf("line %d level = %v, want %s", i, l["level"], want[i])
		}
	}
}

func TestZerologAdapter_Fields(t *testing.T) {
	var buf bytes.Buffer
	z := NewZerologAdapterWithLogger(zerolog.New(&buf))

	z.Error("boom",
		EventID(7),
		String("state", "Running"),
		Bool("running", true),
		Duration("timeout", time.Second),
		Err(errors.New("bad")),
	)

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	l := lines[0]
	if l["event_id"] != float64(7) {
		t.Errorf("event_id = %v, want 7", l["event_id"])
	}
	if l["state"] != "Running" {
		t.Errorf("state = %v, want Running", l["state"])
	}
	if l["running"] != true {
		t.Errorf("running = %v, want true", l["running"])
	}
	if l["error"] != "bad" {
		t.Errorf("error = %v, want bad", l["error"])
	}
	if l["message"] != "boom" {
		t.Errorf("message = %v, want boom", l["message"])
	}
}

func TestZerologAdapter_DisabledLevel(t *testing.T) {
	var buf bytes.Buffer
	z := NewZerologAdapterWithLogger(zerolog.New(&buf).Level(zerolog.InfoLevel))

	z.Trace("hidden", String("k", "v"))
	z.Debug("hidden")

	if buf.Len() != 0 {
		t.Errorf("expected no output below info level, got %q", buf.String())
	}
}

func TestOrNop(t *testing.T) {
	var buf bytes.Buffer
	zl := NewZerologAdapterWithLogger(zerolog.New(&buf))
	if got := OrNop(zl); got != Logger(zl) {
		t.Errorf("OrNop replaced a non-nil logger: %T", got)
	}

	l := OrNop(nil)
	if l != Nop {
		t.Fatalf("OrNop(nil) = %T, want Nop", l)
	}
	l.Trace("x")
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x", Err(errors.New("ignored")))
}
