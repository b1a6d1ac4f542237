package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestJSONLoggerWritesFieldsAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "json", Output: &buf})

	ctx := ContextWithRequestID(context.Background(), "req-1")
	log.With(String("component", "test")).Debug(ctx, "solved",
		Float64("distance_km", 12.5),
		Int("iterations", 7),
		Err(errors.New("boom")),
	)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v: %q", err, buf.String())
	}
	want := map[string]any{
		"msg":         "solved",
		"component":   "test",
		"request_id":  "req-1",
		"distance_km": 12.5,
		"iterations":  float64(7),
		"error":       "boom",
	}
	for k, v := range want {
		if rec[k] != v {
			t.Fatalf("field %q = %v, want %v (record %v)", k, rec[k], v, rec)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Output: &buf})
	log.Info(context.Background(), "hidden")
	log.Warn(context.Background(), "shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestEnsureRequestIDKeepsExisting(t *testing.T) {
	ctx, id := EnsureRequestID(context.Background())
	if id == "" || RequestIDFromContext(ctx) != id {
		t.Fatalf("EnsureRequestID did not attach an ID")
	}
	ctx2, id2 := EnsureRequestID(ctx)
	if id2 != id || ctx2 != ctx {
		t.Fatalf("EnsureRequestID replaced an existing ID")
	}
}

func TestFromContextFallback(t *testing.T) {
	if _, ok := FromContext(context.Background(), nil).(noopLogger); !ok {
		t.Fatalf("expected Noop fallback")
	}
	l := New(Config{Output: &bytes.Buffer{}})
	ctx := ContextWithLogger(context.Background(), l)
	if FromContext(ctx, Noop()) != l {
		t.Fatalf("expected stored logger")
	}
}
