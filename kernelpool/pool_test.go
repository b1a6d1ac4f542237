package kernelpool

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPutAndGetDoubles(t *testing.T) {
	pool := New()
	in := []float64{0, 0, 1}
	if err := pool.PutDoubles("INS-1_BORESIGHT", in); err != nil {
		t.Fatalf("PutDoubles error: %v", err)
	}
	in[2] = 99

	got, err := pool.Doubles("INS-1_BORESIGHT")
	if err != nil {
		t.Fatalf("Doubles error: %v", err)
	}
	if diff := cmp.Diff([]float64{0, 0, 1}, got); diff != "" {
		t.Fatalf("Doubles mismatch (-want +got):\n%s", diff)
	}

	// Mutating the returned slice must not affect the pool.
	got[0] = -1
	again, _ := pool.Doubles("INS-1_BORESIGHT")
	if again[0] != 0 {
		t.Fatalf("pool aliased returned slice: %v", again)
	}
}

func TestPutReplacesOtherType(t *testing.T) {
	pool := New()
	if err := pool.PutDoubles("X", []float64{1}); err != nil {
		t.Fatalf("PutDoubles error: %v", err)
	}
	if err := pool.PutStrings("X", []string{"a"}); err != nil {
		t.Fatalf("PutStrings error: %v", err)
	}
	if _, err := pool.Doubles("X"); !errors.Is(err, ErrVariableNotFound) {
		t.Fatalf("Doubles after type change err = %v, want ErrVariableNotFound", err)
	}
	if got, err := pool.Strings("X"); err != nil || got[0] != "a" {
		t.Fatalf("Strings = %v, %v", got, err)
	}
	if pool.Len() != 1 {
		t.Fatalf("Len = %d, want 1", pool.Len())
	}
}

func TestMissingAndEmptyNames(t *testing.T) {
	pool := New()
	if _, err := pool.Doubles("nope"); !errors.Is(err, ErrVariableNotFound) {
		t.Fatalf("Doubles(missing) err = %v", err)
	}
	if _, err := pool.Strings("nope"); !errors.Is(err, ErrVariableNotFound) {
		t.Fatalf("Strings(missing) err = %v", err)
	}
	if err := pool.PutDoubles("", nil); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("PutDoubles(\"\") err = %v", err)
	}
	if err := pool.PutStrings("", nil); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("PutStrings(\"\") err = %v", err)
	}
}

func TestDeleteClearNames(t *testing.T) {
	pool := New()
	for i := range 3 {
		if err := pool.PutDoubles(fmt.Sprintf("V%d", 2-i), []float64{float64(i)}); err != nil {
			t.Fatalf("PutDoubles error: %v", err)
		}
	}
	if err := pool.PutStrings("S", []string{"x"}); err != nil {
		t.Fatalf("PutStrings error: %v", err)
	}

	if diff := cmp.Diff([]string{"S", "V0", "V1", "V2"}, pool.Names()); diff != "" {
		t.Fatalf("Names mismatch (-want +got):\n%s", diff)
	}
	if !pool.Delete("V1") || pool.Delete("V1") {
		t.Fatalf("Delete should succeed once")
	}
	if pool.Has("V1") || !pool.Has("S") {
		t.Fatalf("Has after delete is wrong")
	}
	pool.Clear()
	if pool.Len() != 0 {
		t.Fatalf("Len after Clear = %d", pool.Len())
	}
}

func TestSubscribeReceivesEvents(t *testing.T) {
	pool := New()
	var got []Event
	unsubscribe := pool.Subscribe(func(e Event) {
		got = append(got, e)
	})

	_ = pool.PutDoubles("A", []float64{1})
	_ = pool.PutStrings("B", []string{"b"})
	pool.Delete("A")
	pool.Delete("missing")
	pool.Clear()
	unsubscribe()
	_ = pool.PutDoubles("C", []float64{3})

	want := []Event{
		{Type: EventPut, Names: []string{"A"}},
		{Type: EventPut, Names: []string{"B"}},
		{Type: EventDelete, Names: []string{"A"}},
		{Type: EventClear},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestSubscriberMayReadPool(t *testing.T) {
	pool := New()
	var seen []float64
	pool.Subscribe(func(e Event) {
		// Callbacks run outside the lock, so reading back must not deadlock.
		seen, _ = pool.Doubles(e.Names[0])
	})
	if err := pool.PutDoubles("A", []float64{4, 5}); err != nil {
		t.Fatalf("PutDoubles error: %v", err)
	}
	if diff := cmp.Diff([]float64{4, 5}, seen); diff != "" {
		t.Fatalf("subscriber read mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadJSON(t *testing.T) {
	pool := New()
	var events []Event
	pool.Subscribe(func(e Event) { events = append(events, e) })

	doc := `{
		"INS-999001_FOV_FRAME": "999001_FRAME",
		"INS-999001_FOV_SHAPE": ["RECTANGLE"],
		"INS-999001_BORESIGHT": [0, 0, 1],
		"INS-999001_FOV_REF_ANGLE": 10.5
	}`
	names, err := pool.Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	wantNames := []string{
		"INS-999001_BORESIGHT",
		"INS-999001_FOV_FRAME",
		"INS-999001_FOV_REF_ANGLE",
		"INS-999001_FOV_SHAPE",
	}
	if diff := cmp.Diff(wantNames, names); diff != "" {
		t.Fatalf("Load names mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Event{{Type: EventLoad, Names: wantNames}}, events); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}

	if got, _ := pool.Strings("INS-999001_FOV_FRAME"); len(got) != 1 || got[0] != "999001_FRAME" {
		t.Fatalf("frame = %v", got)
	}
	if got, _ := pool.Doubles("INS-999001_FOV_REF_ANGLE"); len(got) != 1 || got[0] != 10.5 {
		t.Fatalf("ref angle = %v", got)
	}
}

func TestLoadRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{name: "mixed", doc: `{"A": [1, "x"]}`, wantErr: ErrMixedTypes},
		{name: "empty array", doc: `{"A": []}`, wantErr: ErrMixedTypes},
		{name: "empty name", doc: `{"": [1]}`, wantErr: ErrEmptyName},
		{name: "object value", doc: `{"A": {"b": 1}}`},
		{name: "not json", doc: `INS = 1`},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			pool := New()
			_ = pool.PutDoubles("KEEP", []float64{1})
			_, err := pool.Load(strings.NewReader(tc.doc))
			if err == nil {
				t.Fatalf("expected Load to fail")
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("Load err = %v, want %v", err, tc.wantErr)
			}
			if pool.Len() != 1 {
				t.Fatalf("failed Load modified the pool: %v", pool.Names())
			}
		})
	}
}

func TestConcurrentAccess(t *testing.T) {
	pool := New()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = pool.Doubles("A")
			_ = pool.Names()
		}()
		go func() {
			defer wg.Done()
			_ = pool.PutDoubles("A", []float64{float64(i)})
		}()
	}
	wg.Wait()
	if !pool.Has("A") {
		t.Fatalf("expected A after concurrent puts")
	}
}
