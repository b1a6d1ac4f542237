package timectrl

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTimeControllerSetTime(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start, time.Second, RealTime)

	newNow := start.Add(42 * time.Second)
	tc.SetTime(newNow)

	if got := tc.Now(); !got.Equal(newNow) {
		t.Fatalf("Now() = %v, want %v", got, newNow)
	}
}

func TestTimeControllerRunUpdatesNow(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start, 5*time.Millisecond, RealTime)

	n, err := tc.Run(context.Background(), 15*time.Millisecond)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 4 {
		t.Fatalf("samples = %d, want 4", n)
	}
	expected := start.Add(15 * time.Millisecond)
	if got := tc.Now(); !got.Equal(expected) {
		t.Fatalf("Now() = %v, want %v", got, expected)
	}
}

func TestSweepIsInclusiveAndDeterministic(t *testing.T) {
	start := time.Date(2021, time.October, 2, 0, 0, 0, 0, time.UTC)
	var got []time.Time
	n, err := Sweep(context.Background(), start, time.Hour, 20*time.Minute, func(ts time.Time) error {
		got = append(got, ts)
		return nil
	})
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	want := []time.Time{start, start.Add(20 * time.Minute), start.Add(40 * time.Minute), start.Add(time.Hour)}
	if n != len(want) || len(got) != len(want) {
		t.Fatalf("samples = %d (%d recorded), want %d", n, len(got), len(want))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSweepStopsOnListenerError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	n, err := Sweep(context.Background(), time.Unix(0, 0), time.Hour, time.Minute, func(time.Time) error {
		calls++
		if calls == 3 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if n != 2 || calls != 3 {
		t.Fatalf("samples = %d, calls = %d", n, calls)
	}
}

func TestSweepHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	n, err := Sweep(ctx, time.Unix(0, 0), time.Hour, time.Minute, func(time.Time) error {
		cancel()
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if n != 1 {
		t.Fatalf("samples = %d, want 1", n)
	}
}

func TestSweepRejectsBadStep(t *testing.T) {
	if _, err := Sweep(context.Background(), time.Unix(0, 0), time.Hour, 0, func(time.Time) error { return nil }); !errors.Is(err, ErrInvalidStep) {
		t.Fatalf("err = %v, want ErrInvalidStep", err)
	}
}
