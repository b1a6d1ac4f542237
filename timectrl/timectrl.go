// Package timectrl steps a clock across an interval and notifies listeners at
// each sample.
package timectrl

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrInvalidStep is returned when the step is not positive.
var ErrInvalidStep = errors.New("time step must be positive")

// Mode describes how the TimeController advances time.
type Mode int

const (
	// RealTime waits one wall-clock Tick between samples.
	RealTime Mode = iota
	// Accelerated emits samples as fast as listeners consume them.
	Accelerated
)

// Listener is invoked for every sample. Returning an error stops the run.
type Listener func(time.Time) error

// TimeController drives sample time and notifies registered listeners.
type TimeController struct {
	mu        sync.RWMutex
	StartTime time.Time
	Tick      time.Duration
	Mode      Mode

	currentTime time.Time
	listeners   []Listener
}

// NewTimeController constructs a controller.
func NewTimeController(start time.Time, tick time.Duration, mode Mode) *TimeController {
	return &TimeController{
		StartTime:   start,
		Tick:        tick,
		Mode:        mode,
		currentTime: start,
	}
}

// Now returns the time of the latest sample.
func (tc *TimeController) Now() time.Time {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.currentTime
}

// SetTime moves the current time without notifying listeners.
func (tc *TimeController) SetTime(t time.Time) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.currentTime = t
}

// AddListener registers a callback invoked on every sample.
func (tc *TimeController) AddListener(fn Listener) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.listeners = append(tc.listeners, fn)
}

// Run samples StartTime, StartTime+Tick, ... up to and including
// StartTime+duration and calls every listener at each sample. It returns the
// number of samples taken and stops early on context cancellation or the
// first listener error.
func (tc *TimeController) Run(ctx context.Context, duration time.Duration) (int, error) {
	if tc.Tick <= 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidStep, tc.Tick)
	}

	tc.mu.RLock()
	listeners := append([]Listener(nil), tc.listeners...)
	tc.mu.RUnlock()

	var ticker *time.Ticker
	if tc.Mode == RealTime {
		ticker = time.NewTicker(tc.Tick)
		defer ticker.Stop()
	}

	samples := 0
	for elapsed := time.Duration(0); elapsed <= duration; elapsed += tc.Tick {
		if samples > 0 && ticker != nil {
			select {
			case <-ctx.Done():
				return samples, ctx.Err()
			case <-ticker.C:
			}
		} else if err := ctx.Err(); err != nil {
			return samples, err
		}

		simTime := tc.StartTime.Add(elapsed)
		tc.SetTime(simTime)
		for _, fn := range listeners {
			if err := fn(simTime); err != nil {
				return samples, fmt.Errorf("sample %s: %w", simTime.Format(time.RFC3339), err)
			}
		}
		samples++
	}
	return samples, nil
}

// Sweep calls fn at start, start+step, ... up to and including
// start+duration without waiting between samples.
func Sweep(ctx context.Context, start time.Time, duration, step time.Duration, fn Listener) (int, error) {
	tc := NewTimeController(start, step, Accelerated)
	tc.AddListener(fn)
	return tc.Run(ctx, duration)
}
