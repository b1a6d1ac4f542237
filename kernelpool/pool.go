// Package kernelpool is an in-memory store of named kernel-pool variables.
// Each variable holds either a list of doubles or a list of strings.
package kernelpool

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrVariableNotFound = errors.New("kernel pool variable not found")
	ErrEmptyName        = errors.New("kernel pool variable name is empty")
	ErrMixedTypes       = errors.New("kernel pool variable mixes numbers and strings")
)

// EventType indicates what kind of change happened in the pool.
type EventType int

const (
	EventPut EventType = iota
	EventDelete
	EventClear
	EventLoad
)

func (t EventType) String() string {
	switch t {
	case EventPut:
		return "put"
	case EventDelete:
		return "delete"
	case EventClear:
		return "clear"
	case EventLoad:
		return "load"
	default:
		return fmt.Sprintf("EventType(%d)", int(t))
	}
}

// Event is delivered to subscribers after the pool changes. Names lists the
// affected variables; it is empty for EventClear.
type Event struct {
	Type  EventType
	Names []string
}

// Pool is a thread-safe kernel pool. The zero value is not usable; call New.
type Pool struct {
	mu sync.RWMutex

	doubles map[string][]float64
	strings map[string][]string

	nextSub int
	subs    map[int]func(Event)
}

// New constructs an empty pool.
func New() *Pool {
	return &Pool{
		doubles: make(map[string][]float64),
		strings: make(map[string][]string),
		subs:    make(map[int]func(Event)),
	}
}

// PutDoubles stores values under name, replacing any previous value of
// either type.
func (p *Pool) PutDoubles(name string, values []float64) error {
	if name == "" {
		return ErrEmptyName
	}
	cp := append([]float64(nil), values...)

	p.mu.Lock()
	delete(p.strings, name)
	p.doubles[name] = cp
	subs := p.subscribersLocked()
	p.mu.Unlock()

	notify(subs, Event{Type: EventPut, Names: []string{name}})
	return nil
}

// PutStrings stores values under name, replacing any previous value of
// either type.
func (p *Pool) PutStrings(name string, values []string) error {
	if name == "" {
		return ErrEmptyName
	}
	cp := append([]string(nil), values...)

	p.mu.Lock()
	delete(p.doubles, name)
	p.strings[name] = cp
	subs := p.subscribersLocked()
	p.mu.Unlock()

	notify(subs, Event{Type: EventPut, Names: []string{name}})
	return nil
}

// Doubles returns a copy of the numeric variable name.
func (p *Pool) Doubles(name string) ([]float64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	v, ok := p.doubles[name]
	if !ok {
		if _, isString := p.strings[name]; isString {
			return nil, fmt.Errorf("%w: %q holds strings, not numbers", ErrVariableNotFound, name)
		}
		return nil, fmt.Errorf("%w: %q", ErrVariableNotFound, name)
	}
	return append([]float64(nil), v...), nil
}

// Strings returns a copy of the string variable name.
func (p *Pool) Strings(name string) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	v, ok := p.strings[name]
	if !ok {
		if _, isNumeric := p.doubles[name]; isNumeric {
			return nil, fmt.Errorf("%w: %q holds numbers, not strings", ErrVariableNotFound, name)
		}
		return nil, fmt.Errorf("%w: %q", ErrVariableNotFound, name)
	}
	return append([]string(nil), v...), nil
}

// Has reports whether a variable of either type exists.
func (p *Pool) Has(name string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, d := p.doubles[name]
	_, s := p.strings[name]
	return d || s
}

// Delete removes name and reports whether it existed.
func (p *Pool) Delete(name string) bool {
	p.mu.Lock()
	_, d := p.doubles[name]
	_, s := p.strings[name]
	if !d && !s {
		p.mu.Unlock()
		return false
	}
	delete(p.doubles, name)
	delete(p.strings, name)
	subs := p.subscribersLocked()
	p.mu.Unlock()

	notify(subs, Event{Type: EventDelete, Names: []string{name}})
	return true
}

// Clear removes every variable.
func (p *Pool) Clear() {
	p.mu.Lock()
	p.doubles = make(map[string][]float64)
	p.strings = make(map[string][]string)
	subs := p.subscribersLocked()
	p.mu.Unlock()

	notify(subs, Event{Type: EventClear})
}

// Names returns the sorted names of all variables.
func (p *Pool) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	res := make([]string, 0, len(p.doubles)+len(p.strings))
	for name := range p.doubles {
		res = append(res, name)
	}
	for name := range p.strings {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}

// Len returns the number of variables.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.doubles) + len(p.strings)
}

// Subscribe registers a callback for pool events. Callbacks run on the
// goroutine that made the change, after the pool lock is released. It
// returns an unsubscribe function.
func (p *Pool) Subscribe(fn func(Event)) (unsubscribe func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

func (p *Pool) subscribersLocked() []func(Event) {
	ids := make([]int, 0, len(p.subs))
	for id := range p.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	res := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		res = append(res, p.subs[id])
	}
	return res
}

func notify(subs []func(Event), ev Event) {
	for _, sub := range subs {
		sub(ev)
	}
}
