package kernelpool

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Load reads a JSON object mapping variable names to values and stores them
// in the pool. A value is a number, a string, or an array of either; arrays
// mixing the two are rejected with ErrMixedTypes. Nothing is stored unless
// the whole document is valid.
//
//	{
//	  "INS-999001_FOV_SHAPE": "RECTANGLE",
//	  "INS-999001_BORESIGHT": [0, 0, 1]
//	}
func (p *Pool) Load(r io.Reader) ([]string, error) {
	var payload map[string]json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("kernelpool: decode failed: %w", err)
	}

	doubles := make(map[string][]float64)
	strs := make(map[string][]string)
	for name, raw := range payload {
		if name == "" {
			return nil, ErrEmptyName
		}
		d, s, err := decodeValue(raw)
		if err != nil {
			return nil, fmt.Errorf("kernelpool: %q: %w", name, err)
		}
		if d != nil {
			doubles[name] = d
		} else {
			strs[name] = s
		}
	}

	names := make([]string, 0, len(payload))
	p.mu.Lock()
	for name, v := range doubles {
		delete(p.strings, name)
		p.doubles[name] = v
		names = append(names, name)
	}
	for name, v := range strs {
		delete(p.doubles, name)
		p.strings[name] = v
		names = append(names, name)
	}
	subs := p.subscribersLocked()
	p.mu.Unlock()

	sort.Strings(names)
	notify(subs, Event{Type: EventLoad, Names: names})
	return names, nil
}

// decodeValue returns exactly one non-nil slice.
func decodeValue(raw json.RawMessage) ([]float64, []string, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		// Scalars are one-element variables.
		items = []json.RawMessage{raw}
	}
	if len(items) == 0 {
		return nil, nil, fmt.Errorf("%w: empty array has no type", ErrMixedTypes)
	}

	var (
		doubles []float64
		strs    []string
	)
	for i, item := range items {
		var f float64
		if err := json.Unmarshal(item, &f); err == nil {
			doubles = append(doubles, f)
			continue
		}
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			strs = append(strs, s)
			continue
		}
		return nil, nil, fmt.Errorf("element %d is neither a number nor a string: %s", i, item)
	}
	if doubles != nil && strs != nil {
		return nil, nil, ErrMixedTypes
	}
	return doubles, strs, nil
}
