package bt

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Blackboard is the domain state shared by the leaves of a tree.
// It is safe for concurrent use so that sensors and inspectors may read it
// while the owning agent ticks.
type Blackboard struct {
	mu      sync.RWMutex
	data    map[string]any
	version uint64
}

// NewBlackboard creates an empty blackboard.
func NewBlackboard() *Blackboard {
	return &Blackboard{data: make(map[string]any)}
}

// Set stores a value.
func (bb *Blackboard) Set(key string, value any) {
	bb.mu.Lock()
	bb.data[key] = value
	bb.version++
	bb.mu.Unlock()
}

// Get returns the value stored under key.
func (bb *Blackboard) Get(key string) (any, bool) {
	bb.mu.RLock()
	defer bb.mu.RUnlock()

	v, ok := bb.data[key]
	return v, ok
}

// GetString returns a string value.
func (bb *Blackboard) GetString(key string) (string, bool) {
	v, ok := bb.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetInt returns an integer value. Floats decoded from JSON are truncated.
func (bb *Blackboard) GetInt(key string) (int, bool) {
	v, ok := bb.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		return numberInt(n)
	default:
		return 0, false
	}
}

func numberInt(n json.Number) (int, bool) {
	if i, err := n.Int64(); err == nil {
		return int(i), true
	}
	f, err := n.Float64()
	return int(f), err == nil
}

// GetFloat returns a float value.
func (bb *Blackboard) GetFloat(key string) (float64, bool) {
	v, ok := bb.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// GetBool returns a boolean value.
func (bb *Blackboard) GetBool(key string) (bool, bool) {
	v, ok := bb.Get(key)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Add increments an integer value by delta and returns the result.
func (bb *Blackboard) Add(key string, delta int) int {
	bb.mu.Lock()
	defer bb.mu.Unlock()

	cur := 0
	switch n := bb.data[key].(type) {
	case int:
		cur = n
	case int64:
		cur = int(n)
	case float64:
		cur = int(n)
	case json.Number:
		cur, _ = numberInt(n)
	}
	cur += delta
	bb.data[key] = cur
	bb.version++
	return cur
}

// Has reports whether key is present.
func (bb *Blackboard) Has(key string) bool {
	_, ok := bb.Get(key)
	return ok
}

// Delete removes key.
func (bb *Blackboard) Delete(key string) {
	bb.mu.Lock()
	if _, ok := bb.data[key]; ok {
		delete(bb.data, key)
		bb.version++
	}
	bb.mu.Unlock()
}

// Keys returns the sorted keys, optionally restricted to a prefix.
func (bb *Blackboard) Keys(prefix string) []string {
	bb.mu.RLock()
	keys := make([]string, 0, len(bb.data))
	for k := range bb.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	bb.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Version increases on every mutation.
func (bb *Blackboard) Version() uint64 {
	bb.mu.RLock()
	defer bb.mu.RUnlock()
	return bb.version
}

// Clear removes every key.
func (bb *Blackboard) Clear() {
	bb.mu.Lock()
	bb.data = make(map[string]any)
	bb.version++
	bb.mu.Unlock()
}

// Snapshot returns a shallow copy of the stored values.
func (bb *Blackboard) Snapshot() map[string]any {
	bb.mu.RLock()
	defer bb.mu.RUnlock()

	out := make(map[string]any, len(bb.data))
	for k, v := range bb.data {
		out[k] = v
	}
	return out
}

type blackboardJSON struct {
	Data    map[string]any `json:"data"`
	Version uint64         `json:"version"`
}

// MarshalJSON exports the blackboard.
func (bb *Blackboard) MarshalJSON() ([]byte, error) {
	bb.mu.RLock()
	defer bb.mu.RUnlock()
	return json.Marshal(blackboardJSON{Data: bb.data, Version: bb.version})
}

// UnmarshalJSON replaces the content of the blackboard.
func (bb *Blackboard) UnmarshalJSON(b []byte) error {
	var in blackboardJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return fmt.Errorf("unmarshal blackboard: %w", err)
	}
	if in.Data == nil {
		in.Data = make(map[string]any)
	}
	bb.mu.Lock()
	bb.data = in.Data
	bb.version = in.Version
	bb.mu.Unlock()
	return nil
}
