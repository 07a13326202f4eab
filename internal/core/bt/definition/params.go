package definition

import (
	"encoding/json"
	"fmt"

	"github.com/zeusync/btree/internal/core/bt"
)

// Params are the free-form leaf parameters of a NodeDef. Numbers arrive as
// int from YAML and as json.Number from JSON; the accessors accept both.
type Params map[string]any

// String returns a string parameter, or "" if absent.
func (p Params) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// RequireString fails when the parameter is missing or empty.
func (p Params) RequireString(key string) (string, error) {
	s := p.String(key)
	if s == "" {
		return "", fmt.Errorf("%w: %q is required", ErrBadParam, key)
	}
	return s, nil
}

// Int returns an integer parameter or def when absent.
func (p Params) Int(key string, def int) (int, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("%w: %q must be an integer, got %v", ErrBadParam, key, n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %w", ErrBadParam, key, err)
		}
		return int(i), nil
	default:
		return 0, fmt.Errorf("%w: %q must be an integer, got %T", ErrBadParam, key, v)
	}
}

// Bool returns a boolean parameter or def when absent.
func (p Params) Bool(key string, def bool) bool {
	if b, ok := p[key].(bool); ok {
		return b
	}
	return def
}

// Value returns the parameter with JSON numbers normalized.
func (p Params) Value(key string) (any, bool) {
	v, ok := p[key]
	return normalize(v), ok
}

// normalize turns json.Number into int or float64, descending into maps and
// slices decoded alongside it.
func normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return int(i)
		}
		f, _ := x.Float64()
		return f
	case map[string]any:
		for k, e := range x {
			x[k] = normalize(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = normalize(e)
		}
		return x
	default:
		return v
	}
}

// Status parses a status parameter, returning def when absent.
func (p Params) Status(key string, def bt.Status) (bt.Status, error) {
	name := p.String(key)
	if name == "" {
		return def, nil
	}
	st, ok := bt.ParseStatus(name)
	if !ok || !st.IsUpdateOutcome() {
		return 0, fmt.Errorf("%w: %q is not a leaf outcome: %s", ErrBadParam, key, name)
	}
	return st, nil
}

// Statuses parses a list of status names.
func (p Params) Statuses(key string) ([]bt.Status, error) {
	raw, ok := p[key].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q must be a list of states", ErrBadParam, key)
	}
	out := make([]bt.Status, 0, len(raw))
	for _, v := range raw {
		name, _ := v.(string)
		st, ok := bt.ParseStatus(name)
		if !ok || !st.IsUpdateOutcome() {
			return nil, fmt.Errorf("%w: %q contains %v", ErrBadParam, key, v)
		}
		out = append(out, st)
	}
	return out, nil
}
