package definition

import (
	"encoding/json"
	"reflect"

	"github.com/zeusync/btree/internal/core/bt"
	"github.com/zeusync/btree/internal/core/observability/log"
)

// RegisterBuiltins registers the leaves every scenario can use without code.
func RegisterBuiltins(r *Registry) {
	// Actions
	r.RegisterAction("succeed", func(Params) (Leaf, error) {
		return Leaf{Update: bt.Succeed()}, nil
	})
	r.RegisterAction("fail", func(Params) (Leaf, error) {
		return Leaf{Update: bt.Fail()}, nil
	})
	r.RegisterAction("running", func(Params) (Leaf, error) {
		return Leaf{Update: bt.Always(bt.StatusRunning)}, nil
	})

	// script plays back "states" one per tick and keeps the last one.
	r.RegisterAction("script", func(p Params) (Leaf, error) {
		states, err := p.Statuses("states")
		if err != nil {
			return Leaf{}, err
		}
		return Leaf{Update: bt.Script(states...)}, nil
	})

	// wait_frames stays Running for "frames" ticks and then returns "result".
	// The countdown restarts whenever the node is entered afresh.
	r.RegisterAction("wait_frames", func(p Params) (Leaf, error) {
		frames, err := p.Int("frames", 1)
		if err != nil {
			return Leaf{}, err
		}
		result, err := p.Status("result", bt.StatusSuccess)
		if err != nil {
			return Leaf{}, err
		}
		left := frames
		return Leaf{
			Enter: func() { left = frames },
			Update: func(*bt.TickContext) bt.Status {
				if left > 0 {
					left--
					return bt.StatusRunning
				}
				return result
			},
		}, nil
	})

	r.RegisterAction("bb_set", func(p Params) (Leaf, error) {
		key, err := p.RequireString("key")
		if err != nil {
			return Leaf{}, err
		}
		val, _ := p.Value("value")
		return Leaf{Update: func(t *bt.TickContext) bt.Status {
			t.Blackboard.Set(key, val)
			return bt.StatusSuccess
		}}, nil
	})

	r.RegisterAction("bb_add", func(p Params) (Leaf, error) {
		key, err := p.RequireString("key")
		if err != nil {
			return Leaf{}, err
		}
		delta, err := p.Int("delta", 1)
		if err != nil {
			return Leaf{}, err
		}
		return Leaf{Update: func(t *bt.TickContext) bt.Status {
			t.Blackboard.Add(key, delta)
			return bt.StatusSuccess
		}}, nil
	})

	r.RegisterAction("log", func(p Params) (Leaf, error) {
		msg, err := p.RequireString("msg")
		if err != nil {
			return Leaf{}, err
		}
		level := log.LevelInfo
		if name := p.String("level"); name != "" {
			if level, err = log.ParseLevel(name); err != nil {
				return Leaf{}, err
			}
		}
		logger := r.Logger()
		return Leaf{Update: func(t *bt.TickContext) bt.Status {
			logger.Log(level, msg, log.Tree(t.Tree.Name()), log.Frame(t.Frame))
			return bt.StatusSuccess
		}}, nil
	})

	// Conditions
	r.RegisterCondition("bb_is_true", func(p Params) (func(*bt.TickContext) bool, error) {
		key, err := p.RequireString("key")
		if err != nil {
			return nil, err
		}
		return func(t *bt.TickContext) bool {
			b, _ := t.Blackboard.GetBool(key)
			return b
		}, nil
	})

	r.RegisterCondition("bb_has", func(p Params) (func(*bt.TickContext) bool, error) {
		key, err := p.RequireString("key")
		if err != nil {
			return nil, err
		}
		return func(t *bt.TickContext) bool { return t.Blackboard.Has(key) }, nil
	})

	r.RegisterCondition("bb_equals", func(p Params) (func(*bt.TickContext) bool, error) {
		key, err := p.RequireString("key")
		if err != nil {
			return nil, err
		}
		want, _ := p.Value("value")
		return func(t *bt.TickContext) bool {
			got, ok := t.Blackboard.Get(key)
			return ok && equalValues(got, want)
		}, nil
	})
}

// equalValues compares blackboard values, treating all numbers alike.
func equalValues(a, b any) bool {
	fa, aNum := toFloat(a)
	fb, bNum := toFloat(b)
	if aNum && bNum {
		return fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
