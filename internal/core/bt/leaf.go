package bt

// Leaf helpers used to build Action and Condition update hooks.

// Predicate turns a boolean check into an update hook: true is Success,
// false is Failure.
func Predicate(fn func(t *TickContext) bool) UpdateFunc {
	return func(t *TickContext) Status {
		if fn(t) {
			return StatusSuccess
		}
		return StatusFailure
	}
}

// Always returns the same status on every tick.
func Always(st Status) UpdateFunc {
	return func(*TickContext) Status { return st }
}

// Succeed completes immediately.
func Succeed() UpdateFunc { return Always(StatusSuccess) }

// Fail fails immediately.
func Fail() UpdateFunc { return Always(StatusFailure) }

// Script plays back states one per call and repeats the last one forever.
// A fresh run (enter) does not rewind the script.
func Script(states ...Status) UpdateFunc {
	if len(states) == 0 {
		states = []Status{StatusSuccess}
	}
	i := 0
	return func(*TickContext) Status {
		st := states[i]
		if i < len(states)-1 {
			i++
		}
		return st
	}
}

// RunFor stays Running for the given number of calls and then returns final.
// The countdown restarts each time the result is delivered.
func RunFor(frames int, final Status) UpdateFunc {
	left := frames
	return func(*TickContext) Status {
		if left > 0 {
			left--
			return StatusRunning
		}
		left = frames
		return final
	}
}
