package bt

// Status is the execution state of a behavior tree node.
//
// A node starts in StatusWaiting, moves to StatusRunning while a multi-frame
// step is in progress and ends in one of the terminal states. Terminal states
// stick until ResetState returns the node to StatusWaiting.
type Status uint8

const (
	StatusWaiting Status = iota
	StatusRunning
	StatusSuccess
	StatusFailure
	StatusAbort
)

func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "Waiting"
	case StatusRunning:
		return "Running"
	case StatusSuccess:
		return "Success"
	case StatusFailure:
		return "Failure"
	case StatusAbort:
		return "Abort"
	default:
		return "Invalid"
	}
}

// IsTerminal reports whether s is Success, Failure or Abort.
func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFailure || s == StatusAbort
}

// IsUpdateOutcome reports whether an update hook may legally return s.
// Abort is reserved for the interpreter.
func (s Status) IsUpdateOutcome() bool {
	return s <= StatusFailure
}

// ParseStatus converts a status name, capitalized or lowercase, back into a Status.
func ParseStatus(name string) (Status, bool) {
	switch name {
	case "Waiting", "waiting":
		return StatusWaiting, true
	case "Running", "running":
		return StatusRunning, true
	case "Success", "success":
		return StatusSuccess, true
	case "Failure", "failure":
		return StatusFailure, true
	case "Abort", "abort":
		return StatusAbort, true
	default:
		return StatusWaiting, false
	}
}
