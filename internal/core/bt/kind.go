package bt

// Kind is the closed set of node variants the interpreter knows how to run.
// Every composition rule is selected by switching on Kind, never by
// inspecting concrete types.
type Kind uint8

const (
	KindSequence Kind = iota
	KindSelector
	KindParallel
	KindMonitor
	KindRepeat
	KindAction
	KindCondition
)

var kindNames = [...]string{
	KindSequence:  "Sequence",
	KindSelector:  "Selector",
	KindParallel:  "Parallel",
	KindMonitor:   "Monitor",
	KindRepeat:    "Repeat",
	KindAction:    "Action",
	KindCondition: "Condition",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// IsControl reports whether k owns an ordered list of children.
func (k Kind) IsControl() bool {
	switch k {
	case KindSequence, KindSelector, KindParallel, KindMonitor:
		return true
	default:
		return false
	}
}

// IsDecorator reports whether k wraps exactly one child.
func (k Kind) IsDecorator() bool { return k == KindRepeat }

// IsLeaf reports whether k carries user logic and no children.
func (k Kind) IsLeaf() bool { return k == KindAction || k == KindCondition }

// ParseKind resolves a kind by name. Lowercase names are accepted as well.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name || lower(n) == name {
			return Kind(k), true
		}
	}
	return 0, false
}

func lower(s string) string {
	b := []byte(s)
	if len(b) > 0 && b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
