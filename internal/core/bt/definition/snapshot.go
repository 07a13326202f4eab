package definition

import (
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/btree/internal/core/bt"
)

// Snapshot is the external view of a tree: every node of the arena with its
// edges and live state. Authoring tools rebuild the graph from it and
// inspectors use it to highlight running nodes.
type Snapshot struct {
	Tree        string         `json:"tree"`
	Root        string         `json:"root,omitempty"`
	Frame       uint64         `json:"frame"`
	Fingerprint string         `json:"fingerprint"`
	Nodes       []NodeSnapshot `json:"nodes"`
	Blackboard  map[string]any `json:"blackboard,omitempty"`
}

type NodeSnapshot struct {
	ID       string   `json:"id"`
	Kind     string   `json:"kind"`
	Status   string   `json:"status"`
	Parent   string   `json:"parent,omitempty"`
	Children []string `json:"children,omitempty"`

	Index            int `json:"index,omitempty"`
	SuccessThreshold int `json:"success,omitempty"`
	FailureThreshold int `json:"failure,omitempty"`
	SuccessCount     int `json:"success_count,omitempty"`
	FailureCount     int `json:"failure_count,omitempty"`
	Limit            int `json:"limit,omitempty"`
	Counter          int `json:"counter,omitempty"`
}

// Export captures the current structure and state of tr.
func Export(tr *bt.Tree) Snapshot {
	nodes := tr.Nodes()
	s := Snapshot{
		Tree:        tr.Name(),
		Frame:       tr.Frame(),
		Fingerprint: Fingerprint(tr),
		Nodes:       make([]NodeSnapshot, 0, len(nodes)),
		Blackboard:  tr.Blackboard().Snapshot(),
	}
	if r := tr.Root(); r != nil {
		s.Root = r.ID()
	}
	for _, n := range nodes {
		ns := NodeSnapshot{
			ID:     n.ID(),
			Kind:   n.Kind().String(),
			Status: n.Status().String(),
		}
		if p := tr.Node(n.Parent()); p != nil {
			ns.Parent = p.ID()
		}
		for _, c := range n.Children() {
			ns.Children = append(ns.Children, tr.Node(c).ID())
		}
		switch n.Kind() {
		case bt.KindSequence, bt.KindSelector:
			ns.Index = n.Index()
		case bt.KindParallel, bt.KindMonitor:
			ns.SuccessThreshold, ns.FailureThreshold = n.Thresholds()
			ns.SuccessCount, ns.FailureCount = n.Counters()
		case bt.KindRepeat:
			ns.Limit, ns.Counter = n.Limit(), n.Counter()
		}
		s.Nodes = append(s.Nodes, ns)
	}
	return s
}

// Fingerprint hashes the structure of tr: identities, kinds, parameters of
// the kind policies and edges. Live state does not affect it.
func Fingerprint(tr *bt.Tree) string {
	d := xxhash.New()
	if r := tr.Root(); r != nil {
		_, _ = d.WriteString(r.ID())
	}
	for _, n := range tr.Nodes() {
		_, _ = d.WriteString("|" + n.ID() + ":" + n.Kind().String())
		switch n.Kind() {
		case bt.KindParallel, bt.KindMonitor:
			s, f := n.Thresholds()
			_, _ = d.WriteString(":" + strconv.Itoa(s) + "/" + strconv.Itoa(f))
		case bt.KindRepeat:
			_, _ = d.WriteString(":" + strconv.Itoa(n.Limit()))
		}
		for _, c := range n.Children() {
			_, _ = d.WriteString(">" + tr.Node(c).ID())
		}
	}
	return strconv.FormatUint(d.Sum64(), 16)
}
