package definition

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zeusync/btree/internal/core/bt"
	"github.com/zeusync/btree/internal/core/observability/log"
)

func tickN(tr *bt.Tree, n int) []bt.Status {
	out := make([]bt.Status, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, tr.Tick(context.Background()))
	}
	return out
}

func TestLoadFileAndBuild(t *testing.T) {
	def, err := LoadFile("testdata/patrol.yaml")
	require.NoError(t, err)
	assert.Equal(t, "patrol", def.Name)
	require.NotNil(t, def.Nodes["shout"].Position)

	tr, err := Build(def, NewDefaultRegistry(nil))
	require.NoError(t, err)
	assert.Equal(t, "patrol", tr.Name())
	assert.Equal(t, 5, tr.Len())

	assert.Equal(t, []bt.Status{bt.StatusRunning, bt.StatusRunning, bt.StatusSuccess}, tickN(tr, 3))
}

func TestLoadFileRejectsUnknownExtension(t *testing.T) {
	_, err := LoadFile("testdata/patrol.toml")
	assert.ErrorIs(t, err, ErrFormat)
	assert.NotErrorIs(t, err, os.ErrNotExist)
}

const seededJSON = `{
  "name": "medic",
  "root": "heal",
  "blackboard": {"n": 5, "hp": 3, "pos": {"x": 1.5, "y": 2}},
  "nodes": {
    "heal": {"kind": "sequence", "children": ["wounded", "bump"]},
    "wounded": {"kind": "condition", "condition": "bb_equals", "params": {"key": "hp", "value": 3}},
    "bump": {"kind": "action", "action": "bb_add", "params": {"key": "n"}}
  }
}`

func TestLoadJSONSeedsNumericBlackboard(t *testing.T) {
	def, err := LoadJSON(strings.NewReader(seededJSON))
	require.NoError(t, err)
	tr, err := Build(def, nil)
	require.NoError(t, err)

	hp, ok := tr.Blackboard().Get("hp")
	require.True(t, ok)
	assert.Equal(t, 3, hp)
	pos, _ := tr.Blackboard().Get("pos")
	assert.Equal(t, map[string]any{"x": 1.5, "y": 2}, pos)

	assert.Equal(t, []bt.Status{bt.StatusRunning, bt.StatusSuccess}, tickN(tr, 2))
	n, ok := tr.Blackboard().GetInt("n")
	require.True(t, ok)
	assert.Equal(t, 6, n)
}

const parallelJSON = `{
  "name": "guard",
  "root": "both",
  "nodes": {
    "both": {"kind": "parallel", "children": ["walk", "loop"]},
    "walk": {"kind": "action", "action": "wait_frames", "params": {"frames": 2}},
    "loop": {"kind": "repeat", "child": "count", "limit": 3},
    "count": {"kind": "action", "action": "bb_add", "params": {"key": "n"}}
  }
}`

func TestLoadJSONAndDefaults(t *testing.T) {
	def, err := LoadJSON(strings.NewReader(parallelJSON))
	require.NoError(t, err)

	tr, err := Build(def, nil)
	require.NoError(t, err)

	both, ok := tr.Lookup("both")
	require.True(t, ok)
	s, f := both.Thresholds()
	assert.Equal(t, 2, s, "success defaults to every child")
	assert.Equal(t, 1, f)

	assert.Equal(t, []bt.Status{bt.StatusRunning, bt.StatusRunning, bt.StatusSuccess}, tickN(tr, 3))
	n, _ := tr.Blackboard().GetInt("n")
	assert.Equal(t, 3, n)
}

func TestBuildWarnsAboutUnsettledThresholds(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	reg := NewDefaultRegistry(log.NewFromZap(zap.New(core), log.LevelDebug))
	def := &Definition{
		Name: "deadlock",
		Root: "both",
		Nodes: map[string]NodeDef{
			"both": {Kind: "Parallel", Children: []string{"a", "b"}, SuccessThreshold: 2, FailureThreshold: 2},
			"a":    {Kind: "Action", Action: "succeed"},
			"b":    {Kind: "Action", Action: "fail"},
		},
	}

	tr, err := Build(def, reg)
	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "deadlock", entry.ContextMap()["tree"])
	assert.Contains(t, entry.ContextMap()["error"], "may never settle")
	assert.Equal(t, []bt.Status{bt.StatusRunning, bt.StatusRunning}, tickN(tr, 2))
}

func TestBuildMonitorOrdersConditionsFirst(t *testing.T) {
	def := &Definition{
		Name: "guarded",
		Root: "mon",
		Nodes: map[string]NodeDef{
			"mon":   {Kind: "Monitor", Children: []string{"act", "alive"}, SuccessThreshold: 1, FailureThreshold: 1},
			"act":   {Kind: "Action", Action: "running"},
			"alive": {Kind: "Condition", Condition: "bb_has", Params: Params{"key": "hp"}},
		},
	}
	tr, err := Build(def, nil)
	require.NoError(t, err)

	mon, _ := tr.Lookup("mon")
	alive, _ := tr.Lookup("alive")
	assert.Equal(t, alive.Handle(), mon.Children()[0])
	assert.Equal(t, bt.StatusFailure, tr.Tick(context.Background()))
}

func TestBuildReportsEveryProblem(t *testing.T) {
	def := &Definition{
		Root: "root",
		Nodes: map[string]NodeDef{
			"root":  {Kind: "Sequence", Children: []string{"a", "b", "c", "ghost"}},
			"a":     {Kind: "Inverter"},
			"b":     {Kind: "Action", Action: "teleport"},
			"c":     {Kind: "Condition", Condition: "bb_is_true"},
			"draft": {Kind: "Action", Action: "succeed"},
		},
	}
	_, err := Build(def, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, bt.ErrInvalidTree)
	assert.ErrorIs(t, err, ErrUnknownKind)
	assert.ErrorIs(t, err, ErrUnknownLeaf)
	assert.ErrorIs(t, err, ErrBadParam)
	assert.ErrorIs(t, err, ErrMissingNode)
}

func TestBuildDetectsCycle(t *testing.T) {
	def := &Definition{
		Root: "a",
		Nodes: map[string]NodeDef{
			"a": {Kind: "Sequence", Children: []string{"b"}},
			"b": {Kind: "Selector", Children: []string{"a"}},
		},
	}
	_, err := Build(def, nil)
	assert.ErrorIs(t, err, bt.ErrCycle)
}

func TestBuildRunsStructuralValidation(t *testing.T) {
	def := &Definition{
		Root: "rep",
		Nodes: map[string]NodeDef{
			"rep": {Kind: "Repeat", Child: "a"},
			"a":   {Kind: "Action", Action: "succeed"},
		},
	}
	_, err := Build(def, nil)
	assert.ErrorIs(t, err, bt.ErrRepeatLimit)

	_, err = Build(&Definition{Nodes: map[string]NodeDef{}}, nil)
	assert.ErrorIs(t, err, bt.ErrNoRoot)
}

func TestExportSnapshot(t *testing.T) {
	def, err := LoadFile("testdata/patrol.yaml")
	require.NoError(t, err)
	tr, err := Build(def, nil)
	require.NoError(t, err)
	tickN(tr, 2)

	snap := Export(tr)
	assert.Equal(t, "patrol", snap.Tree)
	assert.Equal(t, "patrol", snap.Root)
	assert.Equal(t, uint64(2), snap.Frame)
	assert.Equal(t, true, snap.Blackboard["target_visible"])

	byID := make(map[string]NodeSnapshot, len(snap.Nodes))
	for _, n := range snap.Nodes {
		byID[n.ID] = n
	}
	assert.Equal(t, []string{"target-visible", "respond"}, byID["patrol"].Children)
	assert.Equal(t, 1, byID["patrol"].Index)
	assert.Equal(t, "Running", byID["chase"].Status)
	assert.Equal(t, "respond", byID["chase"].Parent)
	assert.Equal(t, "Waiting", byID["shout"].Status)

	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"fingerprint"`)
}

func TestFingerprintTracksStructureOnly(t *testing.T) {
	def, err := LoadFile("testdata/patrol.yaml")
	require.NoError(t, err)
	a, err := Build(def, nil)
	require.NoError(t, err)
	b, err := Build(def, nil)
	require.NoError(t, err)

	before := Fingerprint(a)
	assert.Equal(t, before, Fingerprint(b))
	tickN(a, 2)
	assert.Equal(t, before, Fingerprint(a), "state does not change the fingerprint")

	def.Nodes["respond"] = NodeDef{Kind: "Selector", Children: []string{"shout", "chase"}}
	c, err := Build(def, nil)
	require.NoError(t, err)
	assert.NotEqual(t, before, Fingerprint(c))
}

func TestEncodeYAMLRoundTrip(t *testing.T) {
	def, err := LoadFile("testdata/patrol.yaml")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, def.EncodeYAML(&buf))
	again, err := LoadYAML(&buf)
	require.NoError(t, err)
	assert.Equal(t, def.Nodes["respond"], again.Nodes["respond"])
}
