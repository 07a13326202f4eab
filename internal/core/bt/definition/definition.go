// Package definition describes behavior trees declaratively and turns such
// descriptions into runnable bt.Tree arenas.
package definition

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownKind = errors.New("unknown node kind")
	ErrUnknownLeaf = errors.New("unknown leaf")
	ErrMissingNode = errors.New("node referenced but not defined")
	ErrBadParam    = errors.New("invalid leaf parameter")
	ErrFormat      = errors.New("unsupported definition format")
)

// Definition is a unified structure able to describe a tree in JSON or YAML.
// Nodes are keyed by their identity; edges are given by child references.
type Definition struct {
	Name       string             `json:"name" yaml:"name"`
	Version    string             `json:"version,omitempty" yaml:"version,omitempty"`
	Root       string             `json:"root" yaml:"root"`
	Nodes      map[string]NodeDef `json:"nodes" yaml:"nodes"`
	Blackboard map[string]any     `json:"blackboard,omitempty" yaml:"blackboard,omitempty"`
}

// NodeDef describes one node.
type NodeDef struct {
	Kind      string   `json:"kind" yaml:"kind"`
	Children  []string `json:"children,omitempty" yaml:"children,omitempty"`
	Child     string   `json:"child,omitempty" yaml:"child,omitempty"`
	Action    string   `json:"action,omitempty" yaml:"action,omitempty"`
	Condition string   `json:"condition,omitempty" yaml:"condition,omitempty"`
	Params    Params   `json:"params,omitempty" yaml:"params,omitempty"`

	SuccessThreshold int `json:"success,omitempty" yaml:"success,omitempty"`
	FailureThreshold int `json:"failure,omitempty" yaml:"failure,omitempty"`
	Limit            int `json:"limit,omitempty" yaml:"limit,omitempty"`

	// Position is editor layout data; it has no effect on evaluation.
	Position *Position `json:"position,omitempty" yaml:"position,omitempty"`
}

type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// childRefs returns the child references in declaration order.
func (d NodeDef) childRefs() []string {
	if d.Child == "" {
		return d.Children
	}
	return append([]string{d.Child}, d.Children...)
}

// LoadJSON loads a definition from a JSON reader.
func LoadJSON(r io.Reader) (*Definition, error) {
	var d Definition
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("decode json definition: %w", err)
	}
	return &d, nil
}

// LoadYAML loads a definition from a YAML reader.
func LoadYAML(r io.Reader) (*Definition, error) {
	var d Definition
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("decode yaml definition: %w", err)
	}
	return &d, nil
}

// LoadFile picks the decoder from the file extension.
func LoadFile(path string) (*Definition, error) {
	var load func(io.Reader) (*Definition, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		load = LoadYAML
	case ".json":
		load = LoadJSON
	default:
		return nil, fmt.Errorf("%w: %s", ErrFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d, err := load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if d.Name == "" {
		d.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return d, nil
}

// EncodeYAML writes the definition back in YAML form.
func (d *Definition) EncodeYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return err
	}
	return enc.Close()
}
