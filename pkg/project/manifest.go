// Package project loads cellforge.toml project manifests.
//
// A manifest names the project, the target schema and output formats, and a
// list of generation targets: named block instantiations with parameter
// tables. The CLI and the pipeline consume manifests; the generation core
// never reads one.
package project

import (
	"encoding/json"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/cellforge/cellforge/pkg/errors"
)

// DefaultManifestName is the manifest filename looked up in the working
// directory when no explicit path is given.
const DefaultManifestName = "cellforge.toml"

// Views a target can request.
const (
	ViewSchematic = "schematic"
	ViewLayout    = "layout"
)

// Manifest is one parsed cellforge.toml.
type Manifest struct {
	Project Project  `toml:"project"`
	Targets []Target `toml:"targets"`
}

// Project carries project-wide settings.
type Project struct {
	Name string `toml:"name"`
	// Schema is the target schema for every target, e.g. "spice".
	Schema string `toml:"schema"`
	// Formats are the artifact formats to export, default ["json"].
	Formats []string `toml:"formats"`
	// Out is the artifact output directory, default "build".
	Out string `toml:"out"`
}

// Target is one named generation request.
type Target struct {
	Name  string `toml:"name"`
	Block string `toml:"block"`
	// View selects schematic or layout generation, default schematic.
	View   string         `toml:"view"`
	Params map[string]any `toml:"params"`
}

// RawParams returns the parameter table re-encoded as JSON for block
// factories.
func (t Target) RawParams() (json.RawMessage, error) {
	if len(t.Params) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(t.Params)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "encode params of target %q", t.Name)
	}
	return raw, nil
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read manifest %s", path)
	}
	return Parse(data)
}

// Parse parses and validates manifest bytes.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse manifest")
	}
	m.applyDefaults()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) applyDefaults() {
	if len(m.Project.Formats) == 0 {
		m.Project.Formats = []string{"json"}
	}
	if m.Project.Out == "" {
		m.Project.Out = "build"
	}
	for i := range m.Targets {
		if m.Targets[i].View == "" {
			m.Targets[i].View = ViewSchematic
		}
	}
}

// Validate checks the manifest for structural problems. All failures carry
// the INVALID_MANIFEST code.
func (m *Manifest) Validate() error {
	if err := errors.ValidateBlockName(m.Project.Name); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidManifest, err, "project name")
	}
	if err := errors.ValidateSchemaName(m.Project.Schema); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidManifest, err, "project schema")
	}
	if len(m.Targets) == 0 {
		return errors.New(errors.ErrCodeInvalidManifest, "manifest has no targets")
	}
	seen := make(map[string]bool, len(m.Targets))
	for _, t := range m.Targets {
		if err := errors.ValidateBlockName(t.Name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidManifest, err, "target name")
		}
		if seen[t.Name] {
			return errors.New(errors.ErrCodeInvalidManifest, "duplicate target %q", t.Name)
		}
		seen[t.Name] = true
		if t.Block == "" {
			return errors.New(errors.ErrCodeInvalidManifest, "target %q has no block", t.Name)
		}
		if t.View != ViewSchematic && t.View != ViewLayout {
			return errors.New(errors.ErrCodeInvalidManifest,
				"target %q: view must be %q or %q, got %q", t.Name, ViewSchematic, ViewLayout, t.View)
		}
	}
	return nil
}
