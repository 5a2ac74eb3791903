package ui

import (
	"strings"

	"github.com/canastawiki/canasta-modules/pkg/manifest"
	"github.com/canastawiki/canasta-modules/pkg/types"
)

// Resolution is the printable form of a resolved manifest chain
type Resolution struct {
	Locator string         `json:"locator" yaml:"locator"`
	Modules []types.Module `json:"modules" yaml:"modules"`
	Removed []string       `json:"removed,omitempty" yaml:"removed,omitempty"`
}

// NewResolution builds a Resolution from a resolved set
func NewResolution(locator string, set *manifest.ResolvedSet) *Resolution {
	r := &Resolution{Locator: locator, Modules: set.All()}
	for _, t := range types.AllModuleTypes {
		for _, name := range set.Removed(t) {
			r.Removed = append(r.Removed, string(t)+"/"+name)
		}
	}
	return r
}

// Fingerprint is the result of the fingerprint command
type Fingerprint struct {
	Digest string   `json:"digest" yaml:"digest"`
	Path   string   `json:"path" yaml:"path"`
	Files  []string `json:"files" yaml:"files"`
}

// moduleRow flattens a module declaration into table cells
func moduleRow(m types.Module) []string {
	d := m.Declaration
	source := d.Repository
	switch d.Mode() {
	case types.ModeComposer:
		source = d.ComposerPackage()
	case types.ModeBundled:
		source = "bundled"
	}
	revision := d.Commit
	if revision == "" {
		revision = d.Branch
	}
	steps := make([]string, len(d.AdditionalSteps))
	for i, s := range d.AdditionalSteps {
		steps[i] = string(s)
	}
	return []string{
		m.String(),
		string(d.Mode()),
		dash(source),
		dash(revision),
		dash(strings.Join(d.Patches, ", ")),
		dash(strings.Join(d.PersistentDirectories, ", ")),
		dash(strings.Join(steps, ", ")),
	}
}

var moduleHeader = []string{"Module", "Mode", "Source", "Revision", "Patches", "Persistent", "Steps"}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
