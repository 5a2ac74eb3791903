package installer

import (
	"github.com/canastawiki/canasta-modules/pkg/types"
)

// ModuleReport records what happened to one module
type ModuleReport struct {
	Type       types.ModuleType `json:"type" yaml:"type"`
	Name       string           `json:"name" yaml:"name"`
	Mode       types.Mode       `json:"mode" yaml:"mode"`
	Repository string           `json:"repository,omitempty" yaml:"repository,omitempty"`
	Revision   string           `json:"revision,omitempty" yaml:"revision,omitempty"`
	Package    string           `json:"package,omitempty" yaml:"package,omitempty"`
	Patches    []string         `json:"patches,omitempty" yaml:"patches,omitempty"`
	Steps      []types.Step     `json:"steps,omitempty" yaml:"steps,omitempty"`
	Provenance bool             `json:"provenance" yaml:"provenance"`
	Relocated  []string         `json:"relocated,omitempty" yaml:"relocated,omitempty"`
	Warnings   []string         `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Module returns the "<type>/<name>" label
func (r ModuleReport) Module() string {
	return string(r.Type) + "/" + r.Name
}

// Report summarizes a run
type Report struct {
	Modules          []ModuleReport `json:"modules" yaml:"modules"`
	Removed          []string       `json:"removed,omitempty" yaml:"removed,omitempty"`
	Links            int            `json:"links" yaml:"links"`
	Includes         []string       `json:"includes" yaml:"includes"`
	ComposerExitCode int            `json:"composerExitCode" yaml:"composerExitCode"`
	Fingerprint      string         `json:"fingerprint" yaml:"fingerprint"`
	Warnings         []string       `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// WarningCount returns the number of warnings across the run
func (r *Report) WarningCount() int {
	n := len(r.Warnings)
	for _, m := range r.Modules {
		n += len(m.Warnings)
	}
	return n
}
