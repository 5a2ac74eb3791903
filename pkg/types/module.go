package types

// ModuleType is the kind of a module: extension or skin
type ModuleType string

const (
	Extensions ModuleType = "extensions"
	Skins      ModuleType = "skins"
)

// AllModuleTypes lists module types in installation order
var AllModuleTypes = []ModuleType{Extensions, Skins}

// Step is a post-fetch action from the additional steps vocabulary
type Step string

const (
	// StepComposerUpdate defers dependency installation to the unified composer pass
	StepComposerUpdate Step = "composer update"
	// StepSubmoduleUpdate initializes nested repositories in place
	StepSubmoduleUpdate Step = "git submodule update"
)

// Known reports whether the step is part of the supported vocabulary
func (s Step) Known() bool {
	return s == StepComposerUpdate || s == StepSubmoduleUpdate
}

// Mode is how a module's code gets onto disk
type Mode string

const (
	ModeComposer Mode = "composer"
	ModeBundled  Mode = "bundled"
	ModeClone    Mode = "clone"
)

// Declaration is a single module entry from a manifest.
// A more derived manifest replaces the whole declaration, fields are never merged.
type Declaration struct {
	Remove                bool     `yaml:"remove,omitempty" json:"remove,omitempty"`
	Repository            string   `yaml:"repository,omitempty" json:"repository,omitempty"`
	Commit                string   `yaml:"commit,omitempty" json:"commit,omitempty"`
	Branch                string   `yaml:"branch,omitempty" json:"branch,omitempty"`
	Patches               []string `yaml:"patches,omitempty" json:"patches,omitempty"`
	PersistentDirectories []string `yaml:"persistent directories,omitempty" json:"persistentDirectories,omitempty"`
	AdditionalSteps       []Step   `yaml:"additional steps,omitempty" json:"additionalSteps,omitempty"`
	Bundled               bool     `yaml:"bundled,omitempty" json:"bundled,omitempty"`
	ComposerName          string   `yaml:"composer-name,omitempty" json:"composerName,omitempty"`
	ComposerVersion       string   `yaml:"composer-version,omitempty" json:"composerVersion,omitempty"`
	RequiredExtensions    []string `yaml:"required extensions,omitempty" json:"requiredExtensions,omitempty"`
}

// Mode returns the installation mode. composer-name takes precedence over
// bundled, which takes precedence over a source-control clone.
func (d Declaration) Mode() Mode {
	switch {
	case d.ComposerName != "":
		return ModeComposer
	case d.Bundled:
		return ModeBundled
	default:
		return ModeClone
	}
}

// ComposerPackage returns the "name[:version]" string passed to composer require
func (d Declaration) ComposerPackage() string {
	if d.ComposerVersion == "" {
		return d.ComposerName
	}
	return d.ComposerName + ":" + d.ComposerVersion
}

// Module is a named declaration of a given type
type Module struct {
	Type        ModuleType  `json:"type" yaml:"type"`
	Name        string      `json:"name" yaml:"name"`
	Declaration Declaration `json:"declaration" yaml:"declaration"`
}

// String returns "<type>/<name>"
func (m Module) String() string {
	return string(m.Type) + "/" + m.Name
}
