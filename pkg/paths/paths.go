package paths

import (
	"path/filepath"
	"strings"

	"github.com/canastawiki/canasta-modules/pkg/config"
	"github.com/canastawiki/canasta-modules/pkg/errors"
	"github.com/canastawiki/canasta-modules/pkg/types"
)

// Fixed names inside the MediaWiki tree and the origin area.
// IMPORTANT: the runtime entrypoint reads these locations; they are not configurable.
const (
	// CanonicalPrefix prefixes the internal per-type storage directory
	CanonicalPrefix = "canasta-"

	// ComposerLocalFile is the merged composer configuration
	ComposerLocalFile = "composer.local.json"

	// OriginConfigDir is the config staging directory inside MW_ORIGIN_FILES
	OriginConfigDir = "config"

	// PersistentConfigDir holds state that survives container restarts
	PersistentConfigDir = "persistent"

	// FingerprintFile stores the composer dependency fingerprint
	FingerprintFile = ".composer-deps-hash"
)

// Layout resolves every path used during installation
type Layout struct {
	home   string
	volume string
	origin string
}

// New creates a Layout from the MediaWiki section of the configuration
func New(mw config.MediaWiki) Layout {
	return Layout{
		home:   filepath.Clean(mw.Home),
		volume: filepath.Clean(mw.Volume),
		origin: filepath.Clean(mw.OriginFiles),
	}
}

// Home returns MW_HOME
func (l Layout) Home() string { return l.home }

// Volume returns MW_VOLUME
func (l Layout) Volume() string { return l.volume }

// Origin returns MW_ORIGIN_FILES
func (l Layout) Origin() string { return l.origin }

// CanonicalTypeDir returns $MW_HOME/canasta-<type>
func (l Layout) CanonicalTypeDir(t types.ModuleType) string {
	return filepath.Join(l.home, CanonicalPrefix+string(t))
}

// ModuleDir returns the canonical location $MW_HOME/canasta-<type>/<name>
func (l Layout) ModuleDir(t types.ModuleType, name string) string {
	return filepath.Join(l.CanonicalTypeDir(t), name)
}

// PublicTypeDir returns $MW_HOME/<type>, where build-time links are created
func (l Layout) PublicTypeDir(t types.ModuleType) string {
	return filepath.Join(l.home, string(t))
}

// OriginModuleDir returns $MW_ORIGIN_FILES/<type>/<name>
func (l Layout) OriginModuleDir(t types.ModuleType, name string) string {
	return filepath.Join(l.origin, string(t), name)
}

// VolumeModuleDir returns $MW_VOLUME/<type>/<name>
func (l Layout) VolumeModuleDir(t types.ModuleType, name string) string {
	return filepath.Join(l.volume, string(t), name)
}

// ComposerLocal returns $MW_HOME/composer.local.json
func (l Layout) ComposerLocal() string {
	return filepath.Join(l.home, ComposerLocalFile)
}

// OriginConfigDir returns $MW_ORIGIN_FILES/config
func (l Layout) OriginConfigDir() string {
	return filepath.Join(l.origin, OriginConfigDir)
}

// OriginComposerLocal returns $MW_ORIGIN_FILES/config/composer.local.json
func (l Layout) OriginComposerLocal() string {
	return filepath.Join(l.OriginConfigDir(), ComposerLocalFile)
}

// FingerprintPath returns $MW_ORIGIN_FILES/config/persistent/.composer-deps-hash
func (l Layout) FingerprintPath() string {
	return filepath.Join(l.OriginConfigDir(), PersistentConfigDir, FingerprintFile)
}

// ComposerInclude returns the include entry for a module's composer.json,
// relative to MW_HOME and using the public <type>/<name> path
func ComposerInclude(t types.ModuleType, name string) string {
	return string(t) + "/" + name + "/composer.json"
}

// ValidateName rejects module names that would escape their type directory
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return errors.Newf(errors.ErrInvalidInput, "invalid module name %q", name)
	}
	return nil
}

// ValidateSubpath rejects persistent directories that are absolute or leave the module directory
func ValidateSubpath(sub string) error {
	if sub == "" || filepath.IsAbs(sub) {
		return errors.Newf(errors.ErrInvalidInput, "invalid persistent directory %q", sub)
	}
	clean := filepath.Clean(sub)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return errors.Newf(errors.ErrInvalidInput, "persistent directory %q escapes the module directory", sub)
	}
	return nil
}
