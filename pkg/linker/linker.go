// Package linker exposes installed modules under their canonical
// $MW_HOME/<type>/<name> path so composer.local.json can reference
// extensions/Name/composer.json during the build, as the runtime
// entrypoint does once user modules are in place.
package linker

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/canastawiki/canasta-modules/pkg/errors"
	"github.com/canastawiki/canasta-modules/pkg/logging"
	"github.com/canastawiki/canasta-modules/pkg/paths"
	"github.com/canastawiki/canasta-modules/pkg/types"
)

// Link is a created alias
type Link struct {
	Path   string
	Target string
}

// Builder creates build-time links
type Builder struct {
	fs     types.FS
	layout paths.Layout
	logger zerolog.Logger
}

// New creates a Builder
func New(fs types.FS, layout paths.Layout) *Builder {
	return &Builder{
		fs:     fs,
		layout: layout,
		logger: logging.GetLogger("linker"),
	}
}

// Build links every directory of $MW_HOME/canasta-<type> into $MW_HOME/<type>.
// Existing entries are never replaced.
func (b *Builder) Build() ([]Link, error) {
	var links []Link
	for _, t := range types.AllModuleTypes {
		created, err := b.buildType(t)
		if err != nil {
			return links, err
		}
		links = append(links, created...)
	}
	b.logger.Info().Int("links", len(links)).Msg("Build-time symlinks created")
	return links, nil
}

func (b *Builder) buildType(t types.ModuleType) ([]Link, error) {
	source := b.layout.CanonicalTypeDir(t)
	entries, err := b.fs.ReadDir(source)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", source)
	}

	public := b.layout.PublicTypeDir(t)
	if err := b.fs.MkdirAll(public, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", public)
	}

	var links []Link
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		link := Link{
			Path:   filepath.Join(public, name),
			Target: filepath.Join("..", paths.CanonicalPrefix+string(t), name),
		}

		if _, err := b.fs.Lstat(link.Path); err == nil {
			b.logger.Debug().Str("path", link.Path).Msg("Entry exists, not linking")
			continue
		}

		if err := b.fs.Symlink(link.Target, link.Path); err != nil {
			return links, errors.Wrapf(err, errors.ErrSymlinkCreate, "cannot link %s", link.Path)
		}
		links = append(links, link)
	}
	return links, nil
}
