// Package relocate moves persistent module directories into the origin
// staging area and links them back from the durable volume.
//
// At build time $MW_HOME/canasta-<type>/<name>/<sub> is moved to
// $MW_ORIGIN_FILES/<type>/<name>/<sub>. The entrypoint later copies the
// origin tree onto $MW_VOLUME, which is where the link points.
package relocate

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/canastawiki/canasta-modules/pkg/errors"
	"github.com/canastawiki/canasta-modules/pkg/logging"
	"github.com/canastawiki/canasta-modules/pkg/paths"
	"github.com/canastawiki/canasta-modules/pkg/types"
)

// Relocation is one moved directory
type Relocation struct {
	Subpath string
	// Origin is where the content now lives in the image
	Origin string
	// Link is the path inside the module directory
	Link string
	// Target is what Link points to
	Target string
}

// Relocator moves persistent directories
type Relocator struct {
	fs     types.FS
	layout paths.Layout
	logger zerolog.Logger
}

// New creates a Relocator
func New(fs types.FS, layout paths.Layout) *Relocator {
	return &Relocator{
		fs:     fs,
		layout: layout,
		logger: logging.GetLogger("relocate"),
	}
}

// Relocate moves every persistent directory of m. Each link is created only
// after its move succeeded; any failure is returned as ErrRelocate.
func (r *Relocator) Relocate(m types.Module) ([]Relocation, error) {
	subs := m.Declaration.PersistentDirectories
	if len(subs) == 0 {
		return nil, nil
	}

	for _, sub := range subs {
		if err := paths.ValidateSubpath(sub); err != nil {
			return nil, errors.Wrapf(err, errors.ErrInvalidInput, "persistent directory of %s", m)
		}
	}

	originDir := r.layout.OriginModuleDir(m.Type, m.Name)
	if err := r.fs.MkdirAll(originDir, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", originDir)
	}

	moduleDir := r.layout.ModuleDir(m.Type, m.Name)
	volumeDir := r.layout.VolumeModuleDir(m.Type, m.Name)

	var done []Relocation
	for _, sub := range subs {
		rel := Relocation{
			Subpath: sub,
			Origin:  filepath.Join(originDir, sub),
			Link:    filepath.Join(moduleDir, sub),
			Target:  filepath.Join(volumeDir, sub),
		}

		if err := r.move(rel.Link, rel.Origin); err != nil {
			return done, errors.Wrapf(err, errors.ErrRelocate, "cannot move %s of %s", sub, m).
				WithDetail("from", rel.Link).
				WithDetail("to", rel.Origin)
		}

		if err := r.fs.Symlink(rel.Target, rel.Link); err != nil {
			return done, errors.Wrapf(err, errors.ErrRelocate, "cannot link %s of %s", sub, m).
				WithDetail("link", rel.Link).
				WithDetail("target", rel.Target)
		}

		r.logger.Info().
			Str("module", m.String()).
			Str("dir", sub).
			Str("target", rel.Target).
			Msg("Persistent directory relocated")
		done = append(done, rel)
	}
	return done, nil
}

func (r *Relocator) move(src, dst string) error {
	if _, err := r.fs.Lstat(src); err != nil {
		return err
	}
	if _, err := r.fs.Lstat(dst); err == nil {
		return os.ErrExist
	}
	if err := r.fs.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	err := r.fs.Rename(src, dst)
	if err == nil || !stderrors.Is(err, syscall.EXDEV) {
		return err
	}

	// overlay filesystems refuse to rename directories across layers
	r.logger.Debug().Str("from", src).Str("to", dst).Msg("Rename crosses devices, copying")
	if err := r.copyTree(src, dst); err != nil {
		_ = r.fs.RemoveAll(dst)
		return err
	}
	return r.fs.RemoveAll(src)
}

func (r *Relocator) copyTree(src, dst string) error {
	return r.fs.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case info.Mode()&os.ModeSymlink != 0:
			link, err := r.fs.Readlink(path)
			if err != nil {
				return err
			}
			return r.fs.Symlink(link, target)
		case info.IsDir():
			return r.fs.MkdirAll(target, info.Mode().Perm())
		default:
			data, err := r.fs.ReadFile(path)
			if err != nil {
				return err
			}
			return r.fs.WriteFile(target, data, info.Mode().Perm())
		}
	})
}
