// Package fingerprint computes the composer dependency fingerprint.
//
// The runtime entrypoint recomputes the same value over the user's config
// and skips its own composer update when nothing changed, so the algorithm
// must match it exactly: MD5 of every file in sorted order, concatenated as
// hex, then MD5 of that string.
package fingerprint

import (
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/canastawiki/canasta-modules/pkg/errors"
	"github.com/canastawiki/canasta-modules/pkg/internal/hashutil"
	"github.com/canastawiki/canasta-modules/pkg/logging"
	"github.com/canastawiki/canasta-modules/pkg/paths"
	"github.com/canastawiki/canasta-modules/pkg/types"
)

// Result describes a written fingerprint
type Result struct {
	Digest string
	Files  []string
	Path   string
}

// Compute returns the combined digest of files, which must already be sorted
func Compute(fs hashutil.Reader, files []string) (string, error) {
	var combined []byte
	for _, f := range files {
		sum, err := hashutil.FileMD5(fs, f)
		if err != nil {
			return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot hash %s", f)
		}
		combined = append(combined, sum...)
	}
	return hashutil.MD5Hex(combined), nil
}

// Writer produces the fingerprint file
type Writer struct {
	fs     types.FS
	layout paths.Layout
	logger zerolog.Logger
}

// NewWriter creates a Writer
func NewWriter(fs types.FS, layout paths.Layout) *Writer {
	return &Writer{
		fs:     fs,
		layout: layout,
		logger: logging.GetLogger("fingerprint"),
	}
}

// Collect returns composer.local.json plus every file matched by the include
// patterns under $MW_HOME, sorted lexicographically
func (w *Writer) Collect(includes []string) ([]string, error) {
	files := []string{w.layout.ComposerLocal()}
	for _, pattern := range includes {
		matches, err := w.fs.Glob(filepath.Join(w.layout.Home(), pattern))
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid include pattern %q", pattern)
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// Write computes the fingerprint for includes and stores it
func (w *Writer) Write(includes []string) (Result, error) {
	files, err := w.Collect(includes)
	if err != nil {
		return Result{}, err
	}
	digest, err := Compute(w.fs, files)
	if err != nil {
		return Result{}, err
	}

	path := w.layout.FingerprintPath()
	if err := w.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return Result{}, errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", filepath.Dir(path))
	}
	if err := w.fs.WriteFile(path, []byte(digest+"\n"), 0644); err != nil {
		return Result{}, errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", path)
	}

	w.logger.Info().
		Str("digest", digest).
		Int("files", len(files)).
		Str("path", path).
		Msg("Dependency fingerprint written")
	return Result{Digest: digest, Files: files, Path: path}, nil
}
