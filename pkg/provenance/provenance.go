// Package provenance writes the gitinfo.json sidecar that lets MediaWiki's
// Special:Version show commit details for modules whose .git directory has
// been removed from the image.
package provenance

import (
	"encoding/json"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/canastawiki/canasta-modules/pkg/errors"
	"github.com/canastawiki/canasta-modules/pkg/logging"
	"github.com/canastawiki/canasta-modules/pkg/sourcecontrol"
	"github.com/canastawiki/canasta-modules/pkg/types"
)

// FileName is the sidecar written inside the module directory
const FileName = "gitinfo.json"

// Record is the sidecar content in the layout MediaWiki's GitInfo reads
type Record struct {
	Head           string `json:"head"`
	HeadSHA1       string `json:"headSHA1"`
	HeadCommitDate string `json:"headCommitDate"`
	Branch         string `json:"branch"`
	RemoteURL      string `json:"remoteURL"`
}

// NewRecord builds a Record from a repository identity
func NewRecord(id sourcecontrol.Identity) Record {
	return Record{
		Head:           id.Hash,
		HeadSHA1:       id.Hash,
		HeadCommitDate: strconv.FormatInt(id.CommitTime.Unix(), 10),
		Branch:         id.Branch,
		RemoteURL:      id.RemoteURL,
	}
}

// Recorder captures provenance for module directories
type Recorder struct {
	fs       types.FS
	provider sourcecontrol.Provider
	logger   zerolog.Logger
}

// NewRecorder creates a Recorder
func NewRecorder(fs types.FS, provider sourcecontrol.Provider) *Recorder {
	return &Recorder{
		fs:       fs,
		provider: provider,
		logger:   logging.GetLogger("provenance"),
	}
}

// Capture writes the sidecar for dir. It returns false without error when
// dir holds no repository.
func (r *Recorder) Capture(dir string) (Record, bool, error) {
	id, ok, err := r.provider.Describe(dir)
	if err != nil {
		return Record{}, false, err
	}
	if !ok {
		r.logger.Debug().Str("dir", dir).Msg("No repository, skipping provenance")
		return Record{}, false, nil
	}

	rec := NewRecord(id)
	data, err := json.Marshal(rec)
	if err != nil {
		return Record{}, false, errors.Wrap(err, errors.ErrInternal, "cannot encode provenance")
	}

	path := filepath.Join(dir, FileName)
	if err := r.fs.WriteFile(path, data, 0644); err != nil {
		return Record{}, false, errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", path)
	}

	r.logger.Debug().
		Str("dir", dir).
		Str("head", rec.Head).
		Str("branch", rec.Branch).
		Msg("Provenance recorded")
	return rec, true, nil
}
