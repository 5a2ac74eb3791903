package manifest

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/canastawiki/canasta-modules/pkg/errors"
	"github.com/canastawiki/canasta-modules/pkg/logging"
	"github.com/canastawiki/canasta-modules/pkg/types"
)

// maxManifestSize bounds remote documents
const maxManifestSize = 4 << 20

// Loader reads manifest documents from the filesystem or over HTTP
type Loader struct {
	fs     types.FS
	client *http.Client
	logger zerolog.Logger
}

// NewLoader creates a Loader. A nil client gets one with the given timeout.
func NewLoader(fs types.FS, client *http.Client, timeout time.Duration) *Loader {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Loader{
		fs:     fs,
		client: client,
		logger: logging.GetLogger("manifest.loader"),
	}
}

// Load reads and parses the manifest at locator
func (l *Loader) Load(ctx context.Context, locator string) (*Manifest, error) {
	data, err := l.read(ctx, locator)
	if err != nil {
		return nil, err
	}
	l.logger.Debug().Str("locator", locator).Int("bytes", len(data)).Msg("Manifest read")
	return Parse(locator, data)
}

func (l *Loader) read(ctx context.Context, locator string) ([]byte, error) {
	if isURL(locator) {
		return l.fetch(ctx, locator)
	}

	data, err := l.fs.ReadFile(locator)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestLoad, "cannot read manifest %s", locator).
			WithDetail("locator", locator)
	}
	return data, nil
}

func (l *Loader) fetch(ctx context.Context, locator string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestLoad, "invalid manifest URL %s", locator)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestLoad, "cannot fetch manifest %s", locator).
			WithDetail("locator", locator)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf(errors.ErrManifestLoad, "cannot fetch manifest %s: %s", locator, resp.Status).
			WithDetail("locator", locator).
			WithDetail("status", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestSize))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestLoad, "cannot read manifest %s", locator)
	}
	return data, nil
}

// ResolveParent turns an inherits value into a locator. URLs are absolute;
// a relative URL is resolved against a URL parent; a relative path is looked
// up next to the inheriting manifest first and then as given.
func (l *Loader) ResolveParent(child, inherits string) string {
	if isURL(inherits) {
		return inherits
	}

	if isURL(child) {
		base, err := url.Parse(child)
		if err != nil {
			return inherits
		}
		ref, err := url.Parse(inherits)
		if err != nil {
			return inherits
		}
		return base.ResolveReference(ref).String()
	}

	if filepath.IsAbs(inherits) {
		return inherits
	}

	sibling := filepath.Join(filepath.Dir(child), inherits)
	if _, err := l.fs.Stat(sibling); err == nil {
		return sibling
	} else if !os.IsNotExist(err) {
		l.logger.Debug().Err(err).Str("path", sibling).Msg("Cannot stat sibling manifest")
	}
	return inherits
}

func isURL(locator string) bool {
	lower := strings.ToLower(locator)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// canonical normalizes a locator for cycle detection
func canonical(locator string) string {
	if isURL(locator) {
		return locator
	}
	abs, err := filepath.Abs(locator)
	if err != nil {
		return filepath.Clean(locator)
	}
	return abs
}
