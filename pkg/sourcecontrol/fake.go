package sourcecontrol

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/canastawiki/canasta-modules/pkg/types"
)

// Op names a Provider operation
type Op string

const (
	OpClone     Op = "clone"
	OpCheckout  Op = "checkout"
	OpPatch     Op = "patch"
	OpSubmodule Op = "submodule"
)

// Call is one recorded Provider invocation
type Call struct {
	Op  Op
	Dir string
	// Arg is the URL, revision or patch file
	Arg   string
	Clone CloneOptions
}

// FakeProvider implements Provider on a types.FS for testing. Clone creates
// the target directory with a metadata directory and the seeded Files.
type FakeProvider struct {
	fs types.FS

	// Files are written relative to every cloned directory
	Files map[string]string
	// Identity is returned by Describe for directories with metadata
	Identity Identity
	// Fail makes an operation return the given error
	Fail map[Op]error

	mu    sync.Mutex
	calls []Call
}

// NewFakeProvider creates a FakeProvider writing to fs
func NewFakeProvider(fs types.FS) *FakeProvider {
	return &FakeProvider{
		fs:    fs,
		Fail:  make(map[Op]error),
		Files: make(map[string]string),
		Identity: Identity{
			Hash:       "0123456789abcdef0123456789abcdef01234567",
			CommitTime: time.Unix(1700000000, 0),
			Branch:     "HEAD",
			RemoteURL:  "https://example.org/repo.git",
		},
	}
}

func (f *FakeProvider) record(c Call) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	return f.Fail[c.Op]
}

// Calls returns the recorded invocations in order
func (f *FakeProvider) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsFor returns the recorded invocations of one operation
func (f *FakeProvider) CallsFor(op Op) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Clone implements Provider
func (f *FakeProvider) Clone(_ context.Context, opts CloneOptions) error {
	if err := f.record(Call{Op: OpClone, Dir: opts.Dir, Arg: opts.URL, Clone: opts}); err != nil {
		return err
	}
	if err := f.fs.MkdirAll(filepath.Join(opts.Dir, MetadataDir), 0755); err != nil {
		return err
	}
	for rel, content := range f.Files {
		path := filepath.Join(opts.Dir, rel)
		if err := f.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := f.fs.WriteFile(path, []byte(content), 0644); err != nil {
			return err
		}
	}
	return nil
}

// Checkout implements Provider
func (f *FakeProvider) Checkout(_ context.Context, dir, revision string) error {
	return f.record(Call{Op: OpCheckout, Dir: dir, Arg: revision})
}

// ApplyPatch implements Provider
func (f *FakeProvider) ApplyPatch(_ context.Context, dir, patchFile string) error {
	return f.record(Call{Op: OpPatch, Dir: dir, Arg: patchFile})
}

// UpdateSubmodules implements Provider
func (f *FakeProvider) UpdateSubmodules(_ context.Context, dir string) error {
	return f.record(Call{Op: OpSubmodule, Dir: dir})
}

// Describe implements Provider
func (f *FakeProvider) Describe(dir string) (Identity, bool, error) {
	if _, err := f.fs.Stat(filepath.Join(dir, MetadataDir)); err != nil {
		return Identity{}, false, nil
	}
	return f.Identity, true, nil
}
