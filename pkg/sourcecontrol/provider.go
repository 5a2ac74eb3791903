package sourcecontrol

import (
	"context"
	"time"
)

// MetadataDir is the version-control metadata directory inside a work tree
const MetadataDir = ".git"

// CloneOptions describes a clone
type CloneOptions struct {
	URL string
	Dir string
	// Branch is the branch to check out after cloning. Empty means the
	// remote's default branch.
	Branch string
	// SingleBranch fetches only Branch
	SingleBranch bool
	// Depth limits history; zero means full history
	Depth int
}

// Identity describes the checked out commit of a work tree
type Identity struct {
	Hash       string
	CommitTime time.Time
	// Branch is the short branch name, or "HEAD" when detached
	Branch    string
	RemoteURL string
}

// Provider performs source-control operations on module work trees
type Provider interface {
	Clone(ctx context.Context, opts CloneOptions) error
	// Checkout switches dir to a branch, tag or commit
	Checkout(ctx context.Context, dir, revision string) error
	// ApplyPatch applies a patch file to the work tree in dir
	ApplyPatch(ctx context.Context, dir, patchFile string) error
	// UpdateSubmodules initializes and updates the direct submodules of dir
	UpdateSubmodules(ctx context.Context, dir string) error
	// Describe reads the identity of HEAD. It returns false when dir is not
	// a repository.
	Describe(dir string) (Identity, bool, error)
}
