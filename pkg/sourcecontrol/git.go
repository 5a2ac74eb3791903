package sourcecontrol

import (
	"context"
	stderrors "errors"
	"os"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/rs/zerolog"

	"github.com/canastawiki/canasta-modules/pkg/errors"
	"github.com/canastawiki/canasta-modules/pkg/execution"
	"github.com/canastawiki/canasta-modules/pkg/logging"
)

// GitProvider implements Provider with go-git
type GitProvider struct {
	runner  execution.Runner
	gitPath string
	auth    transport.AuthMethod
	logger  zerolog.Logger
}

// NewGitProvider creates a provider. gitPath is the git binary used for
// patch application.
func NewGitProvider(runner execution.Runner, gitPath string) *GitProvider {
	if gitPath == "" {
		gitPath = "git"
	}
	return &GitProvider{
		runner:  runner,
		gitPath: gitPath,
		auth:    tokenAuth(),
		logger:  logging.GetLogger("sourcecontrol"),
	}
}

// Clone implements Provider
func (p *GitProvider) Clone(ctx context.Context, opts CloneOptions) error {
	p.logger.Info().
		Str("url", opts.URL).
		Str("branch", opts.Branch).
		Bool("singleBranch", opts.SingleBranch).
		Int("depth", opts.Depth).
		Msg("Cloning repository")

	clone := &git.CloneOptions{
		URL:          opts.URL,
		Auth:         p.auth,
		SingleBranch: opts.SingleBranch,
		Depth:        opts.Depth,
	}
	if opts.Branch != "" {
		clone.ReferenceName = plumbing.NewBranchReferenceName(opts.Branch)
	}

	if _, err := git.PlainCloneContext(ctx, opts.Dir, false, clone); err != nil {
		return errors.Wrapf(err, errors.ErrSourceControl, "cannot clone %s", opts.URL).
			WithDetail("dir", opts.Dir).
			WithDetail("branch", opts.Branch)
	}
	return nil
}

// Checkout implements Provider. A local branch is checked out by name so
// HEAD stays attached; anything else is resolved to a commit.
func (p *GitProvider) Checkout(_ context.Context, dir, revision string) error {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return errors.Wrapf(err, errors.ErrSourceControl, "cannot open repository %s", dir)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return errors.Wrapf(err, errors.ErrSourceControl, "cannot open work tree %s", dir)
	}

	branch := plumbing.NewBranchReferenceName(revision)
	if _, err := repo.Reference(branch, true); err == nil {
		if err := wt.Checkout(&git.CheckoutOptions{Branch: branch}); err != nil {
			return errors.Wrapf(err, errors.ErrSourceControl, "cannot check out branch %s", revision)
		}
		return nil
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		hash, err = repo.ResolveRevision(plumbing.Revision("origin/" + revision))
	}
	if err != nil {
		return errors.Wrapf(err, errors.ErrSourceControl, "unknown revision %s", revision).
			WithDetail("dir", dir)
	}

	p.logger.Debug().Str("dir", dir).Str("revision", revision).Str("hash", hash.String()).Msg("Checking out")
	if err := wt.Checkout(&git.CheckoutOptions{Hash: *hash}); err != nil {
		return errors.Wrapf(err, errors.ErrSourceControl, "cannot check out %s", revision)
	}
	return nil
}

// ApplyPatch implements Provider
func (p *GitProvider) ApplyPatch(ctx context.Context, dir, patchFile string) error {
	_, err := p.runner.Run(ctx, execution.Command{
		Name: p.gitPath,
		Args: []string{"apply", patchFile},
		Dir:  dir,
	})
	if err != nil {
		return errors.Wrapf(err, errors.ErrSourceControl, "cannot apply patch %s", patchFile)
	}
	return nil
}

// UpdateSubmodules implements Provider
func (p *GitProvider) UpdateSubmodules(ctx context.Context, dir string) error {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return errors.Wrapf(err, errors.ErrSourceControl, "cannot open repository %s", dir)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return errors.Wrapf(err, errors.ErrSourceControl, "cannot open work tree %s", dir)
	}
	subs, err := wt.Submodules()
	if err != nil {
		return errors.Wrapf(err, errors.ErrSourceControl, "cannot read submodules of %s", dir)
	}
	if len(subs) == 0 {
		p.logger.Debug().Str("dir", dir).Msg("No submodules")
		return nil
	}

	if err := subs.UpdateContext(ctx, &git.SubmoduleUpdateOptions{Init: true, Auth: p.auth}); err != nil {
		return errors.Wrapf(err, errors.ErrSourceControl, "cannot update submodules of %s", dir)
	}
	return nil
}

// Describe implements Provider
func (p *GitProvider) Describe(dir string) (Identity, bool, error) {
	repo, err := git.PlainOpen(dir)
	if stderrors.Is(err, git.ErrRepositoryNotExists) {
		return Identity{}, false, nil
	}
	if err != nil {
		return Identity{}, false, errors.Wrapf(err, errors.ErrSourceControl, "cannot open repository %s", dir)
	}

	head, err := repo.Head()
	if err != nil {
		return Identity{}, false, errors.Wrapf(err, errors.ErrSourceControl, "cannot read HEAD of %s", dir)
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return Identity{}, false, errors.Wrapf(err, errors.ErrSourceControl, "cannot read HEAD commit of %s", dir)
	}

	id := Identity{
		Hash:       head.Hash().String(),
		CommitTime: commit.Committer.When,
		Branch:     "HEAD",
	}
	if head.Name().IsBranch() {
		id.Branch = head.Name().Short()
	}

	remote, err := repo.Remote(git.DefaultRemoteName)
	switch {
	case err == nil && len(remote.Config().URLs) > 0:
		id.RemoteURL = remote.Config().URLs[0]
	case err != nil && !stderrors.Is(err, git.ErrRemoteNotFound):
		return Identity{}, false, errors.Wrapf(err, errors.ErrSourceControl, "cannot read remote of %s", dir)
	}

	return id, true, nil
}

// tokenAuth returns HTTP basic auth from the environment, for private
// repositories and GitHub rate limits
func tokenAuth() transport.AuthMethod {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return &http.BasicAuth{Username: "x-access-token", Password: token}
	}
	if token := os.Getenv("GIT_TOKEN"); token != "" {
		return &http.BasicAuth{Username: "git", Password: token}
	}
	return nil
}
