package installer

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/canastawiki/canasta-modules/pkg/composer"
	"github.com/canastawiki/canasta-modules/pkg/config"
	"github.com/canastawiki/canasta-modules/pkg/errors"
	"github.com/canastawiki/canasta-modules/pkg/fingerprint"
	"github.com/canastawiki/canasta-modules/pkg/linker"
	"github.com/canastawiki/canasta-modules/pkg/logging"
	"github.com/canastawiki/canasta-modules/pkg/manifest"
	"github.com/canastawiki/canasta-modules/pkg/paths"
	"github.com/canastawiki/canasta-modules/pkg/provenance"
	"github.com/canastawiki/canasta-modules/pkg/relocate"
	"github.com/canastawiki/canasta-modules/pkg/requirements"
	"github.com/canastawiki/canasta-modules/pkg/sourcecontrol"
	"github.com/canastawiki/canasta-modules/pkg/types"
)

// Options configures an Installer
type Options struct {
	Config        *config.Config
	FS            types.FS
	SourceControl sourcecontrol.Provider
	Composer      composer.Manager
	Policy        Policy
	// EnforceRequirements makes missing required extensions fatal and
	// installs extensions in requirement order
	EnforceRequirements bool
}

// Installer runs the installation of a resolved module set
type Installer struct {
	cfg         *config.Config
	fs          types.FS
	layout      paths.Layout
	scm         sourcecontrol.Provider
	composer    composer.Manager
	policy      Policy
	enforce     bool
	provenance  *provenance.Recorder
	relocator   *relocate.Relocator
	planner     *composer.Planner
	linker      *linker.Builder
	fingerprint *fingerprint.Writer
	logger      zerolog.Logger
}

// New creates an Installer
func New(opts Options) *Installer {
	layout := paths.New(opts.Config.MediaWiki)
	return &Installer{
		cfg:         opts.Config,
		fs:          opts.FS,
		layout:      layout,
		scm:         opts.SourceControl,
		composer:    opts.Composer,
		policy:      opts.Policy,
		enforce:     opts.EnforceRequirements,
		provenance:  provenance.NewRecorder(opts.FS, opts.SourceControl),
		relocator:   relocate.New(opts.FS, layout),
		planner:     composer.NewPlanner(opts.FS, layout, opts.Composer),
		linker:      linker.New(opts.FS, layout),
		fingerprint: fingerprint.NewWriter(opts.FS, layout),
		logger:      logging.GetLogger("installer"),
	}
}

// Run installs every active module of set. It returns the report so far
// together with the error when the run aborts.
func (i *Installer) Run(ctx context.Context, set *manifest.ResolvedSet) (*Report, error) {
	done := logging.LogOperationStart(i.logger, "install")
	defer done()

	report := &Report{}
	for _, t := range types.AllModuleTypes {
		for _, name := range set.Removed(t) {
			report.Removed = append(report.Removed, string(t)+"/"+name)
		}
	}

	if err := i.checkRequirements(set, report); err != nil {
		return report, err
	}

	for _, t := range types.AllModuleTypes {
		dir := i.layout.CanonicalTypeDir(t)
		if err := i.fs.MkdirAll(dir, 0755); err != nil {
			return report, errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", dir)
		}
	}

	for _, t := range types.AllModuleTypes {
		modules := set.Active(t)
		if i.enforce && t == types.Extensions {
			ordered, err := requirements.Order(modules)
			if err != nil {
				return report, err
			}
			modules = ordered
		}

		for _, m := range modules {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			rep, err := i.installModule(ctx, m)
			report.Modules = append(report.Modules, rep)
			if err != nil {
				return report, err
			}
		}
	}

	links, err := i.linker.Build()
	report.Links = len(links)
	if err != nil {
		return report, err
	}

	report.Includes = i.planner.Includes()
	if err := i.planner.Write(); err != nil {
		return report, err
	}

	outcome := i.planner.Update(ctx)
	report.ComposerExitCode = outcome.ExitCode
	if !outcome.OK() {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("composer update exited with code %d", outcome.ExitCode))
	}

	fp, err := i.fingerprint.Write(report.Includes)
	if err != nil {
		return report, err
	}
	report.Fingerprint = fp.Digest

	i.logger.Info().
		Int("modules", len(report.Modules)).
		Int("warnings", report.WarningCount()).
		Msg("Installation complete")
	return report, nil
}

func (i *Installer) checkRequirements(set *manifest.ResolvedSet, report *Report) error {
	missing := requirements.FindMissing(set)
	if len(missing) == 0 {
		return nil
	}
	if i.enforce {
		return requirements.MissingError(missing)
	}
	for _, m := range missing {
		i.logger.Warn().
			Str("module", m.Module.String()).
			Str("requires", m.Requirement).
			Msg("Required extension is not part of the manifest")
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("%s requires %s, which is not installed", m.Module, m.Requirement))
	}
	return nil
}

func (i *Installer) installModule(ctx context.Context, m types.Module) (ModuleReport, error) {
	decl := m.Declaration
	rep := ModuleReport{Type: m.Type, Name: m.Name, Mode: decl.Mode()}
	logger := i.logger.With().Str("module", m.String()).Str("mode", string(rep.Mode)).Logger()
	logger.Info().Msg("Installing module")

	if rep.Mode == types.ModeComposer {
		rep.Package = decl.ComposerPackage()
		if err := i.composer.Require(ctx, rep.Package); err != nil {
			return rep, i.bestEffort(logger, CategoryRequire, &rep, err, "composer require failed")
		}
		return rep, nil
	}

	dir := i.layout.ModuleDir(m.Type, m.Name)

	if rep.Mode == types.ModeClone {
		if err := i.fetch(ctx, logger, m, dir, &rep); err != nil {
			return rep, err
		}
		for _, patch := range decl.Patches {
			file := filepath.Join(i.cfg.Patches.Dir, patch)
			if err := i.scm.ApplyPatch(ctx, dir, file); err != nil {
				if err := i.bestEffort(logger, CategoryPatch, &rep, err, "cannot apply patch "+patch); err != nil {
					return rep, err
				}
				continue
			}
			rep.Patches = append(rep.Patches, patch)
		}
	}

	for _, step := range decl.AdditionalSteps {
		if !step.Known() {
			logger.Warn().Str("step", string(step)).Msg("Unknown additional step, ignoring")
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("unknown additional step %q", step))
			continue
		}
		switch step {
		case types.StepComposerUpdate:
			i.planner.Register(m.Type, m.Name)
		case types.StepSubmoduleUpdate:
			if err := i.scm.UpdateSubmodules(ctx, dir); err != nil {
				if err := i.bestEffort(logger, CategorySubmodule, &rep, err, "submodule update failed"); err != nil {
					return rep, err
				}
				continue
			}
		}
		rep.Steps = append(rep.Steps, step)
	}

	_, captured, err := i.provenance.Capture(dir)
	if err != nil {
		if err := i.bestEffort(logger, CategoryProvenance, &rep, err, "cannot record provenance"); err != nil {
			return rep, err
		}
	}
	rep.Provenance = captured

	metadata := filepath.Join(dir, sourcecontrol.MetadataDir)
	if err := i.fs.RemoveAll(metadata); err != nil {
		return rep, errors.Wrapf(err, errors.ErrFileWrite, "cannot remove %s", metadata)
	}

	moved, err := i.relocator.Relocate(m)
	for _, r := range moved {
		rep.Relocated = append(rep.Relocated, r.Subpath)
	}
	if err != nil {
		return rep, err
	}

	return rep, nil
}

// fetch clones the module and checks out its pinned revision
func (i *Installer) fetch(ctx context.Context, logger zerolog.Logger, m types.Module, dir string, rep *ModuleReport) error {
	decl := m.Declaration
	opts := sourcecontrol.CloneOptions{
		URL:    decl.Repository,
		Dir:    dir,
		Branch: decl.Branch,
	}
	if opts.URL == "" {
		opts.URL = i.cfg.RepositoryURL(m.Type, m.Name)
		if opts.Branch == "" {
			opts.Branch = i.cfg.MediaWiki.Version
			opts.SingleBranch = true
			if decl.Commit == "" {
				opts.Depth = 1
			}
		}
	}
	rep.Repository = opts.URL

	if err := i.scm.Clone(ctx, opts); err != nil {
		return i.bestEffort(logger, CategoryFetch, rep, err, "clone failed")
	}

	revision := decl.Commit
	if revision == "" {
		revision = opts.Branch
	}
	rep.Revision = revision
	if revision == "" {
		return nil
	}
	if err := i.scm.Checkout(ctx, dir, revision); err != nil {
		return i.bestEffort(logger, CategoryCheckout, rep, err, "checkout of "+revision+" failed")
	}
	return nil
}

// bestEffort applies the policy to a best-effort failure. It returns nil when
// the run continues.
func (i *Installer) bestEffort(logger zerolog.Logger, c Category, rep *ModuleReport, err error, msg string) error {
	if i.policy.Aborts(c) {
		return errors.Wrapf(err, errors.ErrStepFailed, "%s: %s", rep.Module(), msg).
			WithDetail("module", rep.Module()).
			WithDetail("category", string(c))
	}
	logger.Warn().Err(err).Str("category", string(c)).Msg(msg)
	rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s: %v", msg, err))
	return nil
}
