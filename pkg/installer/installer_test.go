// pkg/installer/installer_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Real filesystem under t.TempDir, fake source control, recorded composer
// PURPOSE: Verify the per-module installation flow and the post-install passes

package installer_test

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canastawiki/canasta-modules/pkg/composer"
	"github.com/canastawiki/canasta-modules/pkg/config"
	"github.com/canastawiki/canasta-modules/pkg/errors"
	"github.com/canastawiki/canasta-modules/pkg/execution"
	"github.com/canastawiki/canasta-modules/pkg/filesystem"
	"github.com/canastawiki/canasta-modules/pkg/installer"
	"github.com/canastawiki/canasta-modules/pkg/manifest"
	"github.com/canastawiki/canasta-modules/pkg/sourcecontrol"
	"github.com/canastawiki/canasta-modules/pkg/testutil"
	"github.com/canastawiki/canasta-modules/pkg/types"
)

type env struct {
	cfg      *config.Config
	scm      *sourcecontrol.FakeProvider
	composer *execution.Recorder
	home     string
	origin   string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	mw := testutil.NewEnvironment(t)

	scm := sourcecontrol.NewFakeProvider(mw.FS)
	scm.Files["extension.json"] = "{}"
	return &env{
		cfg:      mw.Config,
		scm:      scm,
		composer: &execution.Recorder{},
		home:     mw.Home,
		origin:   mw.Origin,
	}
}

func (e *env) run(t *testing.T, policy installer.Policy, enforce bool, set *manifest.ResolvedSet) (*installer.Report, error) {
	t.Helper()
	inst := installer.New(installer.Options{
		Config:              e.cfg,
		FS:                  filesystem.NewOS(),
		SourceControl:       e.scm,
		Composer:            composer.New(e.composer, "composer", e.home),
		Policy:              policy,
		EnforceRequirements: enforce,
	})
	return inst.Run(context.Background(), set)
}

func resolved(decls map[string]types.Declaration, order ...string) *manifest.ResolvedSet {
	b := manifest.NewBuilder()
	for _, name := range order {
		b.Set(types.Extensions, name, decls[name])
	}
	return b.Build()
}

func TestRun_EndToEnd(t *testing.T) {
	e := newEnv(t)
	set := resolved(map[string]types.Declaration{
		"Foo": {Branch: "1.39", Patches: []string{"fix.patch"}},
	}, "Foo")
	require.Equal(t, 1, set.Len(types.Extensions))

	report, err := e.run(t, installer.Policy{}, false, set)
	require.NoError(t, err)

	clones := e.scm.CallsFor(sourcecontrol.OpClone)
	require.Len(t, clones, 1)
	assert.Equal(t, sourcecontrol.CloneOptions{
		URL:    "https://github.com/wikimedia/mediawiki-extensions-Foo",
		Dir:    filepath.Join(e.home, "canasta-extensions/Foo"),
		Branch: "1.39",
	}, clones[0].Clone)

	checkouts := e.scm.CallsFor(sourcecontrol.OpCheckout)
	require.Len(t, checkouts, 1)
	assert.Equal(t, "1.39", checkouts[0].Arg)

	patches := e.scm.CallsFor(sourcecontrol.OpPatch)
	require.Len(t, patches, 1)
	assert.Equal(t, "/patches/fix.patch", patches[0].Arg)

	moduleDir := filepath.Join(e.home, "canasta-extensions/Foo")
	assert.FileExists(t, filepath.Join(moduleDir, "gitinfo.json"))
	assert.NoDirExists(t, filepath.Join(moduleDir, ".git"))

	assert.Equal(t, "../canasta-extensions/Foo", testutil.ReadSymlink(t, filepath.Join(e.home, "extensions/Foo")))

	assert.FileExists(t, filepath.Join(e.home, "composer.local.json"))
	assert.FileExists(t, filepath.Join(e.origin, "config/composer.local.json"))
	hash, err := os.ReadFile(filepath.Join(e.origin, "config/persistent/.composer-deps-hash"))
	require.NoError(t, err)
	assert.Equal(t, report.Fingerprint+"\n", string(hash))

	require.Len(t, report.Modules, 1)
	assert.Equal(t, []string{"fix.patch"}, report.Modules[0].Patches)
	assert.True(t, report.Modules[0].Provenance)
	assert.Equal(t, 1, report.Links)
	assert.Zero(t, report.WarningCount())
	assert.Equal(t, []string{"composer update --working-dir=" + e.home + " --no-dev --no-interaction"}, e.composer.Lines())
}

func TestRun_CloneOptions(t *testing.T) {
	tests := []struct {
		name     string
		decl     types.Declaration
		want     sourcecontrol.CloneOptions
		checkout string
	}{
		{
			name: "derived repository and version",
			decl: types.Declaration{},
			want: sourcecontrol.CloneOptions{
				URL:          "https://github.com/wikimedia/mediawiki-extensions-Foo",
				Branch:       "REL1_43",
				SingleBranch: true,
				Depth:        1,
			},
			checkout: "REL1_43",
		},
		{
			name: "commit pin keeps history",
			decl: types.Declaration{Commit: "abc123"},
			want: sourcecontrol.CloneOptions{
				URL:          "https://github.com/wikimedia/mediawiki-extensions-Foo",
				Branch:       "REL1_43",
				SingleBranch: true,
			},
			checkout: "abc123",
		},
		{
			name: "explicit repository",
			decl: types.Declaration{Repository: "https://example.org/foo.git", Commit: "abc123"},
			want: sourcecontrol.CloneOptions{
				URL: "https://example.org/foo.git",
			},
			checkout: "abc123",
		},
		{
			name: "explicit repository without pins",
			decl: types.Declaration{Repository: "https://example.org/foo.git"},
			want: sourcecontrol.CloneOptions{URL: "https://example.org/foo.git"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			_, err := e.run(t, installer.Policy{}, false, resolved(map[string]types.Declaration{"Foo": tt.decl}, "Foo"))
			require.NoError(t, err)

			clones := e.scm.CallsFor(sourcecontrol.OpClone)
			require.Len(t, clones, 1)
			tt.want.Dir = filepath.Join(e.home, "canasta-extensions/Foo")
			assert.Equal(t, tt.want, clones[0].Clone)

			checkouts := e.scm.CallsFor(sourcecontrol.OpCheckout)
			if tt.checkout == "" {
				assert.Empty(t, checkouts)
				return
			}
			require.Len(t, checkouts, 1)
			assert.Equal(t, tt.checkout, checkouts[0].Arg)
		})
	}
}

func TestRun_ComposerModule(t *testing.T) {
	e := newEnv(t)
	set := resolved(map[string]types.Declaration{
		"SemanticMediaWiki": {
			ComposerName:          "mediawiki/semantic-media-wiki",
			ComposerVersion:       "~4.1",
			Bundled:               true,
			Repository:            "https://example.org/smw.git",
			Patches:               []string{"smw.patch"},
			PersistentDirectories: []string{"data"},
			AdditionalSteps:       []types.Step{types.StepComposerUpdate},
		},
	}, "SemanticMediaWiki")

	report, err := e.run(t, installer.Policy{}, false, set)
	require.NoError(t, err)

	assert.Empty(t, e.scm.Calls(), "composer modules never touch source control")
	assert.Equal(t, []string{
		"composer require mediawiki/semantic-media-wiki:~4.1 --working-dir=" + e.home + " --no-interaction",
		"composer update --working-dir=" + e.home + " --no-dev --no-interaction",
	}, e.composer.Lines())
	assert.Empty(t, report.Includes)
	assert.Equal(t, types.ModeComposer, report.Modules[0].Mode)
	assert.NoDirExists(t, filepath.Join(e.home, "canasta-extensions/SemanticMediaWiki"))
}

func TestRun_BundledModule(t *testing.T) {
	e := newEnv(t)
	dir := filepath.Join(e.home, "canasta-extensions/Bundled")
	testutil.CreateFile(t, dir, "composer.json", `{}`)

	set := resolved(map[string]types.Declaration{
		"Bundled": {
			Bundled:         true,
			Patches:         []string{"ignored.patch"},
			AdditionalSteps: []types.Step{types.StepComposerUpdate, types.StepSubmoduleUpdate, "make coffee"},
		},
	}, "Bundled")

	report, err := e.run(t, installer.Policy{}, false, set)
	require.NoError(t, err)

	assert.Empty(t, e.scm.CallsFor(sourcecontrol.OpClone))
	assert.Empty(t, e.scm.CallsFor(sourcecontrol.OpPatch), "patches only apply to fetched modules")
	assert.Len(t, e.scm.CallsFor(sourcecontrol.OpSubmodule), 1)

	mod := report.Modules[0]
	assert.False(t, mod.Provenance)
	assert.Equal(t, []types.Step{types.StepComposerUpdate, types.StepSubmoduleUpdate}, mod.Steps)
	assert.Len(t, mod.Warnings, 1, "unknown step is reported")
	assert.NoFileExists(t, filepath.Join(dir, "gitinfo.json"))

	assert.Equal(t, []string{"extensions/Bundled/composer.json"}, report.Includes)
	data, err := os.ReadFile(filepath.Join(e.home, "composer.local.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"extensions/Bundled/composer.json"`)
}

func TestRun_PersistentDirectories(t *testing.T) {
	e := newEnv(t)
	e.scm.Files["images/logo.png"] = "png"

	report, err := e.run(t, installer.Policy{}, false, resolved(map[string]types.Declaration{
		"Foo": {PersistentDirectories: []string{"images"}},
	}, "Foo"))
	require.NoError(t, err)

	link := filepath.Join(e.home, "canasta-extensions/Foo/images")
	require.True(t, testutil.SymlinkExists(t, link), "images must be a link, not a directory")
	assert.Equal(t, "/mediawiki/extensions/Foo/images", testutil.ReadSymlink(t, link))
	assert.FileExists(t, filepath.Join(e.origin, "extensions/Foo/images/logo.png"))
	assert.Equal(t, []string{"images"}, report.Modules[0].Relocated)
}

func TestRun_RelocateFailureIsFatal(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, installer.Policy{}, false, resolved(map[string]types.Declaration{
		"Foo": {PersistentDirectories: []string{"missing"}},
		"Bar": {},
	}, "Foo", "Bar"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrRelocate))

	assert.Len(t, e.scm.CallsFor(sourcecontrol.OpClone), 1, "the run stops at the failing module")
	assert.NoFileExists(t, filepath.Join(e.origin, "config/persistent/.composer-deps-hash"))
}

func TestRun_ErrorPolicy(t *testing.T) {
	set := resolved(map[string]types.Declaration{
		"Foo": {Branch: "1.39", Patches: []string{"a.patch", "b.patch"}},
		"Bar": {},
	}, "Foo", "Bar")

	t.Run("default continues", func(t *testing.T) {
		e := newEnv(t)
		e.scm.Fail[sourcecontrol.OpPatch] = stderrors.New("patch does not apply")

		report, err := e.run(t, installer.Policy{}, false, set)
		require.NoError(t, err)

		assert.Len(t, e.scm.CallsFor(sourcecontrol.OpPatch), 2)
		assert.Len(t, e.scm.CallsFor(sourcecontrol.OpClone), 2)
		assert.Empty(t, report.Modules[0].Patches)
		assert.Len(t, report.Modules[0].Warnings, 2)
		assert.NotEmpty(t, report.Fingerprint)
	})

	t.Run("strict aborts", func(t *testing.T) {
		e := newEnv(t)
		e.scm.Fail[sourcecontrol.OpPatch] = stderrors.New("patch does not apply")

		_, err := e.run(t, installer.StrictPolicy(), false, set)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrStepFailed))
		assert.Equal(t, "patch", errors.GetErrorDetails(err)["category"])

		assert.Len(t, e.scm.CallsFor(sourcecontrol.OpPatch), 1)
		assert.Len(t, e.scm.CallsFor(sourcecontrol.OpClone), 1)
	})

	t.Run("clone failure is best effort", func(t *testing.T) {
		e := newEnv(t)
		e.scm.Fail[sourcecontrol.OpClone] = stderrors.New("network down")

		report, err := e.run(t, installer.Policy{}, false, set)
		require.NoError(t, err)
		assert.Empty(t, e.scm.CallsFor(sourcecontrol.OpCheckout))
		assert.NotEmpty(t, report.Modules[1].Warnings)
	})
}

func TestRun_ComposerUpdateFailureIsRecovered(t *testing.T) {
	e := newEnv(t)
	e.composer.Respond = func(execution.Command) execution.Result { return execution.Result{ExitCode: 1} }

	report, err := e.run(t, installer.StrictPolicy(), false, resolved(map[string]types.Declaration{
		"Foo": {AdditionalSteps: []types.Step{types.StepComposerUpdate}},
	}, "Foo"))
	require.NoError(t, err)

	assert.Equal(t, 1, report.ComposerExitCode)
	assert.Len(t, report.Warnings, 1)
	assert.NotEmpty(t, report.Fingerprint, "fingerprint is still written")
}

func TestRun_Requirements(t *testing.T) {
	decls := map[string]types.Declaration{
		"SemanticResultFormats": {RequiredExtensions: []string{"SemanticMediaWiki"}},
		"SemanticMediaWiki":     {},
		"PageForms":             {RequiredExtensions: []string{"Missing"}},
	}

	t.Run("advisory", func(t *testing.T) {
		e := newEnv(t)
		report, err := e.run(t, installer.Policy{}, false, resolved(decls, "SemanticResultFormats", "SemanticMediaWiki", "PageForms"))
		require.NoError(t, err)
		assert.Len(t, report.Warnings, 1)

		clones := e.scm.CallsFor(sourcecontrol.OpClone)
		require.Len(t, clones, 3)
		assert.Equal(t, "https://github.com/wikimedia/mediawiki-extensions-SemanticResultFormats", clones[0].Arg, "manifest order")
	})

	t.Run("enforced missing", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.run(t, installer.Policy{}, true, resolved(decls, "SemanticResultFormats", "SemanticMediaWiki", "PageForms"))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrRequirementMissing))
		assert.Empty(t, e.scm.Calls())
	})

	t.Run("enforced order", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.run(t, installer.Policy{}, true, resolved(decls, "SemanticResultFormats", "SemanticMediaWiki"))
		require.NoError(t, err)

		clones := e.scm.CallsFor(sourcecontrol.OpClone)
		require.Len(t, clones, 2)
		assert.Equal(t, "https://github.com/wikimedia/mediawiki-extensions-SemanticMediaWiki", clones[0].Arg)
	})
}

func TestRun_TombstonesAreSkipped(t *testing.T) {
	e := newEnv(t)
	b := manifest.NewBuilder()
	b.Set(types.Extensions, "Keep", types.Declaration{})
	b.Set(types.Extensions, "Drop", types.Declaration{Remove: true})
	b.Set(types.Skins, "Vector", types.Declaration{})

	report, err := e.run(t, installer.Policy{}, false, b.Build())
	require.NoError(t, err)

	clones := e.scm.CallsFor(sourcecontrol.OpClone)
	require.Len(t, clones, 2)
	assert.Equal(t, "https://github.com/wikimedia/mediawiki-extensions-Keep", clones[0].Arg)
	assert.Equal(t, "https://github.com/wikimedia/mediawiki-skins-Vector", clones[1].Arg)
	assert.Equal(t, []string{"extensions/Drop"}, report.Removed)
}
