// pkg/testutil/environment.go
// DEPENDENCIES: pkg/config, pkg/filesystem
// PURPOSE: Orchestrate MediaWiki test environments

package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/canastawiki/canasta-modules/pkg/config"
	"github.com/canastawiki/canasta-modules/pkg/filesystem"
	"github.com/canastawiki/canasta-modules/pkg/types"
)

// DefaultRepositoryTemplate mirrors the built-in repository template
const DefaultRepositoryTemplate = "https://github.com/wikimedia/mediawiki-${type}-${name}"

// Environment is an isolated MediaWiki layout on the real filesystem
type Environment struct {
	Root   string
	Home   string
	Origin string
	Config *config.Config
	FS     types.FS

	t *testing.T
}

// NewEnvironment creates MW_HOME under a fresh temp directory.
// MW_ORIGIN_FILES is left for the code under test to create.
func NewEnvironment(t *testing.T) *Environment {
	t.Helper()

	root := t.TempDir()
	env := &Environment{
		Root:   root,
		Home:   filepath.Join(root, "w"),
		Origin: filepath.Join(root, "origin"),
		FS:     filesystem.NewOS(),
		t:      t,
	}
	env.Config = &config.Config{
		MediaWiki: config.MediaWiki{
			Home:        env.Home,
			Version:     "REL1_43",
			Volume:      "/mediawiki",
			OriginFiles: env.Origin,
		},
		Repository: config.Repository{Template: DefaultRepositoryTemplate},
		Patches:    config.Patches{Dir: "/patches"},
		Tools:      config.Tools{Git: "git", Composer: "composer"},
	}
	require.NoError(t, env.FS.MkdirAll(env.Home, 0755))
	return env
}

// Setenv exports the environment's MW_* variables for the rest of the test,
// with the log file kept inside the temp directory
func (env *Environment) Setenv() {
	env.t.Helper()
	env.t.Setenv("MW_HOME", env.Home)
	env.t.Setenv("MW_VERSION", env.Config.MediaWiki.Version)
	env.t.Setenv("MW_VOLUME", env.Config.MediaWiki.Volume)
	env.t.Setenv("MW_ORIGIN_FILES", env.Origin)
	env.t.Setenv("CANASTA_MODULES_LOG_FILE", filepath.Join(env.Root, "canasta-modules.log"))
}

// ModuleDir returns $MW_HOME/canasta-<type>/<name>
func (env *Environment) ModuleDir(t types.ModuleType, name string) string {
	return filepath.Join(env.Home, "canasta-"+string(t), name)
}

// WithFileTree creates tree under MW_HOME
func (env *Environment) WithFileTree(tree FileTree) {
	env.t.Helper()
	CreateFileTree(env.t, env.FS, env.Home, tree)
}

// FileTree represents a directory structure for testing.
// Values are file contents (string) or nested FileTrees.
type FileTree map[string]interface{}

// CreateFileTree recursively creates tree under basePath
func CreateFileTree(t *testing.T, fs types.FS, basePath string, tree FileTree) {
	t.Helper()

	for name, content := range tree {
		fullPath := filepath.Join(basePath, name)

		switch v := content.(type) {
		case string:
			require.NoError(t, fs.MkdirAll(filepath.Dir(fullPath), 0755))
			require.NoError(t, fs.WriteFile(fullPath, []byte(v), 0644), "write %s", fullPath)
		case FileTree:
			require.NoError(t, fs.MkdirAll(fullPath, 0755), "mkdir %s", fullPath)
			CreateFileTree(t, fs, fullPath, v)
		default:
			t.Fatalf("invalid file tree content type for %s: %T", name, content)
		}
	}
}
