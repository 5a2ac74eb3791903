package linker_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canastawiki/canasta-modules/pkg/config"
	"github.com/canastawiki/canasta-modules/pkg/filesystem"
	"github.com/canastawiki/canasta-modules/pkg/linker"
	"github.com/canastawiki/canasta-modules/pkg/paths"
)

func TestBuild(t *testing.T) {
	home := filepath.Join(t.TempDir(), "w")
	layout := paths.New(config.MediaWiki{Home: home, Volume: "/mediawiki", OriginFiles: "/origin"})

	for _, dir := range []string{
		"canasta-extensions/Foo",
		"canasta-extensions/Bar",
		"canasta-skins/Vector",
		"extensions/Bar", // bundled with core, must survive
	} {
		require.NoError(t, os.MkdirAll(filepath.Join(home, dir), 0755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(home, "canasta-extensions", "README"), []byte("x"), 0644))

	b := linker.New(filesystem.NewOS(), layout)
	links, err := b.Build()
	require.NoError(t, err)

	assert.ElementsMatch(t, []linker.Link{
		{Path: filepath.Join(home, "extensions/Foo"), Target: "../canasta-extensions/Foo"},
		{Path: filepath.Join(home, "skins/Vector"), Target: "../canasta-skins/Vector"},
	}, links)

	target, err := os.Readlink(filepath.Join(home, "extensions/Foo"))
	require.NoError(t, err)
	assert.Equal(t, "../canasta-extensions/Foo", target)

	info, err := os.Lstat(filepath.Join(home, "extensions/Bar"))
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "existing entries are left alone")

	_, err = os.Lstat(filepath.Join(home, "extensions/README"))
	assert.True(t, os.IsNotExist(err), "only directories are linked")

	// links resolve to the canonical directory
	info, err = os.Stat(filepath.Join(home, "skins/Vector"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	again, err := b.Build()
	require.NoError(t, err)
	assert.Empty(t, again, "a second run creates nothing")
}

func TestBuild_NoCanonicalDirs(t *testing.T) {
	home := t.TempDir()
	layout := paths.New(config.MediaWiki{Home: home, Volume: "/mediawiki", OriginFiles: "/origin"})

	links, err := linker.New(filesystem.NewOS(), layout).Build()
	require.NoError(t, err)
	assert.Empty(t, links)
}
