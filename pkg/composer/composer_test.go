package composer_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canastawiki/canasta-modules/pkg/composer"
	"github.com/canastawiki/canasta-modules/pkg/config"
	"github.com/canastawiki/canasta-modules/pkg/errors"
	"github.com/canastawiki/canasta-modules/pkg/execution"
	"github.com/canastawiki/canasta-modules/pkg/filesystem"
	"github.com/canastawiki/canasta-modules/pkg/paths"
	"github.com/canastawiki/canasta-modules/pkg/types"
)

var layout = paths.New(config.MediaWiki{
	Home:        "/var/www/mediawiki/w",
	Volume:      "/mediawiki",
	OriginFiles: "/mw_origin_files",
})

func TestComposer(t *testing.T) {
	rec := &execution.Recorder{}
	c := composer.New(rec, "", "/var/www/mediawiki/w")

	require.NoError(t, c.Require(context.Background(), "mediawiki/semantic-media-wiki:~4.1"))
	code, err := c.Update(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	assert.Equal(t, []string{
		"composer require mediawiki/semantic-media-wiki:~4.1 --working-dir=/var/www/mediawiki/w --no-interaction",
		"composer update --working-dir=/var/www/mediawiki/w --no-dev --no-interaction",
	}, rec.Lines())
}

func TestLocalConfigEncode(t *testing.T) {
	tests := []struct {
		name     string
		includes []string
		want     string
	}{
		{
			name: "empty",
			want: `{
    "extra": {
        "merge-plugin": {
            "include": []
        }
    }
}
`,
		},
		{
			name:     "slashes stay unescaped",
			includes: []string{"extensions/Foo/composer.json", "skins/Bar/composer.json"},
			want: `{
    "extra": {
        "merge-plugin": {
            "include": [
                "extensions/Foo/composer.json",
                "skins/Bar/composer.json"
            ]
        }
    }
}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := composer.LocalConfig{Extra: composer.Extra{MergePlugin: composer.MergePlugin{Include: tt.includes}}}
			data, err := cfg.Encode()
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestPlanner(t *testing.T) {
	fs := filesystem.NewAferoFS(afero.NewMemMapFs())
	require.NoError(t, fs.MkdirAll(layout.Home(), 0755))
	rec := &execution.Recorder{}
	p := composer.NewPlanner(fs, layout, composer.New(rec, "", layout.Home()))

	p.Register(types.Extensions, "Foo")
	p.Register(types.Skins, "Chameleon")
	p.Register(types.Extensions, "Foo")
	assert.Equal(t, []string{"extensions/Foo/composer.json", "skins/Chameleon/composer.json"}, p.Includes())

	require.NoError(t, p.Write())

	home, err := fs.ReadFile("/var/www/mediawiki/w/composer.local.json")
	require.NoError(t, err)
	origin, err := fs.ReadFile("/mw_origin_files/config/composer.local.json")
	require.NoError(t, err)
	assert.Equal(t, home, origin)
	assert.Contains(t, string(home), `"extensions/Foo/composer.json"`)

	outcome := p.Update(context.Background())
	assert.True(t, outcome.OK())
	assert.Equal(t, []string{"composer update --working-dir=/var/www/mediawiki/w --no-dev --no-interaction"}, rec.Lines())
}

func TestPlanner_UpdateFailureIsRecovered(t *testing.T) {
	fs := filesystem.NewAferoFS(afero.NewMemMapFs())
	rec := &execution.Recorder{
		Respond: func(execution.Command) execution.Result { return execution.Result{ExitCode: 2} },
	}
	p := composer.NewPlanner(fs, layout, composer.New(rec, "", layout.Home()))

	outcome := p.Update(context.Background())
	assert.False(t, outcome.OK())
	assert.Equal(t, 2, outcome.ExitCode)
	assert.True(t, errors.IsErrorCode(outcome.Err, errors.ErrCommandFailed))
}

func TestPlanner_WriteFailure(t *testing.T) {
	fs := filesystem.NewAferoFS(afero.NewReadOnlyFs(afero.NewMemMapFs()))
	p := composer.NewPlanner(fs, layout, composer.New(&execution.Recorder{}, "", layout.Home()))

	err := p.Write()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileWrite))
}

func TestReadLocalConfig(t *testing.T) {
	fs := filesystem.NewAferoFS(afero.NewMemMapFs())
	p := composer.NewPlanner(fs, layout, composer.New(&execution.Recorder{}, "", layout.Home()))
	p.Register(types.Extensions, "Foo")
	require.NoError(t, p.Write())

	cfg, err := composer.ReadLocalConfig(fs, layout.ComposerLocal())
	require.NoError(t, err)
	assert.Equal(t, []string{"extensions/Foo/composer.json"}, cfg.Extra.MergePlugin.Include)

	require.NoError(t, fs.WriteFile("/broken.json", []byte("{"), 0644))
	_, err = composer.ReadLocalConfig(fs, "/broken.json")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	_, err = composer.ReadLocalConfig(fs, "/missing.json")
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileAccess))
}
