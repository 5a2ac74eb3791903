package execution_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/canastawiki/canasta-modules/pkg/errors"
	"github.com/canastawiki/canasta-modules/pkg/execution"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "tool.sh")
	require.NoError(t, os.WriteFile(script, []byte(`#!/bin/sh
echo "out $1 $TOOL_VAR"
echo "err" >&2
exit $2
`), 0755))

	t.Run("success", func(t *testing.T) {
		var stream bytes.Buffer
		r := execution.NewExecRunner(&stream)

		res, err := r.Run(context.Background(), execution.Command{
			Name: "/bin/sh",
			Args: []string{script, "hello", "0"},
			Dir:  dir,
			Env:  []string{"TOOL_VAR=set"},
		})
		require.NoError(t, err)
		assert.Equal(t, 0, res.ExitCode)
		assert.Equal(t, "out hello set\n", res.Stdout)
		assert.Equal(t, "err\n", res.Stderr)
		assert.Contains(t, stream.String(), "out hello set")
	})

	t.Run("non-zero exit", func(t *testing.T) {
		r := execution.NewExecRunner(nil)

		res, err := r.Run(context.Background(), execution.Command{
			Name: "/bin/sh",
			Args: []string{script, "x", "3"},
		})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrCommandFailed))
		assert.Equal(t, 3, res.ExitCode)
		assert.Equal(t, "err\n", res.Stderr)
	})

	t.Run("missing working directory", func(t *testing.T) {
		r := execution.NewExecRunner(nil)

		_, err := r.Run(context.Background(), execution.Command{
			Name: "/bin/sh",
			Args: []string{script, "x", "0"},
			Dir:  filepath.Join(dir, "nope"),
		})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrFileAccess))
	})

	t.Run("missing binary", func(t *testing.T) {
		r := execution.NewExecRunner(nil)

		res, err := r.Run(context.Background(), execution.Command{Name: filepath.Join(dir, "absent")})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrCommandFailed))
		assert.Equal(t, -1, res.ExitCode)
	})
}

func TestRecorder(t *testing.T) {
	r := &execution.Recorder{
		Respond: func(cmd execution.Command) execution.Result {
			if cmd.Name == "composer" {
				return execution.Result{ExitCode: 2, Stderr: "boom"}
			}
			return execution.Result{}
		},
	}

	_, err := r.Run(context.Background(), execution.Command{Name: "git", Args: []string{"apply", "/tmp/a.patch"}, Dir: "/w"})
	require.NoError(t, err)

	res, err := r.Run(context.Background(), execution.Command{Name: "composer", Args: []string{"update"}})
	require.Error(t, err)
	assert.Equal(t, 2, res.ExitCode)

	assert.Equal(t, []string{"git apply /tmp/a.patch", "composer update"}, r.Lines())
	assert.Equal(t, "/w", r.Calls()[0].Dir)
}
