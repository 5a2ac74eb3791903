package types_test

import (
	"testing"

	"github.com/canastawiki/canasta-modules/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestDeclarationMode(t *testing.T) {
	tests := []struct {
		name string
		decl types.Declaration
		want types.Mode
	}{
		{"empty_declaration_clones", types.Declaration{}, types.ModeClone},
		{"repository_clones", types.Declaration{Repository: "https://example.org/x.git"}, types.ModeClone},
		{"bundled", types.Declaration{Bundled: true}, types.ModeBundled},
		{"composer_wins_over_bundled", types.Declaration{Bundled: true, ComposerName: "foo/bar"}, types.ModeComposer},
		{"composer_wins_over_repository", types.Declaration{Repository: "https://example.org/x.git", ComposerName: "foo/bar"}, types.ModeComposer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.decl.Mode())
		})
	}
}

func TestComposerPackage(t *testing.T) {
	assert.Equal(t, "foo/bar", types.Declaration{ComposerName: "foo/bar"}.ComposerPackage())
	assert.Equal(t, "foo/bar:~4.1", types.Declaration{ComposerName: "foo/bar", ComposerVersion: "~4.1"}.ComposerPackage())
}

func TestStepKnown(t *testing.T) {
	tests := []struct {
		step types.Step
		want bool
	}{
		{types.StepComposerUpdate, true},
		{types.StepSubmoduleUpdate, true},
		{"npm install", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.step.Known(), "step %q", tt.step)
	}
}

func TestModuleString(t *testing.T) {
	assert.Equal(t, "extensions/Foo", types.Module{Type: types.Extensions, Name: "Foo"}.String())
}
