package manifest

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/canastawiki/canasta-modules/pkg/errors"
	"github.com/canastawiki/canasta-modules/pkg/logging"
	"github.com/canastawiki/canasta-modules/pkg/types"
)

// MaxDepth bounds the length of an inheritance chain
const MaxDepth = 32

// Resolver folds an inheritance chain into a ResolvedSet
type Resolver struct {
	loader *Loader
	logger zerolog.Logger
}

// NewResolver creates a Resolver reading documents through loader
func NewResolver(loader *Loader) *Resolver {
	return &Resolver{
		loader: loader,
		logger: logging.GetLogger("manifest.resolver"),
	}
}

// Resolve loads the manifest at locator and every ancestor it inherits from.
// Any load or parse failure aborts resolution; no partial set is returned.
func (r *Resolver) Resolve(ctx context.Context, locator string) (*ResolvedSet, error) {
	b := NewBuilder()
	if err := r.resolveInto(ctx, locator, b, nil); err != nil {
		return nil, err
	}
	set := b.Build()
	r.logger.Info().
		Str("locator", locator).
		Strs("extensions", set.Names(types.Extensions)).
		Strs("skins", set.Names(types.Skins)).
		Msg("Manifest chain resolved")
	return set, nil
}

// resolveInto applies the ancestors of locator, then locator itself, onto b.
// chain holds the canonical locators of the descendants being resolved.
func (r *Resolver) resolveInto(ctx context.Context, locator string, b *Builder, chain []string) error {
	key := canonical(locator)
	for _, seen := range chain {
		if seen == key {
			return errors.Newf(errors.ErrManifestCycle, "manifest %s inherits from itself", locator).
				WithDetail("chain", append(append([]string(nil), chain...), key))
		}
	}
	if len(chain) >= MaxDepth {
		return errors.Newf(errors.ErrManifestCycle, "manifest inheritance deeper than %d at %s", MaxDepth, locator)
	}

	m, err := r.loader.Load(ctx, locator)
	if err != nil {
		return err
	}

	if m.Inherits != "" {
		parent := r.loader.ResolveParent(locator, m.Inherits)
		r.logger.Debug().Str("manifest", locator).Str("inherits", parent).Msg("Resolving parent manifest")
		if err := r.resolveInto(ctx, parent, b, append(chain, key)); err != nil {
			return err
		}
	}

	b.Apply(m)
	return nil
}
