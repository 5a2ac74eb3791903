package composer

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/canastawiki/canasta-modules/pkg/errors"
	"github.com/canastawiki/canasta-modules/pkg/logging"
	"github.com/canastawiki/canasta-modules/pkg/paths"
	"github.com/canastawiki/canasta-modules/pkg/types"
)

// LocalConfig is the composer.local.json document
type LocalConfig struct {
	Extra Extra `json:"extra"`
}

// Extra is the "extra" section of composer.local.json
type Extra struct {
	MergePlugin MergePlugin `json:"merge-plugin"`
}

// MergePlugin configures wikimedia/composer-merge-plugin
type MergePlugin struct {
	Include []string `json:"include"`
}

// Encode renders cfg the way composer writes it: four-space indent,
// unescaped slashes and a trailing newline
func (cfg LocalConfig) Encode() ([]byte, error) {
	if cfg.Extra.MergePlugin.Include == nil {
		cfg.Extra.MergePlugin.Include = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UpdateOutcome is the result of the unified update pass
type UpdateOutcome struct {
	ExitCode int
	Err      error
}

// OK reports whether composer finished cleanly
func (o UpdateOutcome) OK() bool {
	return o.Err == nil && o.ExitCode == 0
}

// Planner collects composer.json includes and writes the merged configuration
type Planner struct {
	fs       types.FS
	layout   paths.Layout
	manager  Manager
	logger   zerolog.Logger
	includes []string
	seen     map[string]bool
}

// NewPlanner creates an empty Planner
func NewPlanner(fs types.FS, layout paths.Layout, manager Manager) *Planner {
	return &Planner{
		fs:      fs,
		layout:  layout,
		manager: manager,
		logger:  logging.GetLogger("composer.planner"),
		seen:    make(map[string]bool),
	}
}

// Register records the composer.json of a module, once
func (p *Planner) Register(t types.ModuleType, name string) {
	include := paths.ComposerInclude(t, name)
	if p.seen[include] {
		return
	}
	p.seen[include] = true
	p.includes = append(p.includes, include)
	p.logger.Debug().Str("include", include).Msg("Registered composer include")
}

// Includes returns the registered include patterns in registration order
func (p *Planner) Includes() []string {
	return append([]string(nil), p.includes...)
}

// Config returns the document Write persists
func (p *Planner) Config() LocalConfig {
	return LocalConfig{Extra: Extra{MergePlugin: MergePlugin{Include: p.Includes()}}}
}

// Write persists composer.local.json to the MediaWiki root and to the
// origin config staging directory
func (p *Planner) Write() error {
	data, err := p.Config().Encode()
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "cannot encode composer.local.json")
	}

	home := p.layout.ComposerLocal()
	if err := p.fs.WriteFile(home, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", home)
	}

	dir := p.layout.OriginConfigDir()
	if err := p.fs.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", dir)
	}
	origin := p.layout.OriginComposerLocal()
	if err := p.fs.WriteFile(origin, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", origin)
	}

	p.logger.Info().
		Int("includes", len(p.includes)).
		Str("path", home).
		Msg("Wrote composer.local.json")
	return nil
}

// Update runs the unified composer update. Failure is reported, never fatal.
func (p *Planner) Update(ctx context.Context) UpdateOutcome {
	p.logger.Info().Msg("Running unified composer update")
	code, err := p.manager.Update(ctx)
	outcome := UpdateOutcome{ExitCode: code, Err: err}
	if !outcome.OK() {
		p.logger.Warn().
			Err(err).
			Int("exitCode", code).
			Msg("composer update failed, continuing")
	}
	return outcome
}

// ReadLocalConfig loads an existing composer.local.json
func ReadLocalConfig(fs types.FS, path string) (LocalConfig, error) {
	var cfg LocalConfig
	data, err := fs.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", path)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, errors.ErrInvalidInput, "cannot parse %s", path)
	}
	return cfg, nil
}
