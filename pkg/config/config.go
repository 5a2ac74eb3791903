package config

import (
	"strings"
	"time"

	"github.com/canastawiki/canasta-modules/pkg/errors"
	"github.com/canastawiki/canasta-modules/pkg/types"
)

// Config is the effective configuration of a run
type Config struct {
	MediaWiki  MediaWiki  `koanf:"mw" toml:"mw"`
	Repository Repository `koanf:"repository" toml:"repository"`
	Patches    Patches    `koanf:"patches" toml:"patches"`
	Tools      Tools      `koanf:"tools" toml:"tools"`
	HTTP       HTTP       `koanf:"http" toml:"http"`
	Policy     Policy     `koanf:"policy" toml:"policy"`
}

// MediaWiki holds the image layout read from MW_HOME, MW_VERSION, MW_VOLUME and MW_ORIGIN_FILES
type MediaWiki struct {
	Home        string `koanf:"home" toml:"home"`
	Version     string `koanf:"version" toml:"version"`
	Volume      string `koanf:"volume" toml:"volume"`
	OriginFiles string `koanf:"origin_files" toml:"origin_files"`
}

// Repository controls how a missing repository URL is derived
type Repository struct {
	// Template supports ${type} and ${name} placeholders
	Template string `koanf:"template" toml:"template"`
}

// Patches locates patch files named in manifests
type Patches struct {
	Dir string `koanf:"dir" toml:"dir"`
}

// Tools names the external binaries that get invoked
type Tools struct {
	Git      string `koanf:"git" toml:"git"`
	Composer string `koanf:"composer" toml:"composer"`
}

// HTTP configures remote manifest fetching
type HTTP struct {
	Timeout time.Duration `koanf:"timeout" toml:"timeout"`
}

// Policy configures failure handling for best-effort steps and requirement checks
type Policy struct {
	Strict              bool `koanf:"strict" toml:"strict"`
	EnforceRequirements bool `koanf:"enforce_requirements" toml:"enforce_requirements"`
}

// RepositoryURL derives the clone URL for a module without an explicit repository
func (c *Config) RepositoryURL(moduleType types.ModuleType, name string) string {
	return strings.NewReplacer("${type}", string(moduleType), "${name}", name).Replace(c.Repository.Template)
}

// Validate checks the settings an install run cannot do without
func (c *Config) Validate() error {
	required := []struct {
		env   string
		value string
	}{
		{"MW_HOME", c.MediaWiki.Home},
		{"MW_VERSION", c.MediaWiki.Version},
		{"MW_VOLUME", c.MediaWiki.Volume},
		{"MW_ORIGIN_FILES", c.MediaWiki.OriginFiles},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return errors.Newf(errors.ErrConfigValid, "%s is not set", r.env).WithDetail("env", r.env)
		}
	}
	if c.Repository.Template == "" {
		return errors.New(errors.ErrConfigValid, "repository template is empty")
	}
	return nil
}
