package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/canastawiki/canasta-modules/pkg/errors"
)

const (
	// EnvPrefix is the prefix for tool settings, e.g. CANASTA_MODULES_PATCHES_DIR
	EnvPrefix = "CANASTA_MODULES_"

	// mwPrefix covers MW_HOME, MW_VERSION, MW_VOLUME and MW_ORIGIN_FILES
	mwPrefix = "MW_"
)

// LoadConfigurationWithOverrides builds the effective configuration.
// configFile is optional; an empty string skips the file layer. overrides is a
// final layer of dotted keys (e.g. "policy.strict") taken from command-line flags.
func LoadConfigurationWithOverrides(configFile string, overrides map[string]interface{}) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(rawbytes.Provider(defaultConfig), toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. Config file
	if configFile != "" {
		if _, err := os.Stat(configFile); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "config file %s", configFile)
		}
		if err := k.Load(file.Provider(configFile), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", configFile)
		}
	}

	// 3. Environment
	if err := k.Load(env.Provider(mwPrefix, ".", mwEnvKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load MW_ environment")
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", toolEnvKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load tool environment")
	}

	// 4. Flags
	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	// 5. Unmarshal
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to unmarshal configuration")
	}

	return &cfg, nil
}

// mwEnvKey maps MW_ORIGIN_FILES to mw.origin_files
func mwEnvKey(s string) string {
	return "mw." + strings.ToLower(strings.TrimPrefix(s, mwPrefix))
}

// toolEnvKey maps CANASTA_MODULES_POLICY_ENFORCE_REQUIREMENTS to
// policy.enforce_requirements: only the first underscore separates the section.
func toolEnvKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	parts := strings.SplitN(key, "_", 2)
	if len(parts) == 1 {
		return parts[0]
	}
	return fmt.Sprintf("%s.%s", parts[0], parts[1])
}
