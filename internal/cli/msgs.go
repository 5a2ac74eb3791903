package cli

// Command descriptions
const (
	MsgRootShort = "Install MediaWiki extensions and skins from a layered manifest"
	MsgRootLong  = `canasta-modules installs the MediaWiki extensions and skins declared in a
layered YAML manifest. Each module is cloned (or required through Composer),
patched, stamped with provenance, and linked into $MW_HOME. Composer
dependencies of all modules are merged and a fingerprint of the result is
written for the container entrypoint.`

	MsgInstallShort = "Resolve a manifest and install every module it declares"
	MsgInstallLong  = `Install resolves the manifest chain starting at <manifest> (a path or an
http(s) URL), installs each active extension and skin under
$MW_HOME/canasta-<type>/<name>, creates the build-time symlinks, writes
composer.local.json, runs composer update, and writes the dependency
fingerprint.

Failures of individual fetch, patch and dependency steps are logged and the
run continues. Use --strict to abort on the first such failure.`

	MsgResolveShort = "Print the resolved module set of a manifest"
	MsgResolveLong  = `Resolve follows the inherits chain of <manifest>, applies every override and
removal, and prints the resulting modules in installation order. Nothing is
written to disk.`

	MsgFingerprintShort = "Recompute the Composer dependency fingerprint"
	MsgFingerprintLong  = `Fingerprint reads the include patterns of $MW_HOME/composer.local.json,
hashes the matching files, and rewrites the fingerprint file read by the
container entrypoint.`

	MsgConfigShort   = "Print the effective configuration"
	MsgVersionShort  = "Print version information"
	MsgVersionFormat = "canasta-modules version %s\n"
	MsgCommitFormat  = "Commit: %s\n"
	MsgBuiltFormat   = "Built:  %s\n"
)

// Flag descriptions
const (
	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagFormat  = "Output format: auto, term, text, json, yaml"
	MsgFlagStrict  = "Abort on the first failed fetch, patch or dependency step"
	MsgFlagEnforce = "Fail on missing required extensions and install in requirement order"
	MsgFlagConfig  = "Path to a TOML configuration file"

	MsgFlagDefaults = "Print the built-in defaults instead of the effective configuration"
)
