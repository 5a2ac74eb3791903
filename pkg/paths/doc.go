// Package paths provides centralized path handling for canasta-modules.
//
// Three roots matter during an image build:
//
//	MW_HOME          the MediaWiki install; modules live in canasta-<type>/<name>
//	MW_ORIGIN_FILES  seed files copied into the volume on first run
//	MW_VOLUME        the externally mounted volume read at runtime
//
// Every path the installer touches is derived here so components never
// join path fragments themselves.
package paths
