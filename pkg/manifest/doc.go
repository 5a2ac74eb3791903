// Package manifest loads layered extension/skin manifests and folds an
// inheritance chain into a ResolvedSet.
//
// A manifest is a YAML document:
//
//	inherits: https://example.org/base.yaml
//	extensions:
//	  - Cite:
//	      branch: REL1_43
//	  - OldThing:
//	      remove: true
//	skins:
//	  - Vector:
//	      bundled: true
//
// Resolution is depth-first: the parent chain is applied first, then the
// child's entries replace any same-named entry wholesale. Tombstoned entries
// (remove: true) stay in the accumulator and are filtered out when the
// ResolvedSet is read.
package manifest
