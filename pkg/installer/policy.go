package installer

// Category groups best-effort operations for the error policy
type Category string

const (
	CategoryFetch      Category = "fetch"
	CategoryCheckout   Category = "checkout"
	CategoryPatch      Category = "patch"
	CategorySubmodule  Category = "submodule"
	CategoryRequire    Category = "require"
	CategoryProvenance Category = "provenance"
)

// AllCategories lists every best-effort category
var AllCategories = []Category{
	CategoryFetch,
	CategoryCheckout,
	CategoryPatch,
	CategorySubmodule,
	CategoryRequire,
	CategoryProvenance,
}

// Policy decides which best-effort failures abort the run.
// The zero value logs every failure and continues.
type Policy struct {
	Fetch      bool
	Checkout   bool
	Patch      bool
	Submodule  bool
	Require    bool
	Provenance bool
}

// StrictPolicy aborts on any failure
func StrictPolicy() Policy {
	return Policy{
		Fetch:      true,
		Checkout:   true,
		Patch:      true,
		Submodule:  true,
		Require:    true,
		Provenance: true,
	}
}

// Aborts reports whether a failure in category c is fatal
func (p Policy) Aborts(c Category) bool {
	switch c {
	case CategoryFetch:
		return p.Fetch
	case CategoryCheckout:
		return p.Checkout
	case CategoryPatch:
		return p.Patch
	case CategorySubmodule:
		return p.Submodule
	case CategoryRequire:
		return p.Require
	case CategoryProvenance:
		return p.Provenance
	default:
		return false
	}
}
