// Package requirements checks the "required extensions" of resolved modules
// and orders extensions so requirements are installed first.
package requirements

import (
	"strings"

	"github.com/canastawiki/canasta-modules/pkg/errors"
	"github.com/canastawiki/canasta-modules/pkg/types"
)

// Set is the view of a resolved module set the checks need
type Set interface {
	Active(t types.ModuleType) []types.Module
	Has(t types.ModuleType, name string) bool
}

// Missing is an unmet requirement
type Missing struct {
	Module      types.Module
	Requirement string
}

// FindMissing returns every required extension absent from the active set,
// in installation order
func FindMissing(set Set) []Missing {
	var missing []Missing
	for _, t := range types.AllModuleTypes {
		for _, m := range set.Active(t) {
			for _, req := range m.Declaration.RequiredExtensions {
				if !set.Has(types.Extensions, req) {
					missing = append(missing, Missing{Module: m, Requirement: req})
				}
			}
		}
	}
	return missing
}

// MissingError reports unmet requirements as ErrRequirementMissing
func MissingError(missing []Missing) error {
	if len(missing) == 0 {
		return nil
	}
	parts := make([]string, len(missing))
	for i, m := range missing {
		parts[i] = m.Module.String() + " requires " + m.Requirement
	}
	return errors.Newf(errors.ErrRequirementMissing, "missing required extensions: %s", strings.Join(parts, "; ")).
		WithDetail("count", len(missing))
}

// Order sorts modules so that every required extension in the list comes
// before the modules requiring it. Modules with no ordering constraint keep
// their relative order. Requirements outside the list are ignored.
func Order(modules []types.Module) ([]types.Module, error) {
	if len(modules) == 0 {
		return nil, nil
	}

	index := make(map[string]int, len(modules))
	for i, m := range modules {
		index[m.Name] = i
	}

	// edges run from a requirement to the modules that need it
	dependents := make([][]int, len(modules))
	inDegree := make([]int, len(modules))
	for i, m := range modules {
		seen := make(map[int]bool)
		for _, req := range m.Declaration.RequiredExtensions {
			j, ok := index[req]
			if !ok || j == i || seen[j] {
				continue
			}
			seen[j] = true
			dependents[j] = append(dependents[j], i)
			inDegree[i]++
		}
	}

	var queue []int
	for i := range modules {
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	ordered := make([]types.Module, 0, len(modules))
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		ordered = append(ordered, modules[i])
		for _, d := range dependents[i] {
			inDegree[d]--
			if inDegree[d] == 0 {
				queue = append(queue, d)
			}
		}
	}

	if len(ordered) != len(modules) {
		var cycle []string
		for i, m := range modules {
			if inDegree[i] > 0 {
				cycle = append(cycle, m.Name)
			}
		}
		return nil, errors.Newf(errors.ErrRequirementCycle, "required extensions form a cycle: %s", strings.Join(cycle, ", ")).
			WithDetail("modules", cycle)
	}
	return ordered, nil
}
