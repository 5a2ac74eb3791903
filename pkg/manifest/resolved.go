package manifest

import (
	"github.com/canastawiki/canasta-modules/pkg/types"
)

// moduleTable keeps declarations of one type in first-seen order
type moduleTable struct {
	order []string
	decls map[string]types.Declaration
}

func newModuleTable() *moduleTable {
	return &moduleTable{decls: make(map[string]types.Declaration)}
}

func (t *moduleTable) put(name string, decl types.Declaration) {
	if _, exists := t.decls[name]; !exists {
		t.order = append(t.order, name)
	}
	t.decls[name] = decl
}

func (t *moduleTable) clone() *moduleTable {
	c := &moduleTable{
		order: append([]string(nil), t.order...),
		decls: make(map[string]types.Declaration, len(t.decls)),
	}
	for name, decl := range t.decls {
		c.decls[name] = decl
	}
	return c
}

// Builder is the accumulator threaded through resolution of an inheritance chain
type Builder struct {
	tables map[types.ModuleType]*moduleTable
}

// NewBuilder creates an empty accumulator
func NewBuilder() *Builder {
	b := &Builder{tables: make(map[types.ModuleType]*moduleTable)}
	for _, t := range types.AllModuleTypes {
		b.tables[t] = newModuleTable()
	}
	return b
}

// Set records a declaration, replacing any earlier declaration of the same name.
// A replaced name keeps its original position.
func (b *Builder) Set(t types.ModuleType, name string, decl types.Declaration) {
	b.tables[t].put(name, decl)
}

// Apply layers every entry of a manifest on top of the accumulator
func (b *Builder) Apply(m *Manifest) {
	for _, t := range types.AllModuleTypes {
		for _, entry := range m.Entries(t) {
			b.Set(t, entry.Name, entry.Declaration)
		}
	}
}

// Build returns an immutable snapshot of the accumulator
func (b *Builder) Build() *ResolvedSet {
	s := &ResolvedSet{tables: make(map[types.ModuleType]*moduleTable, len(b.tables))}
	for t, table := range b.tables {
		s.tables[t] = table.clone()
	}
	return s
}

// ResolvedSet is the flattened result of an inheritance chain.
// Tombstoned modules are invisible through every accessor except Removed.
type ResolvedSet struct {
	tables map[types.ModuleType]*moduleTable
}

// Get returns the declaration for a module that is not tombstoned
func (s *ResolvedSet) Get(t types.ModuleType, name string) (types.Declaration, bool) {
	table, ok := s.tables[t]
	if !ok {
		return types.Declaration{}, false
	}
	decl, ok := table.decls[name]
	if !ok || decl.Remove {
		return types.Declaration{}, false
	}
	return decl, true
}

// Has reports whether a module is part of the active set
func (s *ResolvedSet) Has(t types.ModuleType, name string) bool {
	_, ok := s.Get(t, name)
	return ok
}

// Active returns the modules to install for a type, in declaration order
func (s *ResolvedSet) Active(t types.ModuleType) []types.Module {
	table, ok := s.tables[t]
	if !ok {
		return nil
	}
	modules := make([]types.Module, 0, len(table.order))
	for _, name := range table.order {
		decl := table.decls[name]
		if decl.Remove {
			continue
		}
		modules = append(modules, types.Module{Type: t, Name: name, Declaration: decl})
	}
	return modules
}

// Names returns the names of active modules for a type
func (s *ResolvedSet) Names(t types.ModuleType) []string {
	active := s.Active(t)
	names := make([]string, len(active))
	for i, m := range active {
		names[i] = m.Name
	}
	return names
}

// Len returns the number of active modules for a type
func (s *ResolvedSet) Len(t types.ModuleType) int {
	return len(s.Active(t))
}

// Removed returns the tombstoned module names for a type
func (s *ResolvedSet) Removed(t types.ModuleType) []string {
	table, ok := s.tables[t]
	if !ok {
		return nil
	}
	var removed []string
	for _, name := range table.order {
		if table.decls[name].Remove {
			removed = append(removed, name)
		}
	}
	return removed
}

// All returns every active module, extensions first
func (s *ResolvedSet) All() []types.Module {
	var all []types.Module
	for _, t := range types.AllModuleTypes {
		all = append(all, s.Active(t)...)
	}
	return all
}
