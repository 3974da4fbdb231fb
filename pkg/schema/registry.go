// Package schema holds the structural descriptions of record types.
//
// A Registry maps type names to Entries. Entries are registered during
// program initialization and are immutable afterwards; once Seal is called
// lookups take no lock.
package schema

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/gofhir/datamodel/pkg/logger"
	"github.com/gofhir/datamodel/pkg/value"
)

// Registry stores schema entries by type name.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	sealed  atomic.Bool
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		entries: make(map[string]*Entry),
	}
}

// Register adds an entry. Registering an equal definition again is a no-op;
// a different definition under the same type name fails with ErrSchemaConflict.
func (r *Registry) Register(e *Entry) error {
	if e == nil {
		return enrichError(ErrInvalidEntry, "nil entry")
	}
	if err := e.check(); err != nil {
		return err
	}
	norm := e.normalize()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed.Load() {
		return enrichError(ErrSealed, "cannot register %s", e.TypeName)
	}

	if existing, ok := r.entries[norm.TypeName]; ok {
		if existing.Equal(norm) {
			return nil
		}
		return enrichError(ErrSchemaConflict, "type %s is already registered with a different definition", norm.TypeName)
	}

	r.entries[norm.TypeName] = norm
	logger.Debug("Registered schema %s (%d fields, %d constraints)", norm.TypeName, len(norm.Fields), len(norm.Constraints))
	return nil
}

// MustRegister registers entries and panics on the first error.
func (r *Registry) MustRegister(entries ...*Entry) {
	for _, e := range entries {
		if err := r.Register(e); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the entry for typeName or ErrUnknownType.
func (r *Registry) Lookup(typeName string) (*Entry, error) {
	e, ok := r.get(typeName)
	if !ok {
		return nil, enrichError(ErrUnknownType, "%s", typeName)
	}
	return e, nil
}

// Has reports whether typeName is registered.
func (r *Registry) Has(typeName string) bool {
	_, ok := r.get(typeName)
	return ok
}

func (r *Registry) get(typeName string) (*Entry, bool) {
	if r.sealed.Load() {
		e, ok := r.entries[typeName]
		return e, ok
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[typeName]
	return e, ok
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Types returns all registered type names, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.entries))
	for name := range r.entries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Seal ends the registration phase. Later Register calls fail with ErrSealed.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed.Store(true)
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool {
	return r.sealed.Load()
}

// Verify checks that every nested record type and every record-valued choice
// alternative named by a registered entry is itself registered.
func (r *Registry) Verify() error {
	var errs []error
	for _, name := range r.Types() {
		e, _ := r.get(name)
		for _, f := range e.Fields {
			switch f.Type.Kind {
			case KindRecord:
				if !r.Has(f.Type.Record) {
					errs = append(errs, enrichError(ErrUnknownType, "%s.%s refers to %s", e.TypeName, f.Name, f.Type.Record))
				}
			case KindChoice:
				for _, alt := range f.Type.Choices {
					if value.IsPrimitive(alt) || alt == value.ReferenceKind || r.hasKind(alt) {
						continue
					}
					errs = append(errs, enrichError(ErrUnknownType, "%s.%s allows %s", e.TypeName, f.Name, alt))
				}
			}
		}
	}
	return errors.Join(errs...)
}

// hasKind resolves a choice alternative, which may differ from the
// registered name in the case of its first letter.
func (r *Registry) hasKind(kind string) bool {
	if r.Has(kind) {
		return true
	}
	for _, name := range r.Types() {
		if SameKind(name, kind) {
			return true
		}
	}
	return false
}

// Resolve returns the entry for a choice alternative or record type name,
// tolerating first-letter case differences.
func (r *Registry) Resolve(kind string) (*Entry, error) {
	if e, ok := r.get(kind); ok {
		return e, nil
	}
	for _, name := range r.Types() {
		if SameKind(name, kind) {
			e, _ := r.get(name)
			return e, nil
		}
	}
	return nil, enrichError(ErrUnknownType, "%s", kind)
}
