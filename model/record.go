package model

import (
	"reflect"
	"time"
)

// Record is one instance of a mapped type: its attribute values plus the
// dirty state accumulated since the last clean point.
//
// Records are not safe for concurrent use; share across goroutines only
// with external synchronization.
type Record struct {
	def       *Definition
	attrs     map[string]any
	changes   map[string]*change
	persisted bool
}

// change is allocated lazily the first time a field is written after a
// clean point. before holds the clean value; the current value lives in
// the record's attribute map.
type change struct {
	before any
}

// New constructs a record of this definition. Explicit values in attrs
// win over declared defaults, and an explicit nil suppresses the default
// entirely. Keys outside the field set fail with UnknownFieldError, and
// every value is cast eagerly so invalid input fails here rather than at
// save time. All seeded fields count as changed until the first clean
// point.
func (d *Definition) New(attrs map[string]any) (*Record, error) {
	for name := range attrs {
		if _, ok := d.fields[name]; !ok {
			return nil, &UnknownFieldError{Field: name}
		}
	}
	r := &Record{
		def:     d,
		attrs:   make(map[string]any, len(d.order)),
		changes: make(map[string]*change),
	}
	for _, name := range d.order {
		v, explicit := attrs[name]
		if !explicit {
			dv, ok := d.fields[name].resolveDefault()
			if !ok {
				continue
			}
			v = dv
		}
		if err := r.Set(name, v); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Definition returns the definition this record was built from.
func (r *Record) Definition() *Definition { return r.def }

// Persisted reports whether the record has crossed a clean point, i.e.
// was hydrated from the store or successfully synchronized.
func (r *Record) Persisted() bool { return r.persisted }

// Get returns the current value of a field, nil when unset.
func (r *Record) Get(name string) (any, error) {
	acc, ok := r.def.accessors[name]
	if !ok {
		return nil, &UnknownFieldError{Field: name}
	}
	return acc.get(r), nil
}

// Set writes a field through its accessor, casting eagerly and updating
// the dirty ledger.
func (r *Record) Set(name string, v any) error {
	acc, ok := r.def.accessors[name]
	if !ok {
		return &UnknownFieldError{Field: name}
	}
	return acc.set(r, v)
}

// Is is the query form of the accessor surface: it reports whether a
// field holds a truthy value. nil and false both report false; any other
// value, including zero numbers and empty strings, reports true.
func (r *Record) Is(name string) bool {
	v, err := r.Get(name)
	if err != nil || v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return true
}

// write stores a value and maintains the ledger. Writing a value equal to
// the clean baseline clears the field's dirty entry; the first differing
// write after a clean point allocates one.
func (r *Record) write(name string, v any) {
	if c, ok := r.changes[name]; ok {
		if valueEqual(c.before, v) {
			delete(r.changes, name)
		}
	} else if !valueEqual(r.attrs[name], v) {
		r.changes[name] = &change{before: r.attrs[name]}
	}
	r.attrs[name] = v
}

// ChangedFields returns the names of fields whose current value differs
// from the clean baseline, in declaration order.
func (r *Record) ChangedFields() []string {
	var names []string
	for _, name := range r.def.order {
		if _, ok := r.changes[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// Changed reports whether a single field is dirty.
func (r *Record) Changed(name string) bool {
	_, ok := r.changes[name]
	return ok
}

// ChangeFor returns the clean and current values of a dirty field, or
// ok=false when the field is unchanged.
func (r *Record) ChangeFor(name string) (before, after any, ok bool) {
	c, ok := r.changes[name]
	if !ok {
		return nil, nil, false
	}
	return c.before, r.attrs[name], true
}

// MarkClean establishes a new clean point: current values become the
// baseline for change detection and the record counts as persisted.
// Called after hydration and after every successful synchronization.
func (r *Record) MarkClean() {
	r.changes = make(map[string]*change)
	r.persisted = true
}

// valueEqual compares by structural equality, not identity. time.Time
// compares with Equal so the same instant in different locations matches.
func valueEqual(a, b any) bool {
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	}
	return reflect.DeepEqual(a, b)
}
