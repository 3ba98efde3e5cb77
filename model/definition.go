package model

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jacentio/lattice/coerce"
)

// Mapper-managed field names.
const (
	IDField            = "id"
	DiscriminatorField = "type"
	CreatedAtField     = "created_at"
	UpdatedAtField     = "updated_at"
)

// GetterFunc reads a field from a record.
type GetterFunc func(r *Record) any

// SetterFunc writes a field on a record.
type SetterFunc func(r *Record, v any) error

// accessor is one entry in a definition's dispatch table. Get and Set are
// regenerated whenever the field is redeclared, dropping any wrappers.
type accessor struct {
	get GetterFunc
	set SetterFunc
}

// Definition describes a mapped type: its table, its field set, and the
// accessor table that record reads and writes dispatch through.
//
// Definitions are mutated only during the declaration phase, which the
// caller serializes (typically package init). They are read-only once
// records exist.
type Definition struct {
	name      string
	table     string
	base      *Definition
	order     []string
	fields    map[string]*Field
	accessors map[string]*accessor
}

// Define declares a new mapped type. Every definition starts with an "id"
// string field defaulting to a generated UUID and a "type" discriminator
// defaulting to name. When timestamps are enabled process-wide, datetime
// created_at and updated_at fields are added as well.
func Define(name, table string) *Definition {
	d := &Definition{
		name:      name,
		table:     table,
		fields:    make(map[string]*Field),
		accessors: make(map[string]*accessor),
	}
	d.Field(IDField, coerce.String, WithDefaultFunc(func() any { return uuid.NewString() }))
	d.Field(DiscriminatorField, coerce.String, WithDefault(name))
	if settings.Timestamps {
		d.Field(CreatedAtField, coerce.DateTime)
		d.Field(UpdatedAtField, coerce.DateTime)
	}
	return d
}

// Name returns the type name, which is also the discriminator default.
func (d *Definition) Name() string { return d.name }

// Table returns the table name without any configured namespace prefix.
func (d *Definition) Table() string { return d.table }

// Base returns the parent definition, or nil for root definitions.
func (d *Definition) Base() *Definition { return d.base }

// Field declares or redeclares a field. Redeclaring an existing name
// replaces the prior declaration without error and regenerates the
// field's accessor pair, discarding any wrappers installed on it.
//
// Field panics on an unknown type: declarations run during startup, where
// a bad type tag is a programming error.
func (d *Definition) Field(name string, t coerce.Type, opts ...FieldOption) *Definition {
	if !coerce.Known(t) {
		panic(fmt.Sprintf("lattice: unknown type %q for field %q on %q", t, name, d.name))
	}
	f := &Field{Name: name, Type: coerce.Resolve(t)}
	for _, opt := range opts {
		opt(f)
	}
	if _, exists := d.fields[name]; !exists {
		d.order = append(d.order, name)
	}
	d.fields[name] = f
	d.accessors[name] = &accessor{get: baseGetter(f), set: baseSetter(f)}
	return d
}

// RemoveField drops a declaration and its accessors. Removal is scoped to
// this definition alone: children that extended it earlier keep their
// snapshot, and removing an inherited field from a child leaves the
// parent untouched.
func (d *Definition) RemoveField(name string) {
	if _, ok := d.fields[name]; !ok {
		return
	}
	delete(d.fields, name)
	delete(d.accessors, name)
	for i, n := range d.order {
		if n == name {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

// Extend declares a subtype sharing this definition's table. The parent
// field set is snapshotted at this moment and overlaid with the child's
// own declarations: fields added to the parent afterwards do not appear
// on the child. Accessor wrappers are not part of the field set and do
// not carry over.
func (d *Definition) Extend(name string) *Definition {
	child := &Definition{
		name:      name,
		table:     d.table,
		base:      d,
		fields:    make(map[string]*Field, len(d.fields)),
		accessors: make(map[string]*accessor, len(d.fields)),
	}
	for _, n := range d.order {
		f := *d.fields[n]
		child.order = append(child.order, n)
		child.fields[n] = &f
		child.accessors[n] = &accessor{get: baseGetter(&f), set: baseSetter(&f)}
	}
	child.Field(DiscriminatorField, coerce.String, WithDefault(name))
	return child
}

// Metadata returns the introspection view of the field set in declaration
// order.
func (d *Definition) Metadata() []FieldInfo {
	infos := make([]FieldInfo, 0, len(d.order))
	for _, name := range d.order {
		f := d.fields[name]
		infos = append(infos, FieldInfo{
			Name:       f.Name,
			Type:       f.Type,
			HasDefault: f.HasDefault(),
			WireName:   f.WireName(),
		})
	}
	return infos
}

// WrapGetter layers a wrapper over the generated reader for name. The
// wrapper receives the previous reader as base and calls it to reach the
// stored value, so wrapping composes rather than replaces.
func (d *Definition) WrapGetter(name string, w func(r *Record, base GetterFunc) any) {
	acc, ok := d.accessors[name]
	if !ok {
		panic(fmt.Sprintf("lattice: cannot wrap unknown field %q on %q", name, d.name))
	}
	prev := acc.get
	acc.get = func(r *Record) any { return w(r, prev) }
}

// WrapSetter layers a wrapper over the generated writer for name, with
// the previous writer available as base.
func (d *Definition) WrapSetter(name string, w func(r *Record, v any, base SetterFunc) error) {
	acc, ok := d.accessors[name]
	if !ok {
		panic(fmt.Sprintf("lattice: cannot wrap unknown field %q on %q", name, d.name))
	}
	prev := acc.set
	acc.set = func(r *Record, v any) error { return w(r, v, prev) }
}

func baseGetter(f *Field) GetterFunc {
	return func(r *Record) any { return r.attrs[f.Name] }
}

func baseSetter(f *Field) SetterFunc {
	return func(r *Record, v any) error {
		if f.Type != coerce.Raw && f.Type != coerce.Serialized {
			cast, err := coerce.Cast(f.Type, v)
			if err != nil {
				return fieldError(f.Name, err)
			}
			v = cast
		}
		r.write(f.Name, v)
		return nil
	}
}
