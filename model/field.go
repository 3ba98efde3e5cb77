package model

import "github.com/jacentio/lattice/coerce"

// Field is a single declared attribute on a definition.
type Field struct {
	Name string
	Type coerce.Type

	alias         string
	hasStatic     bool
	staticDefault any
	defaultFunc   func() any
	marshaler     coerce.Marshaler
}

// FieldOption customizes a field declaration.
type FieldOption func(*Field)

// WithDefault declares a static default value. The value is handed to
// every new record as-is: a mutable value given here is shared by
// reference across records. Use WithDefaultFunc when each record needs
// its own copy.
func WithDefault(v any) FieldOption {
	return func(f *Field) {
		f.hasStatic = true
		f.staticDefault = v
	}
}

// WithDefaultFunc declares a producer default. The producer is invoked
// fresh for every record at construction time, so mutable defaults are
// never shared between records.
func WithDefaultFunc(fn func() any) FieldOption {
	return func(f *Field) {
		f.defaultFunc = fn
	}
}

// WithAlias stores the field under a different attribute name on the wire.
func WithAlias(wireName string) FieldOption {
	return func(f *Field) {
		f.alias = wireName
	}
}

// WithMarshaler overrides the built-in serialized codec for this field.
func WithMarshaler(m coerce.Marshaler) FieldOption {
	return func(f *Field) {
		f.marshaler = m
	}
}

// WireName returns the attribute name used on the wire: the storage alias
// when one was declared, the field name otherwise.
func (f *Field) WireName() string {
	if f.alias != "" {
		return f.alias
	}
	return f.Name
}

// HasDefault reports whether the field declares a default of either kind.
func (f *Field) HasDefault() bool {
	return f.hasStatic || f.defaultFunc != nil
}

// resolveDefault produces the field's initial value for a new record.
// Producer defaults are invoked fresh on every call and never memoized.
func (f *Field) resolveDefault() (any, bool) {
	if f.defaultFunc != nil {
		return f.defaultFunc(), true
	}
	if f.hasStatic {
		return f.staticDefault, true
	}
	return nil, false
}

// FieldInfo is the introspection view of a declared field, exposed for
// query planners and schema tooling.
type FieldInfo struct {
	Name       string
	Type       coerce.Type
	HasDefault bool
	WireName   string
}
