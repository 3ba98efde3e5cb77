package model

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/lattice/coerce"
)

// DumpItem marshals the record into wire attributes keyed by wire name,
// storage aliases respected. With onlyChanged, fields outside the dirty
// set are skipped, producing the partial-update form. nil values are
// omitted from the item. Attributes are never dropped or truncated to
// dodge the store's item size ceiling; an oversized item is the store's
// failure to report.
func (r *Record) DumpItem(onlyChanged bool) (map[string]types.AttributeValue, error) {
	item := make(map[string]types.AttributeValue)
	for _, name := range r.def.order {
		if onlyChanged && !r.Changed(name) {
			continue
		}
		f := r.def.fields[name]
		v := r.attrs[name]
		if v == nil {
			continue
		}
		av, err := dumpField(f, v)
		if err != nil {
			return nil, err
		}
		if av != nil {
			item[f.WireName()] = av
		}
	}
	return item, nil
}

// Hydrate builds a record from a wire item, loading every declared field
// and establishing a clean point. Wire attributes with no declaration are
// ignored; absent attributes load as nil, defaults do not apply.
func Hydrate(d *Definition, item map[string]types.AttributeValue) (*Record, error) {
	r := &Record{
		def:     d,
		attrs:   make(map[string]any, len(d.order)),
		changes: make(map[string]*change),
	}
	for _, name := range d.order {
		f := d.fields[name]
		av, ok := item[f.WireName()]
		if !ok {
			continue
		}
		v, err := loadField(f, av)
		if err != nil {
			return nil, err
		}
		r.attrs[name] = v
	}
	r.MarkClean()
	return r, nil
}

func dumpField(f *Field, v any) (types.AttributeValue, error) {
	if f.Type == coerce.Serialized {
		m := f.marshaler
		if m == nil {
			m = coerce.JSON{}
		}
		s, err := m.Dump(v)
		if err != nil {
			return nil, &SerializationError{Field: f.Name, Err: err}
		}
		return &types.AttributeValueMemberS{Value: s}, nil
	}
	av, err := coerce.Dump(f.Type, v)
	if err != nil {
		return nil, fieldError(f.Name, err)
	}
	return av, nil
}

func loadField(f *Field, av types.AttributeValue) (any, error) {
	if f.Type == coerce.Serialized {
		if av == nil {
			return nil, nil
		}
		if _, null := av.(*types.AttributeValueMemberNULL); null {
			return nil, nil
		}
		s, ok := av.(*types.AttributeValueMemberS)
		if !ok {
			return nil, fieldError(f.Name, &coerce.CastError{Type: f.Type, Value: av})
		}
		m := f.marshaler
		if m == nil {
			m = coerce.JSON{}
		}
		v, err := m.Load(s.Value)
		if err != nil {
			return nil, &SerializationError{Field: f.Name, Err: err}
		}
		return v, nil
	}
	v, err := coerce.Load(f.Type, av)
	if err != nil {
		return nil, fieldError(f.Name, err)
	}
	return v, nil
}
