package model

// Registry holds definitions by type name, so consumers that see only a
// wire item can dispatch on its discriminator attribute. Hierarchies
// register every concrete subtype.
type Registry struct {
	order  []string
	byName map[string]*Definition
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*Definition),
	}
}

// Register adds a definition, replacing any prior registration of the
// same name. This should be called during init alongside Define.
func (r *Registry) Register(d *Definition) {
	if _, exists := r.byName[d.Name()]; !exists {
		r.order = append(r.order, d.Name())
	}
	r.byName[d.Name()] = d
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (*Definition, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// All returns registered definitions in registration order.
func (r *Registry) All() []*Definition {
	defs := make([]*Definition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.byName[name])
	}
	return defs
}
