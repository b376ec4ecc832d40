package desub

// TypeRegistry is the self-describing, interned type vector carried inside
// V14+ metadata (spec.md §3, §4.4). Types are addressed by id; ids are
// assigned by the runtime's `scale-info` registry and are stable for the
// lifetime of one metadata blob.
type TypeRegistry struct {
	byID map[uint32]Type
}

// NewTypeRegistry builds a registry from a flat list of Types.
func NewTypeRegistry(types []Type) *TypeRegistry {
	r := &TypeRegistry{byID: make(map[uint32]Type, len(types))}
	for _, t := range types {
		r.byID[t.ID] = t
	}
	return r
}

// Lookup returns the Type registered at id.
func (r *TypeRegistry) Lookup(id uint32) (Type, bool) {
	t, ok := r.byID[id]
	return t, ok
}

// Resolve implements TypeSource for the portable dialect: a TypeRef here
// always carries a RegistryID, never a Name.
func (r *TypeRegistry) Resolve(ref TypeRef) (TypeDef, error) {
	t, ok := r.byID[ref.RegistryID]
	if !ok {
		return TypeDef{}, &TypeNotFoundError{ID: ref.RegistryID}
	}
	return t.Def, nil
}

// ForModule and ForExtrinsic implement TypeSourceFactory: the portable
// dialect needs no per-pallet scoping, since every type is addressed by a
// chain-wide registry id regardless of which pallet references it.
func (r *TypeRegistry) ForModule(_ string) TypeSource  { return r }
func (r *TypeRegistry) ForExtrinsic() TypeSource       { return r }

// IsVariant reports whether the type at id is, or transparently wraps
// (through a single-field Composite, as scale-info sometimes emits for
// newtype wrappers), a Variant type. visited guards against the cyclic type
// graphs spec.md §9 calls out (e.g. linked-list system types) by tracking
// ids already walked in this call.
func (r *TypeRegistry) IsVariant(id uint32, visited map[uint32]bool) (bool, error) {
	if visited == nil {
		visited = make(map[uint32]bool)
	}
	if visited[id] {
		return false, nil
	}
	visited[id] = true

	t, ok := r.byID[id]
	if !ok {
		return false, &TypeNotFoundError{ID: id}
	}
	switch t.Def.Kind {
	case KindVariant:
		return true, nil
	case KindComposite:
		if len(t.Def.CompositeFields) == 1 && t.Def.CompositeFields[0].Type.RegistryID != id {
			return r.IsVariant(t.Def.CompositeFields[0].Type.RegistryID, visited)
		}
	}
	return false, nil
}
