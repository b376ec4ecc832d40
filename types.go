package desub

// PrimitiveKind enumerates the primitive leaf shapes of TypeDefPrimitive.
type PrimitiveKind uint8

const (
	PrimU8 PrimitiveKind = iota
	PrimU16
	PrimU32
	PrimU64
	PrimU128
	PrimU256
	PrimI8
	PrimI16
	PrimI32
	PrimI64
	PrimI128
	PrimI256
	PrimBool
	PrimStr
	PrimChar
	PrimBytes
	PrimNull
)

func (k PrimitiveKind) String() string {
	names := [...]string{
		"U8", "U16", "U32", "U64", "U128", "U256",
		"I8", "I16", "I32", "I64", "I128", "I256",
		"Bool", "Str", "Char", "Bytes", "Null",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// TypeKind tags which field of TypeDef is populated. This is Go's answer to
// the closed tagged union spec.md §4.2 describes (Rust's scale_info::TypeDef
// enum); see DESIGN.md.
type TypeKind uint8

const (
	KindPrimitive TypeKind = iota
	KindComposite
	KindVariant
	KindSequence
	KindArray
	KindTuple
	KindCompact
	KindBitSequence
	// KindReference is legacy-only: an as-yet-unresolved type name.
	KindReference
)

// Field is one member of a Composite type or of a Variant's payload.
type Field struct {
	// Name is empty for unnamed (tuple-style) struct/variant fields.
	Name string
	Type TypeRef
	Docs []string
}

// Variant is one arm of a Variant (enum) type.
type Variant struct {
	Index  uint8
	Name   string
	Fields []Field
	Docs   []string
}

// TypeRef points at a type, either by portable-registry id (V14+) or by
// legacy string name. Exactly one of the two is meaningful for a given
// metadata dialect; RegistryID is the zero value (0) when unused because
// portable registries also validly use id 0, so portable lookups always go
// through the owning TypeRegistry rather than a sentinel here.
type TypeRef struct {
	Name       string
	RegistryID uint32
}

// TypeDef is the structural description of a single type: primitive,
// composite, variant, sequence, array, tuple, compact-wrapped, or bit
// sequence (spec.md §4.2), plus the legacy-only unresolved Reference.
type TypeDef struct {
	Kind TypeKind

	Primitive PrimitiveKind // KindPrimitive

	CompositeName   string  // KindComposite
	CompositeFields []Field // KindComposite

	VariantName string    // KindVariant
	Variants    []Variant // KindVariant

	Element TypeRef // KindSequence, KindArray, KindCompact (inner primitive)
	ArrayLen uint64 // KindArray

	TupleElems []TypeRef // KindTuple

	// Reference is the legacy-only unresolved type name (KindReference).
	Reference string
}

// Type is a single entry of a portable (V14+) type registry: an id-addressed
// node plus its structural definition, per spec.md §4.3's TypeRegistry.
type Type struct {
	ID   uint32
	Path []string
	Def  TypeDef
}
