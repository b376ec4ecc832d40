package desub

// decodePortableMetadata parses V14+ metadata: a self-describing type
// registry followed by pallets that reference it by id (spec.md §3, §4.4).
// Wire layout (scale-info / frame-metadata, in field-declaration order):
//
//	PortableRegistry { types: Vec<PortableType{ id: Compact<u32>, ty: Type }> }
//	pallets: Vec<PalletMetadata{
//	    name: String,
//	    storage: Option<PalletStorageMetadata{ prefix: String, entries: Vec<StorageEntryMetadata> }>,
//	    calls: Option<PalletCallMetadata{ ty: Compact<u32> }>,
//	    event: Option<PalletEventMetadata{ ty: Compact<u32> }>,
//	    constants: Vec<PalletConstantMetadata{ name, ty: Compact<u32>, value: Vec<u8>, docs: Vec<String> }>,
//	    error: Option<PalletErrorMetadata{ ty: Compact<u32> }>,
//	    index: u8,
//	}>
//	extrinsic: ExtrinsicMetadata{ ty: Compact<u32>, version: u8, signed_extensions: Vec<SignedExtensionMetadata{ identifier: String, ty: Compact<u32>, additional_signed: Compact<u32> }> }
//	ty: Compact<u32> // Runtime type id (V14 only; unused here)
func decodePortableMetadata(version uint8, c *Cursor) (*Metadata, error) {
	registry, err := decodePortableRegistry(c)
	if err != nil {
		return nil, err
	}

	n, err := ReadCompactLen(c)
	if err != nil {
		return nil, err
	}
	pallets := make(map[uint8]*Pallet, n)
	for i := 0; i < n; i++ {
		pallet, err := decodePortablePallet(c, registry)
		if err != nil {
			return nil, err
		}
		pallets[pallet.Index] = pallet
	}

	extrinsic, err := decodePortableExtrinsicMetadata(c, registry)
	if err != nil {
		return nil, err
	}

	// Trailing Runtime type id (V14 only); V15 drops it. Tolerate EOF so a
	// caller handing us a V15 blob under the V14 codepath (should not
	// normally happen, version dispatch lives in DecodeMetadata) still
	// parses cleanly instead of erroring on a field it lacks.
	if version == 14 {
		if _, err := readCompactUint32(c); err != nil && c.Remaining() != 0 {
			return nil, err
		}
	}

	return &Metadata{
		Version:   version,
		Extrinsic: extrinsic,
		Pallets:   pallets,
		Registry:  registry,
	}, nil
}

func decodePortableRegistry(c *Cursor) (*TypeRegistry, error) {
	n, err := ReadCompactLen(c)
	if err != nil {
		return nil, err
	}
	types := make([]Type, 0, n)
	for i := 0; i < n; i++ {
		id, err := readCompactUint32(c)
		if err != nil {
			return nil, err
		}
		path, err := readStringSeq(c)
		if err != nil {
			return nil, err
		}
		// type_params: Vec<TypeParameter{ name: String, ty: Option<Compact<u32>> }>,
		// skipped over: they describe generic instantiation (e.g. the `T` in
		// `Vec<T>`'s own scale-info record) which decodeValue never needs,
		// since by the time we resolve a TypeRef its generic params are
		// already baked into the referenced type's own TypeDef.
		paramCount, err := ReadCompactLen(c)
		if err != nil {
			return nil, err
		}
		for j := 0; j < paramCount; j++ {
			if _, err := ReadString(c); err != nil {
				return nil, err
			}
			hasTy, err := ReadOptionTag(c)
			if err != nil {
				return nil, err
			}
			if hasTy == OptionSome {
				if _, err := readCompactUint32(c); err != nil {
					return nil, err
				}
			}
		}

		def, err := decodeTypeDef(c)
		if err != nil {
			return nil, err
		}
		if _, err := readStringSeq(c); err != nil { // docs
			return nil, err
		}

		types = append(types, Type{ID: id, Path: path, Def: def})
	}
	return NewTypeRegistry(types), nil
}

// portableTypeDefTag values match scale_info::TypeDef's variant discriminant
// order exactly; this ordering is load-bearing wire format, not a stylistic
// choice.
const (
	portableTypeDefComposite = iota
	portableTypeDefVariant
	portableTypeDefSequence
	portableTypeDefArray
	portableTypeDefTuple
	portableTypeDefPrimitive
	portableTypeDefCompact
	portableTypeDefBitSequence
)

func decodeTypeDef(c *Cursor) (TypeDef, error) {
	tag, err := c.ReadByte()
	if err != nil {
		return TypeDef{}, err
	}
	switch tag {
	case portableTypeDefComposite:
		fields, err := decodePortableFields(c)
		if err != nil {
			return TypeDef{}, err
		}
		return TypeDef{Kind: KindComposite, CompositeFields: fields}, nil

	case portableTypeDefVariant:
		variants, err := decodePortableVariants(c)
		if err != nil {
			return TypeDef{}, err
		}
		return TypeDef{Kind: KindVariant, Variants: variants}, nil

	case portableTypeDefSequence:
		id, err := readCompactUint32(c)
		if err != nil {
			return TypeDef{}, err
		}
		return TypeDef{Kind: KindSequence, Element: TypeRef{RegistryID: id}}, nil

	case portableTypeDefArray:
		length, err := ReadUint32(c) // plain fixed-width u32, not compact
		if err != nil {
			return TypeDef{}, err
		}
		id, err := readCompactUint32(c)
		if err != nil {
			return TypeDef{}, err
		}
		return TypeDef{Kind: KindArray, ArrayLen: uint64(length), Element: TypeRef{RegistryID: id}}, nil

	case portableTypeDefTuple:
		n, err := ReadCompactLen(c)
		if err != nil {
			return TypeDef{}, err
		}
		elems := make([]TypeRef, 0, n)
		for i := 0; i < n; i++ {
			id, err := readCompactUint32(c)
			if err != nil {
				return TypeDef{}, err
			}
			elems = append(elems, TypeRef{RegistryID: id})
		}
		return TypeDef{Kind: KindTuple, TupleElems: elems}, nil

	case portableTypeDefPrimitive:
		prim, err := decodePortablePrimitiveTag(c)
		if err != nil {
			return TypeDef{}, err
		}
		return TypeDef{Kind: KindPrimitive, Primitive: prim}, nil

	case portableTypeDefCompact:
		id, err := readCompactUint32(c)
		if err != nil {
			return TypeDef{}, err
		}
		return TypeDef{Kind: KindCompact, Element: TypeRef{RegistryID: id}}, nil

	case portableTypeDefBitSequence:
		// bit_store_type, bit_order_type: both Compact<u32> registry ids. The
		// actual storage/order types are irrelevant to decode (the wire shape
		// of a BitSequence value is fixed: compact bit-length + packed
		// bytes), so we read and discard them purely to stay framed.
		if _, err := readCompactUint32(c); err != nil {
			return TypeDef{}, err
		}
		if _, err := readCompactUint32(c); err != nil {
			return TypeDef{}, err
		}
		return TypeDef{Kind: KindBitSequence}, nil

	default:
		return TypeDef{}, &InvalidTagError{Context: "scale-info TypeDef", Byte: tag, Offset: c.Pos() - 1}
	}
}

// portablePrimitiveKinds match scale_info::TypeDefPrimitive's discriminant
// order. Unlike legacy_types.go's primitiveNames map (keyed by name),
// scale-info's Primitive has no Bytes or Null tag of its own: those two
// PrimitiveKinds arise only from decodeValue's U8-sequence/array collapsing
// (Bytes) and from legacy type names ("Bytes", "Null").
var portablePrimitiveKinds = []PrimitiveKind{
	PrimBool, PrimChar, PrimStr,
	PrimU8, PrimU16, PrimU32, PrimU64, PrimU128, PrimU256,
	PrimI8, PrimI16, PrimI32, PrimI64, PrimI128, PrimI256,
}

func decodePortablePrimitiveTag(c *Cursor) (PrimitiveKind, error) {
	tag, err := c.ReadByte()
	if err != nil {
		return 0, err
	}
	if int(tag) < len(portablePrimitiveKinds) {
		return portablePrimitiveKinds[tag], nil
	}
	return 0, &InvalidTagError{Context: "scale-info Primitive", Byte: tag, Offset: c.Pos() - 1}
}

func decodePortableFields(c *Cursor) ([]Field, error) {
	n, err := ReadCompactLen(c)
	if err != nil {
		return nil, err
	}
	fields := make([]Field, 0, n)
	for i := 0; i < n; i++ {
		hasName, err := ReadOptionTag(c)
		if err != nil {
			return nil, err
		}
		var name string
		if hasName == OptionSome {
			name, err = ReadString(c)
			if err != nil {
				return nil, err
			}
		}
		typeID, err := readCompactUint32(c)
		if err != nil {
			return nil, err
		}
		// type_name: Option<String>, the source-level type name as written
		// (e.g. "Balance" vs the resolved primitive) -- display-only, kept
		// out of Field since decode never consults it.
		hasTypeName, err := ReadOptionTag(c)
		if err != nil {
			return nil, err
		}
		if hasTypeName == OptionSome {
			if _, err := ReadString(c); err != nil {
				return nil, err
			}
		}
		docs, err := readStringSeq(c)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Name: name, Type: TypeRef{RegistryID: typeID}, Docs: docs})
	}
	return fields, nil
}

func decodePortableVariants(c *Cursor) ([]Variant, error) {
	n, err := ReadCompactLen(c)
	if err != nil {
		return nil, err
	}
	variants := make([]Variant, 0, n)
	for i := 0; i < n; i++ {
		name, err := ReadString(c)
		if err != nil {
			return nil, err
		}
		fields, err := decodePortableFields(c)
		if err != nil {
			return nil, err
		}
		index, err := c.ReadByte()
		if err != nil {
			return nil, err
		}
		docs, err := readStringSeq(c)
		if err != nil {
			return nil, err
		}
		variants = append(variants, Variant{Index: index, Name: name, Fields: fields, Docs: docs})
	}
	return variants, nil
}

func decodePortablePallet(c *Cursor, registry *TypeRegistry) (*Pallet, error) {
	name, err := ReadString(c)
	if err != nil {
		return nil, err
	}

	var storage *StorageGroup
	hasStorage, err := ReadOptionTag(c)
	if err != nil {
		return nil, err
	}
	if hasStorage == OptionSome {
		storage, err = decodePortableStorage(c)
		if err != nil {
			return nil, err
		}
	}

	var calls *CallGroup
	hasCalls, err := ReadOptionTag(c)
	if err != nil {
		return nil, err
	}
	if hasCalls == OptionSome {
		typeID, err := readCompactUint32(c)
		if err != nil {
			return nil, err
		}
		calls, err = buildPortableCallGroup(registry, typeID)
		if err != nil {
			return nil, err
		}
	}

	// event: Option<Compact<u32>>, wrapped the same shape as calls but not
	// needed for extrinsic decode.
	hasEvent, err := ReadOptionTag(c)
	if err != nil {
		return nil, err
	}
	if hasEvent == OptionSome {
		if _, err := readCompactUint32(c); err != nil {
			return nil, err
		}
	}

	constCount, err := ReadCompactLen(c)
	if err != nil {
		return nil, err
	}
	for i := 0; i < constCount; i++ {
		if _, err := ReadString(c); err != nil { // name
			return nil, err
		}
		if _, err := readCompactUint32(c); err != nil { // ty
			return nil, err
		}
		if _, err := ReadBytesSeq(c); err != nil { // value
			return nil, err
		}
		if _, err := readStringSeq(c); err != nil { // docs
			return nil, err
		}
	}

	hasError, err := ReadOptionTag(c)
	if err != nil {
		return nil, err
	}
	if hasError == OptionSome {
		if _, err := readCompactUint32(c); err != nil {
			return nil, err
		}
	}

	index, err := c.ReadByte()
	if err != nil {
		return nil, err
	}

	return &Pallet{Index: index, Name: name, Calls: calls, Storage: storage}, nil
}

func decodePortableStorage(c *Cursor) (*StorageGroup, error) {
	prefix, err := ReadString(c)
	if err != nil {
		return nil, err
	}
	n, err := ReadCompactLen(c)
	if err != nil {
		return nil, err
	}
	entries := make([]StorageEntry, 0, n)
	for i := 0; i < n; i++ {
		name, err := ReadString(c)
		if err != nil {
			return nil, err
		}
		if _, err := c.ReadByte(); err != nil { // modifier
			return nil, err
		}
		kind, err := c.ReadByte()
		if err != nil {
			return nil, err
		}
		var hashers []string
		switch kind {
		case 0: // Plain(Compact<u32>)
			if _, err := readCompactUint32(c); err != nil {
				return nil, err
			}
		case 1: // Map { hashers: Vec<StorageHasher>, key: Compact<u32>, value: Compact<u32> }
			hcount, err := ReadCompactLen(c)
			if err != nil {
				return nil, err
			}
			hashers = make([]string, 0, hcount)
			for j := 0; j < hcount; j++ {
				h, err := decodePortableHasher(c)
				if err != nil {
					return nil, err
				}
				hashers = append(hashers, h)
			}
			if _, err := readCompactUint32(c); err != nil { // key
				return nil, err
			}
			if _, err := readCompactUint32(c); err != nil { // value
				return nil, err
			}
		default:
			return nil, &InvalidTagError{Context: "storage entry type (v14)", Byte: kind, Offset: c.Pos() - 1}
		}

		if _, err := ReadBytesSeq(c); err != nil { // default value
			return nil, err
		}
		if _, err := readStringSeq(c); err != nil { // docs
			return nil, err
		}

		entries = append(entries, StorageEntry{Name: name, Hashers: hashers})
	}
	return &StorageGroup{Prefix: prefix, Entries: entries}, nil
}

var portableHasherNames = []string{"Blake2_128", "Blake2_256", "Blake2_128Concat", "Twox128", "Twox256", "Twox64Concat", "Identity"}

func decodePortableHasher(c *Cursor) (string, error) {
	b, err := c.ReadByte()
	if err != nil {
		return "", err
	}
	if int(b) < len(portableHasherNames) {
		return portableHasherNames[b], nil
	}
	return "", &InvalidTagError{Context: "storage hasher (v14)", Byte: b, Offset: c.Pos() - 1}
}

// buildPortableCallGroup resolves a pallet's call-enum registry id into a
// CallGroup, requiring the referenced type to be a Variant (spec.md §4.4's
// ExpectedVariantType testable property) and building the dense
// wire-index -> slice-index table the portable dialect needs (spec.md §9).
func buildPortableCallGroup(registry *TypeRegistry, typeID uint32) (*CallGroup, error) {
	t, ok := registry.Lookup(typeID)
	if !ok {
		return nil, &TypeNotFoundError{ID: typeID}
	}
	if t.Def.Kind != KindVariant {
		return nil, &ExpectedVariantTypeError{TypeID: typeID, Got: t.Def.Kind}
	}
	return &CallGroup{
		RegistryType: typeID,
		Variants:     t.Def.Variants,
		VariantIndex: buildVariantIndex(t.Def.Variants),
	}, nil
}

func decodePortableExtrinsicMetadata(c *Cursor, registry *TypeRegistry) (ExtrinsicMetadata, error) {
	// ty: Compact<u32>, the "generic extrinsic" envelope type id -- not
	// consulted directly since extrinsic.go decodes the envelope structurally
	// (spec.md §4.5), but must be read to stay framed.
	if _, err := readCompactUint32(c); err != nil {
		return ExtrinsicMetadata{}, err
	}
	version, err := c.ReadByte()
	if err != nil {
		return ExtrinsicMetadata{}, err
	}

	n, err := ReadCompactLen(c)
	if err != nil {
		return ExtrinsicMetadata{}, err
	}
	exts := make([]SignedExtensionMetadata, 0, n)
	for i := 0; i < n; i++ {
		identifier, err := ReadString(c)
		if err != nil {
			return ExtrinsicMetadata{}, err
		}
		typeID, err := readCompactUint32(c)
		if err != nil {
			return ExtrinsicMetadata{}, err
		}
		// additional_signed: Compact<u32>, the type of data folded into the
		// signing payload but never transmitted on the wire -- irrelevant to
		// decoding a received extrinsic, read only to stay framed.
		if _, err := readCompactUint32(c); err != nil {
			return ExtrinsicMetadata{}, err
		}
		exts = append(exts, SignedExtensionMetadata{Name: identifier, Type: TypeRef{RegistryID: typeID}})
	}
	_ = registry
	return ExtrinsicMetadata{Version: version, SignedExtensions: exts}, nil
}
