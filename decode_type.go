package desub

import "fmt"

// TypeSource resolves a TypeRef to its structural TypeDef. The legacy path
// (resolver.go) and the portable path (portable.go) each implement this so
// the walker below stays dialect-agnostic.
type TypeSource interface {
	Resolve(ref TypeRef) (TypeDef, error)
}

// TypeSourceFactory produces the TypeSource a decode call should use for a
// given scope. The portable dialect needs no scoping (one registry serves
// every pallet); the legacy dialect's Resolver.Get takes a module name, so
// its factory must defer building a TypeSource until the pallet being
// decoded is known (extrinsic.go only learns the pallet mid-decode, after
// reading the pallet-index byte).
type TypeSourceFactory interface {
	// ForModule returns the TypeSource to decode a named pallet's call
	// arguments with.
	ForModule(module string) TypeSource
	// ForExtrinsic returns the TypeSource to decode signed-extension payloads
	// with.
	ForExtrinsic() TypeSource
}

// decodeValue walks def, consuming bytes from c through the C1 primitive
// codec, resolving nested type references through src, and returns the
// decoded Value tree. It keeps no visited set: TypeRegistry.Resolve is a
// plain id lookup (only TypeRegistry.IsVariant tracks visited ids), so
// decoding a recursive type relies on each pass through it consuming input,
// such as a variant tag or a length-prefixed sequence.
func decodeValue(c *Cursor, def TypeDef, src TypeSource) (Value, error) {
	switch def.Kind {
	case KindReference:
		resolved, err := src.Resolve(TypeRef{Name: def.Reference})
		if err != nil {
			return Value{}, err
		}
		return decodeValue(c, resolved, src)

	case KindPrimitive:
		return decodePrimitive(c, def.Primitive)

	case KindCompact:
		return decodeCompact(c, def.Element, src)

	case KindComposite:
		fields, err := decodeFields(c, def.CompositeFields, src)
		if err != nil {
			return Value{}, err
		}
		v := Value{Kind: ValueComposite, Fields: fields}
		if isAccountIDShape(def.CompositeFields, fields) {
			v.AccountHint = true
		}
		return v, nil

	case KindVariant:
		return decodeVariant(c, def, src)

	case KindSequence:
		return decodeSequence(c, def.Element, src)

	case KindArray:
		return decodeArray(c, def.Element, def.ArrayLen, src)

	case KindTuple:
		elems := make([]Value, 0, len(def.TupleElems))
		for _, elemRef := range def.TupleElems {
			elemDef, err := resolveRef(elemRef, src)
			if err != nil {
				return Value{}, err
			}
			v, err := decodeValue(c, elemDef, src)
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, v)
		}
		return Value{Kind: ValueSequence, Elements: elems}, nil

	case KindBitSequence:
		return decodeBitSequence(c)

	default:
		return Value{}, fmt.Errorf("desub: unhandled type kind %d", def.Kind)
	}
}

// resolveRef resolves a TypeRef that may carry either a portable registry id
// or a legacy name, dispatching to whichever the TypeSource understands.
func resolveRef(ref TypeRef, src TypeSource) (TypeDef, error) {
	return src.Resolve(ref)
}

func decodePrimitive(c *Cursor, kind PrimitiveKind) (Value, error) {
	v := Value{Kind: ValuePrimitive, PrimitiveKind: kind}
	switch kind {
	case PrimU8:
		x, err := ReadUint8(c)
		v.U = uint64(x)
		return v, err
	case PrimU16:
		x, err := ReadUint16(c)
		v.U = uint64(x)
		return v, err
	case PrimU32:
		x, err := ReadUint32(c)
		v.U = uint64(x)
		return v, err
	case PrimU64:
		x, err := ReadUint64(c)
		v.U = x
		return v, err
	case PrimU128:
		x, err := ReadUint128(c)
		v.Big = x
		return v, err
	case PrimU256:
		x, err := ReadUint256(c)
		v.Big = x
		return v, err
	case PrimI8:
		x, err := ReadInt8(c)
		v.I = int64(x)
		return v, err
	case PrimI16:
		x, err := ReadInt16(c)
		v.I = int64(x)
		return v, err
	case PrimI32:
		x, err := ReadInt32(c)
		v.I = int64(x)
		return v, err
	case PrimI64:
		x, err := ReadInt64(c)
		v.I = x
		return v, err
	case PrimI128:
		x, err := ReadInt128(c)
		v.BigSigned = x
		return v, err
	case PrimI256:
		x, err := ReadInt256(c)
		v.BigSigned = x
		return v, err
	case PrimBool:
		x, err := ReadBool(c)
		if x {
			v.U = 1
		}
		return v, err
	case PrimChar:
		x, err := ReadUint32(c)
		v.U = uint64(x)
		return v, err
	case PrimStr:
		s, err := ReadString(c)
		v.Str = s
		return v, err
	case PrimBytes:
		b, err := ReadBytesSeq(c)
		v.Bytes = b
		return v, err
	case PrimNull:
		return v, nil
	default:
		return Value{}, fmt.Errorf("desub: unhandled primitive kind %d", kind)
	}
}

// decodeCompact decodes a Compact<T>-wrapped primitive. Only primitive
// numeric elements are valid compact targets (spec.md §4.5 "Compact-wrapped
// primitive fields use the compact codec from C1 rather than fixed-width").
func decodeCompact(c *Cursor, element TypeRef, src TypeSource) (Value, error) {
	def, err := resolveRef(element, src)
	if err != nil {
		return Value{}, err
	}
	if def.Kind != KindPrimitive {
		return Value{}, fmt.Errorf("desub: compact element is not primitive (kind %d)", def.Kind)
	}
	switch def.Primitive {
	case PrimU8, PrimU16, PrimU32, PrimU64:
		n, _, err := DecodeCompactUint64(c)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: ValuePrimitive, PrimitiveKind: def.Primitive, U: n}, nil
	case PrimU128, PrimU256:
		n, _, err := DecodeCompactBigInt(c)
		if err != nil {
			return Value{}, err
		}
		big, _ := fromBigInt(n)
		return Value{Kind: ValuePrimitive, PrimitiveKind: def.Primitive, Big: big}, nil
	default:
		return Value{}, fmt.Errorf("desub: unsupported compact primitive %s", def.Primitive)
	}
}

func decodeFields(c *Cursor, fields []Field, src TypeSource) ([]NamedValue, error) {
	out := make([]NamedValue, 0, len(fields))
	for _, f := range fields {
		def, err := resolveRef(f.Type, src)
		if err != nil {
			return nil, err
		}
		v, err := decodeValue(c, def, src)
		if err != nil {
			return nil, err
		}
		out = append(out, NamedValue{Name: f.Name, Value: v})
	}
	return out, nil
}

func decodeVariant(c *Cursor, def TypeDef, src TypeSource) (Value, error) {
	idx, err := c.ReadByte()
	if err != nil {
		return Value{}, err
	}
	for _, variant := range def.Variants {
		if variant.Index != idx {
			continue
		}
		fields, err := decodeFields(c, variant.Fields, src)
		if err != nil {
			return Value{}, err
		}
		return Value{
			Kind:          ValueVariant,
			VariantName:   variant.Name,
			VariantIndex:  idx,
			VariantFields: fields,
		}, nil
	}
	return Value{}, &InvalidTagError{Context: "variant " + def.VariantName, Byte: idx, Offset: c.Pos() - 1}
}

func decodeSequence(c *Cursor, element TypeRef, src TypeSource) (Value, error) {
	n, err := ReadCompactLen(c)
	if err != nil {
		return Value{}, err
	}
	def, err := resolveRef(element, src)
	if err != nil {
		return Value{}, err
	}
	// A sequence of u8 renders as Bytes, not as a list of Value leaves, per
	// the hex/bytes convention in DESIGN.md (desub-legacy/src/util.rs::as_hex).
	if def.Kind == KindPrimitive && def.Primitive == PrimU8 {
		b, err := c.CloneBytes(n)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: ValuePrimitive, PrimitiveKind: PrimBytes, Bytes: b}, nil
	}
	elems := make([]Value, 0, n)
	for i := 0; i < n; i++ {
		v, err := decodeValue(c, def, src)
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, v)
	}
	return Value{Kind: ValueSequence, Elements: elems}, nil
}

func decodeArray(c *Cursor, element TypeRef, length uint64, src TypeSource) (Value, error) {
	def, err := resolveRef(element, src)
	if err != nil {
		return Value{}, err
	}
	if def.Kind == KindPrimitive && def.Primitive == PrimU8 {
		b, err := c.CloneBytes(int(length))
		if err != nil {
			return Value{}, err
		}
		v := Value{Kind: ValuePrimitive, PrimitiveKind: PrimBytes, Bytes: b}
		return v, nil
	}
	elems := make([]Value, 0, length)
	for i := uint64(0); i < length; i++ {
		v, err := decodeValue(c, def, src)
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, v)
	}
	return Value{Kind: ValueSequence, Elements: elems}, nil
}

// decodeBitSequence decodes a BitVec<u8, Lsb0>-shaped value: a compact
// bit-length prefix followed by ceil(len/8) packed bytes.
func decodeBitSequence(c *Cursor) (Value, error) {
	bitLen, _, err := DecodeCompactUint64(c)
	if err != nil {
		return Value{}, err
	}
	byteLen := int((bitLen + 7) / 8)
	data, err := c.CloneBytes(byteLen)
	if err != nil {
		return Value{}, err
	}
	return Value{Kind: ValueBitSequence, BitLen: bitLen, BitData: data}, nil
}

// isAccountIDShape reports whether a decoded Composite looks like a 32-byte
// AccountId: a single Bytes field of length 32, or a [u8; 32] array
// flattened to Bytes. This hint lets C9 render it as ss58 without
// re-inspecting the type model (spec.md §9).
func isAccountIDShape(fields []Field, values []NamedValue) bool {
	if len(values) != 1 {
		return false
	}
	v := values[0].Value
	return v.Kind == ValuePrimitive && v.PrimitiveKind == PrimBytes && len(v.Bytes) == 32
}
