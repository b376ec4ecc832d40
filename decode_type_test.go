package desub

import (
	"errors"
	"testing"
)

var errMapTypeSourceNotFound = errors.New("desub test: type not found in mapTypeSource")

// mapTypeSource is a TypeSource test double resolving TypeRef.Name directly
// against a fixed table, so decode_type.go's walker can be driven without a
// full metadata blob.
type mapTypeSource map[string]TypeDef

func (m mapTypeSource) Resolve(ref TypeRef) (TypeDef, error) {
	def, ok := m[ref.Name]
	if !ok {
		return TypeDef{}, errMapTypeSourceNotFound
	}
	return def, nil
}

func TestDecodeValuePrimitive(t *testing.T) {
	c := NewCursor([]byte{0x2a, 0x00, 0x00, 0x00})
	v, err := decodeValue(c, TypeDef{Kind: KindPrimitive, Primitive: PrimU32}, mapTypeSource{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind != ValuePrimitive || v.U != 42 {
		t.Fatalf("got %+v, want U32(42)", v)
	}
}

func TestDecodeValueReferenceIndirectsThroughSource(t *testing.T) {
	src := mapTypeSource{"Balance": {Kind: KindPrimitive, Primitive: PrimU64}}
	c := NewCursor([]byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00})
	v, err := decodeValue(c, TypeDef{Kind: KindReference, Reference: "Balance"}, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind != ValuePrimitive || v.PrimitiveKind != PrimU64 || v.U != 1 {
		t.Fatalf("got %+v, want U64(1)", v)
	}
}

func TestDecodeValueReferenceUnresolved(t *testing.T) {
	c := NewCursor([]byte{0x00})
	_, err := decodeValue(c, TypeDef{Kind: KindReference, Reference: "Nope"}, mapTypeSource{})
	if !errors.Is(err, errMapTypeSourceNotFound) {
		t.Fatalf("got %v, want the source's not-found error to propagate unwrapped", err)
	}
}

func TestDecodeValueComposite(t *testing.T) {
	def := TypeDef{
		Kind: KindComposite,
		CompositeFields: []Field{
			{Name: "a", Type: TypeRef{Name: "U8"}},
			{Name: "b", Type: TypeRef{Name: "U32"}},
		},
	}
	src := mapTypeSource{
		"U8":  {Kind: KindPrimitive, Primitive: PrimU8},
		"U32": {Kind: KindPrimitive, Primitive: PrimU32},
	}
	c := NewCursor([]byte{0x07, 0x09, 0x00, 0x00, 0x00})
	v, err := decodeValue(c, def, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind != ValueComposite || len(v.Fields) != 2 {
		t.Fatalf("got %+v", v)
	}
	// Declared field order must survive, not be re-sorted.
	if v.Fields[0].Name != "a" || v.Fields[0].Value.U != 7 {
		t.Fatalf("field 0 = %+v, want a=7", v.Fields[0])
	}
	if v.Fields[1].Name != "b" || v.Fields[1].Value.U != 9 {
		t.Fatalf("field 1 = %+v, want b=9", v.Fields[1])
	}
}

func TestDecodeValueCompositeAccountIDShape(t *testing.T) {
	def := TypeDef{
		Kind: KindComposite,
		CompositeFields: []Field{
			{Name: "id", Type: TypeRef{Name: "AccountId"}},
		},
	}
	account := make([]byte, 32)
	account[0] = 0xaa
	src := mapTypeSource{"AccountId": {Kind: KindArray, Element: TypeRef{Name: "U8"}, ArrayLen: 32},
		"U8": {Kind: KindPrimitive, Primitive: PrimU8}}
	c := NewCursor(account)
	v, err := decodeValue(c, def, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.AccountHint {
		t.Fatal("expected a single 32-byte Bytes field to be flagged AccountHint")
	}
}

func TestDecodeValueVariantMultipleArms(t *testing.T) {
	def := TypeDef{
		Kind: KindVariant,
		Variants: []Variant{
			{Index: 0, Name: "None"},
			{Index: 1, Name: "Some", Fields: []Field{{Name: "", Type: TypeRef{Name: "U32"}}}},
		},
	}
	src := mapTypeSource{"U32": {Kind: KindPrimitive, Primitive: PrimU32}}

	c := NewCursor([]byte{0x00})
	v, err := decodeValue(c, def, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind != ValueVariant || v.VariantName != "None" || v.VariantIndex != 0 {
		t.Fatalf("got %+v, want None/0", v)
	}

	c = NewCursor([]byte{0x01, 0x2a, 0x00, 0x00, 0x00})
	v, err = decodeValue(c, def, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind != ValueVariant || v.VariantName != "Some" || len(v.VariantFields) != 1 || v.VariantFields[0].Value.U != 42 {
		t.Fatalf("got %+v, want Some(42)", v)
	}
}

func TestDecodeValueVariantUnknownTag(t *testing.T) {
	def := TypeDef{Kind: KindVariant, VariantName: "MyEnum", Variants: []Variant{{Index: 0, Name: "A"}}}
	c := NewCursor([]byte{0x09})
	_, err := decodeValue(c, def, mapTypeSource{})
	var invalidTag *InvalidTagError
	if !errors.As(err, &invalidTag) {
		t.Fatalf("got %v (%T), want *InvalidTagError", err, err)
	}
	if invalidTag.Byte != 0x09 {
		t.Fatalf("Byte = %#x, want 0x09", invalidTag.Byte)
	}
}

func TestDecodeValueSequenceOfU8RendersAsBytes(t *testing.T) {
	def := TypeDef{Kind: KindSequence, Element: TypeRef{Name: "U8"}}
	src := mapTypeSource{"U8": {Kind: KindPrimitive, Primitive: PrimU8}}
	c := NewCursor([]byte{0x0c, 0xde, 0xad, 0xbe}) // compact len=3, then 3 bytes
	v, err := decodeValue(c, def, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind != ValuePrimitive || v.PrimitiveKind != PrimBytes {
		t.Fatalf("got %+v, want a Bytes primitive", v)
	}
	if string(v.Bytes) != "\xde\xad\xbe" {
		t.Fatalf("bytes = %x", v.Bytes)
	}
}

func TestDecodeValueSequenceOfNonU8(t *testing.T) {
	def := TypeDef{Kind: KindSequence, Element: TypeRef{Name: "U16"}}
	src := mapTypeSource{"U16": {Kind: KindPrimitive, Primitive: PrimU16}}
	c := NewCursor([]byte{0x08, 0x01, 0x00, 0x02, 0x00}) // compact len=2, then two u16
	v, err := decodeValue(c, def, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind != ValueSequence || len(v.Elements) != 2 {
		t.Fatalf("got %+v", v)
	}
	if v.Elements[0].U != 1 || v.Elements[1].U != 2 {
		t.Fatalf("elements = %+v", v.Elements)
	}
}

func TestDecodeValueArray(t *testing.T) {
	def := TypeDef{Kind: KindArray, Element: TypeRef{Name: "U16"}, ArrayLen: 2}
	src := mapTypeSource{"U16": {Kind: KindPrimitive, Primitive: PrimU16}}
	c := NewCursor([]byte{0x05, 0x00, 0x06, 0x00})
	v, err := decodeValue(c, def, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind != ValueSequence || len(v.Elements) != 2 || v.Elements[0].U != 5 || v.Elements[1].U != 6 {
		t.Fatalf("got %+v", v)
	}
}

func TestDecodeValueArrayOfU8RendersAsBytes(t *testing.T) {
	def := TypeDef{Kind: KindArray, Element: TypeRef{Name: "U8"}, ArrayLen: 4}
	src := mapTypeSource{"U8": {Kind: KindPrimitive, Primitive: PrimU8}}
	c := NewCursor([]byte{0xde, 0xad, 0xbe, 0xef})
	v, err := decodeValue(c, def, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind != ValuePrimitive || v.PrimitiveKind != PrimBytes || len(v.Bytes) != 4 {
		t.Fatalf("got %+v, want a 4-byte Bytes primitive", v)
	}
}

func TestDecodeValueTuple(t *testing.T) {
	def := TypeDef{Kind: KindTuple, TupleElems: []TypeRef{{Name: "U8"}, {Name: "U32"}}}
	src := mapTypeSource{
		"U8":  {Kind: KindPrimitive, Primitive: PrimU8},
		"U32": {Kind: KindPrimitive, Primitive: PrimU32},
	}
	c := NewCursor([]byte{0x03, 0x07, 0x00, 0x00, 0x00})
	v, err := decodeValue(c, def, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind != ValueSequence || len(v.Elements) != 2 || v.Elements[0].U != 3 || v.Elements[1].U != 7 {
		t.Fatalf("got %+v", v)
	}
}

func TestDecodeValueCompactU128(t *testing.T) {
	def := TypeDef{Kind: KindCompact, Element: TypeRef{Name: "U128"}}
	src := mapTypeSource{"U128": {Kind: KindPrimitive, Primitive: PrimU128}}
	var buf []byte
	buf = EncodeCompactUint64(buf, 12345)
	c := NewCursor(buf)
	v, err := decodeValue(c, def, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind != ValuePrimitive || v.PrimitiveKind != PrimU128 || v.Big == nil || v.Big.Uint64() != 12345 {
		t.Fatalf("got %+v, want U128(12345)", v)
	}
}

func TestDecodeValueCompactRejectsNonPrimitiveElement(t *testing.T) {
	def := TypeDef{Kind: KindCompact, Element: TypeRef{Name: "Weird"}}
	src := mapTypeSource{"Weird": {Kind: KindComposite}}
	c := NewCursor([]byte{0x00})
	if _, err := decodeValue(c, def, src); err == nil {
		t.Fatal("expected an error for a compact-wrapped non-primitive element")
	}
}

func TestDecodeValueBitSequence(t *testing.T) {
	// bitLen=10 (compact), ceil(10/8)=2 packed bytes.
	var buf []byte
	buf = EncodeCompactUint64(buf, 10)
	buf = append(buf, 0b10110011, 0b00000010)
	c := NewCursor(buf)
	v, err := decodeValue(c, TypeDef{Kind: KindBitSequence}, mapTypeSource{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind != ValueBitSequence || v.BitLen != 10 || len(v.BitData) != 2 {
		t.Fatalf("got %+v", v)
	}
}

// TestCallGroupVariantIndexRobustness reproduces spec.md testable property
// 5: given call variant indices {0,2,7}, a call index of 3 is UnknownCall
// and indices 0/2/7 each dispatch to their own variant, not an off-by-one
// neighbour, since wire indices are not assumed dense or contiguous.
func TestCallGroupVariantIndexRobustness(t *testing.T) {
	variants := []Variant{
		{Index: 0, Name: "foo"},
		{Index: 2, Name: "bar"},
		{Index: 7, Name: "baz"},
	}
	group := &CallGroup{Variants: variants, VariantIndex: buildVariantIndex(variants)}

	for _, tc := range []struct {
		index    uint8
		wantOK   bool
		wantName string
	}{
		{0, true, "foo"},
		{2, true, "bar"},
		{7, true, "baz"},
		{3, false, ""},
		{1, false, ""},
		{8, false, ""},
	} {
		v, ok := group.LookupCall(tc.index)
		if ok != tc.wantOK {
			t.Fatalf("index %d: ok = %v, want %v", tc.index, ok, tc.wantOK)
		}
		if ok && v.Name != tc.wantName {
			t.Fatalf("index %d: name = %s, want %s", tc.index, v.Name, tc.wantName)
		}
	}
}

// buildV14MetadataNonContiguousCalls builds a V14 blob whose single pallet's
// call variant has indices {0,2,7}, each with zero fields, to drive
// testable property 5 end to end through DecodeExtrinsic rather than just
// against CallGroup directly.
func buildV14MetadataNonContiguousCalls(t *testing.T) []byte {
	t.Helper()
	var buf []byte
	appendCompact := func(v uint64) { buf = EncodeCompactUint64(buf, v) }
	appendString := func(s string) {
		appendCompact(uint64(len(s)))
		buf = append(buf, s...)
	}

	buf = append(buf, 'm', 'e', 't', 'a', 14)

	// PortableRegistry: 1 type -- id 0 is the calls Variant.
	appendCompact(1)
	appendCompact(0) // id 0
	appendCompact(0) // path empty
	appendCompact(0) // type_params empty
	buf = append(buf, portableTypeDefVariant)
	appendCompact(3) // 3 variants
	for _, nv := range []struct {
		name  string
		index byte
	}{{"foo", 0}, {"bar", 2}, {"baz", 7}} {
		appendString(nv.name)
		appendCompact(0) // 0 fields
		buf = append(buf, nv.index)
		appendCompact(0) // variant docs
	}
	appendCompact(0) // registry docs for the variant type itself

	// Pallets: 1.
	appendCompact(1)
	appendString("Balances")
	buf = append(buf, 0x00) // storage: None
	buf = append(buf, 0x01) // calls: Some
	appendCompact(0)        // calls.ty = registry id 0
	buf = append(buf, 0x00) // event: None
	appendCompact(0)        // constants: empty
	buf = append(buf, 0x00) // error: None
	buf = append(buf, 0)    // pallet index

	// ExtrinsicMetadata: no signed extensions.
	appendCompact(0)
	buf = append(buf, 4)
	appendCompact(0)

	appendCompact(0) // trailing Runtime type id

	return buf
}

func buildUnsignedExtrinsicCallIndex(callIndex uint8) []byte {
	body := []byte{0x04, 0x00, callIndex} // version (unsigned), pallet 0, call index
	var out []byte
	out = EncodeCompactUint64(out, uint64(len(body)))
	return append(out, body...)
}

func TestDecodeExtrinsicNonContiguousCallIndices(t *testing.T) {
	data := buildV14MetadataNonContiguousCalls(t)
	d := New(Options{})
	if err := d.RegisterVersion(1, data); err != nil {
		t.Fatalf("RegisterVersion failed: %v", err)
	}

	for _, tc := range []struct {
		index    uint8
		wantName string
	}{{0, "foo"}, {2, "bar"}, {7, "baz"}} {
		ev, err := d.DecodeExtrinsic(1, buildUnsignedExtrinsicCallIndex(tc.index))
		if err != nil {
			t.Fatalf("call index %d: unexpected error: %v", tc.index, err)
		}
		if ev.CallName != tc.wantName {
			t.Fatalf("call index %d: got %s, want %s", tc.index, ev.CallName, tc.wantName)
		}
	}

	_, err := d.DecodeExtrinsic(1, buildUnsignedExtrinsicCallIndex(3))
	if err == nil {
		t.Fatal("expected call index 3 to be UnknownCall")
	}
	var unknownCall *UnknownCallError
	if !errors.As(err, &unknownCall) {
		t.Fatalf("got %v, want UnknownCallError", err)
	}
	if unknownCall.CallIndex != 3 || unknownCall.PalletName != "Balances" {
		t.Fatalf("got %+v", unknownCall)
	}
}
