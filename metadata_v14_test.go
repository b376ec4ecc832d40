package desub

import (
	"errors"
	"testing"
)

// buildV14Metadata hand-assembles a minimal V14 metadata blob: one type
// (u32), one pallet ("Balances") whose calls type id points at that u32
// primitive rather than a Variant, no storage/events/constants/errors, and
// one signed extension ("CheckNonce" with a u32 extra type). It is written
// the same byte-by-byte way the decoder reads it, so the test drives
// metadata_v14.go's non-Variant calls rejection rather than a fixture
// loaded from disk.
func buildV14Metadata(t *testing.T) []byte {
	t.Helper()
	var buf []byte

	appendCompact := func(v uint64) {
		buf = EncodeCompactUint64(buf, v)
	}
	appendString := func(s string) {
		appendCompact(uint64(len(s)))
		buf = append(buf, s...)
	}

	// magic + version
	buf = append(buf, 'm', 'e', 't', 'a')
	buf = append(buf, 14)

	// PortableRegistry: 1 type.
	appendCompact(1) // types count
	appendCompact(0) // id 0
	appendCompact(0) // path: empty Vec<String>
	appendCompact(0) // type_params: empty
	buf = append(buf, portableTypeDefPrimitive)
	buf = append(buf, 5) // Primitive tag 5 == U32 (see portablePrimitiveKinds)
	appendCompact(0)      // docs: empty

	// Pallets: 1.
	appendCompact(1)
	appendString("Balances")
	buf = append(buf, 0x00) // storage: None
	buf = append(buf, 0x01) // calls: Some
	appendCompact(0)        // calls.ty = registry id 0... but must be a Variant!
	buf = append(buf, 0x00) // event: None
	appendCompact(0)        // constants: empty
	buf = append(buf, 0x00) // error: None
	buf = append(buf, 0)    // pallet index

	// ExtrinsicMetadata
	appendCompact(0) // ty (unused by decode)
	buf = append(buf, 4) // version
	appendCompact(1)     // signed_extensions count
	appendString("CheckNonce")
	appendCompact(0) // ty -> registry id 0
	appendCompact(0) // additional_signed -> registry id 0 (unused)

	// trailing Runtime type id (V14 only)
	appendCompact(0)

	return buf
}

func TestDecodeMetadataV14RejectsNonVariantCalls(t *testing.T) {
	// The fixture above deliberately points calls.ty at a Primitive type
	// (id 0), which must be rejected: calls must resolve to a Variant.
	data := buildV14Metadata(t)
	_, err := DecodeMetadata(data)
	if err == nil {
		t.Fatal("expected an error decoding calls pointing at a non-variant type")
	}
	var expVariant *ExpectedVariantTypeError
	if !errors.As(err, &expVariant) {
		t.Fatalf("got %v (%T), want *ExpectedVariantTypeError", err, err)
	}
}

// buildV14MetadataWithCalls is like buildV14Metadata but gives pallet 0 a
// real Variant-typed call list: a single "transfer" call taking one u32.
func buildV14MetadataWithCalls(t *testing.T) []byte {
	t.Helper()
	var buf []byte

	appendCompact := func(v uint64) { buf = EncodeCompactUint64(buf, v) }
	appendString := func(s string) {
		appendCompact(uint64(len(s)))
		buf = append(buf, s...)
	}

	buf = append(buf, 'm', 'e', 't', 'a', 14)

	// PortableRegistry: 2 types -- id 0 is u32 (the argument type), id 1 is
	// the calls Variant.
	appendCompact(2)

	appendCompact(0) // id 0
	appendCompact(0) // path empty
	appendCompact(0) // type_params empty
	buf = append(buf, portableTypeDefPrimitive, 5) // U32
	appendCompact(0)                               // docs

	appendCompact(1) // id 1
	appendCompact(0) // path empty
	appendCompact(0) // type_params empty
	buf = append(buf, portableTypeDefVariant)
	appendCompact(1) // 1 variant
	appendString("transfer")
	appendCompact(1) // 1 field
	buf = append(buf, 0x01) // field name: Some
	appendString("value")
	appendCompact(0)        // field type id 0
	buf = append(buf, 0x00) // type_name: None
	appendCompact(0)        // field docs
	buf = append(buf, 0)    // variant index
	appendCompact(0)        // variant docs
	appendCompact(0)        // registry docs for the variant type itself

	// Pallets: 1.
	appendCompact(1)
	appendString("Balances")
	buf = append(buf, 0x00)          // storage: None
	buf = append(buf, 0x01)          // calls: Some
	appendCompact(1)                 // calls.ty = registry id 1 (the Variant)
	buf = append(buf, 0x00)          // event: None
	appendCompact(0)                 // constants: empty
	buf = append(buf, 0x00)          // error: None
	buf = append(buf, 0)             // pallet index

	// ExtrinsicMetadata: no signed extensions for this fixture.
	appendCompact(0)
	buf = append(buf, 4)
	appendCompact(0)

	appendCompact(0) // trailing Runtime type id

	return buf
}

func TestDecodeMetadataV14CallDispatch(t *testing.T) {
	data := buildV14MetadataWithCalls(t)
	meta, err := DecodeMetadata(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.Version != 14 {
		t.Fatalf("version = %d, want 14", meta.Version)
	}
	pallet, ok := meta.Pallets[0]
	if !ok || pallet.Name != "Balances" {
		t.Fatalf("pallet 0 = %+v, ok=%v", pallet, ok)
	}
	variant, ok := pallet.Calls.LookupCall(0)
	if !ok || variant.Name != "transfer" {
		t.Fatalf("call 0 = %+v, ok=%v", variant, ok)
	}
	if len(variant.Fields) != 1 || variant.Fields[0].Name != "value" {
		t.Fatalf("fields = %+v", variant.Fields)
	}
}
