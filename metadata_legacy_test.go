package desub

import "testing"

// buildLegacyMetadata hand-assembles a minimal V11 metadata blob: one
// module ("Timestamp") with no storage, one call ("set" taking a single
// u32-typed argument named "now"), no events, no constants, no errors.
// Legacy FunctionMetadata carries no explicit index field, so call index is
// the Vec position (spec.md §9's positional-index dialect).
func buildLegacyMetadata(t *testing.T) []byte {
	t.Helper()
	var buf []byte
	appendCompact := func(v uint64) { buf = EncodeCompactUint64(buf, v) }
	appendString := func(s string) {
		appendCompact(uint64(len(s)))
		buf = append(buf, s...)
	}

	buf = append(buf, 'm', 'e', 't', 'a', 11)

	appendCompact(1) // modules count

	appendString("Timestamp") // module name
	buf = append(buf, 0x00)   // storage: None
	buf = append(buf, 0x01)   // calls: Some

	appendCompact(1)            // calls count
	appendString("set")         // call name
	appendCompact(1)            // arg count
	appendString("now") // arg name
	appendString("u32") // arg type
	appendCompact(0)            // call docs: empty

	buf = append(buf, 0x00) // events: None
	appendCompact(0)        // constants: empty
	appendCompact(0)        // errors: empty

	return buf
}

func TestDecodeMetadataLegacyCallDispatch(t *testing.T) {
	data := buildLegacyMetadata(t)
	meta, err := DecodeMetadata(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.Version != 11 {
		t.Fatalf("version = %d, want 11", meta.Version)
	}
	pallet, ok := meta.Pallets[0]
	if !ok || pallet.Name != "Timestamp" {
		t.Fatalf("pallet 0 = %+v, ok=%v", pallet, ok)
	}
	variant, ok := pallet.Calls.LookupCall(0)
	if !ok || variant.Name != "set" {
		t.Fatalf("call 0 = %+v, ok=%v", variant, ok)
	}
	if len(variant.Fields) != 1 || variant.Fields[0].Name != "now" {
		t.Fatalf("fields = %+v", variant.Fields)
	}
	if variant.Fields[0].Type.Name != "u32" {
		t.Errorf("arg type = %q", variant.Fields[0].Type.Name)
	}
}

// buildLegacyMetadataWithStorage adds a Map-shaped storage entry ahead of
// the calls, exercising decodeLegacyStorage's framing so the calls that
// follow are still read at the right offset.
func buildLegacyMetadataWithStorage(t *testing.T) []byte {
	t.Helper()
	var buf []byte
	appendCompact := func(v uint64) { buf = EncodeCompactUint64(buf, v) }
	appendString := func(s string) {
		appendCompact(uint64(len(s)))
		buf = append(buf, s...)
	}

	buf = append(buf, 'm', 'e', 't', 'a', 11)
	appendCompact(1) // modules count

	appendString("Balances")
	buf = append(buf, 0x01) // storage: Some

	appendString("Balances") // storage prefix
	appendCompact(1)         // storage entries count
	appendString("FreeBalance")
	buf = append(buf, 0x00) // modifier (Optional)
	buf = append(buf, 0x01) // StorageEntryType::Map
	buf = append(buf, 5)    // hasher: Twox64Concat
	appendString("AccountId") // key type
	appendString("Balance")   // value type
	buf = append(buf, 0x00)   // linked: false
	appendCompact(0)          // default value: empty Vec<u8>
	appendCompact(0)          // docs: empty

	buf = append(buf, 0x01) // calls: Some
	appendCompact(1)        // calls count
	appendString("transfer")
	appendCompact(0) // no args
	appendCompact(0) // docs

	buf = append(buf, 0x00) // events: None
	appendCompact(0)        // constants
	appendCompact(0)        // errors

	return buf
}

func TestDecodeMetadataLegacyStorageFraming(t *testing.T) {
	data := buildLegacyMetadataWithStorage(t)
	meta, err := DecodeMetadata(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pallet, ok := meta.Pallets[0]
	if !ok {
		t.Fatal("pallet 0 missing")
	}
	if pallet.Storage == nil || len(pallet.Storage.Entries) != 1 {
		t.Fatalf("storage = %+v", pallet.Storage)
	}
	entry := pallet.Storage.Entries[0]
	if entry.Name != "FreeBalance" || len(entry.Hashers) != 1 || entry.Hashers[0] != "Twox64Concat" {
		t.Errorf("entry = %+v", entry)
	}
	variant, ok := pallet.Calls.LookupCall(0)
	if !ok || variant.Name != "transfer" {
		t.Fatalf("call 0 = %+v, ok=%v", variant, ok)
	}
}
