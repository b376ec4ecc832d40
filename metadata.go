package desub

import "encoding/binary"

// MetadataMagic is the four-byte prefix ("meta") every metadata blob opens
// with, per spec.md §6. The wire bytes are b"meta"; read back as a
// little-endian u32 that's 0x6174656d, not the ASCII codes in reading order.
const MetadataMagic uint32 = 0x6174656d

// Metadata is the normalised form both metadata dialects decode into
// (spec.md §3). Registry is non-nil only when Version >= 14 (portable); the
// legacy (<14) path instead resolves Field/Variant type references through a
// Resolver at decode time.
type Metadata struct {
	Version   uint8
	Extrinsic ExtrinsicMetadata
	Pallets   map[uint8]*Pallet
	Registry  *TypeRegistry
}

// ExtrinsicMetadata describes the envelope's version and signed-extension
// order (spec.md §3, §4.5).
type ExtrinsicMetadata struct {
	Version          uint8
	SignedExtensions []SignedExtensionMetadata
}

// SignedExtensionMetadata names one signed extension and the type of the
// "extra" data it contributes to the envelope.
type SignedExtensionMetadata struct {
	Name string
	Type TypeRef
}

// Pallet is a single module keyed by its wire-format index (spec.md §3).
type Pallet struct {
	Index   uint8
	Name    string
	Calls   *CallGroup
	Storage *StorageGroup
}

// CallGroup is a pallet's dispatchable-call variant list plus the dense
// wire-index -> slice-index table spec.md §4.4/§9 require, since variant
// indices may be non-contiguous once calls are removed from a pallet across
// runtime upgrades.
type CallGroup struct {
	// RegistryType is set only for the portable dialect: the registry id of
	// the Variant type this call list was decoded from.
	RegistryType uint32
	Variants     []Variant
	VariantIndex map[uint8]int
}

// LookupCall resolves a wire call index to its Variant, honouring the dense
// non-contiguous mapping (spec.md testable property 5).
func (g *CallGroup) LookupCall(index uint8) (Variant, bool) {
	i, ok := g.VariantIndex[index]
	if !ok {
		return Variant{}, false
	}
	return g.Variants[i], true
}

// StorageGroup carries just enough of a pallet's storage metadata to locate
// an entry by name (spec.md §4.4 "storage entries ... recorded but only
// storage keys required out of scope"); hashing/value decoding for storage
// keys is an explicit Non-goal.
type StorageGroup struct {
	Prefix  string
	Entries []StorageEntry
}

// StorageEntry names one storage item and the hasher(s) its key(s) use.
type StorageEntry struct {
	Name    string
	Hashers []string
}

// buildVariantIndex constructs the dense wire-index -> slice-index table
// from a variant list, per DESIGN.md's port of
// core_v14/src/metadata/version_14.rs::decode.
func buildVariantIndex(variants []Variant) map[uint8]int {
	idx := make(map[uint8]int, len(variants))
	for i, v := range variants {
		idx[v.Index] = i
	}
	return idx
}

// DecodeMetadata parses a magic-prefixed metadata blob (spec.md §6) and
// normalises it, dispatching to the legacy (<14) or portable (>=14) decoder.
func DecodeMetadata(data []byte) (*Metadata, error) {
	if len(data) < 5 {
		return nil, ErrNeedMoreBytes
	}
	magic := binary.LittleEndian.Uint32(data[:4])
	if magic != MetadataMagic {
		return nil, &InvalidTagError{Context: "metadata magic", Byte: data[0], Offset: 0}
	}
	version := data[4]
	c := NewCursor(data[5:])

	switch {
	case version >= 14:
		return decodePortableMetadata(version, c)
	case version >= 8:
		return decodeLegacyMetadata(version, c)
	default:
		return nil, &UnsupportedVersionError{Version: version}
	}
}

// readCompactUint32 decodes a compact integer and truncates it to 32 bits,
// for the many metadata fields (type ids, array lengths) that are logically
// u32 but SCALE-encoded as Compact<u32>.
func readCompactUint32(c *Cursor) (uint32, error) {
	v, _, err := DecodeCompactUint64(c)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// readStringSeq decodes a SCALE Vec<String>.
func readStringSeq(c *Cursor) ([]string, error) {
	n, err := ReadCompactLen(c)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		s, err := ReadString(c)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
