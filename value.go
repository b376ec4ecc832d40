package desub

import (
	"math/big"

	"github.com/holiman/uint256"
)

// ValueKind tags which field of Value is populated. Once decoded, a Value
// carries no type references — it is self-describing through this tag
// (spec.md §3 "Value ... carries no type references after decode").
type ValueKind uint8

const (
	ValuePrimitive ValueKind = iota
	ValueComposite
	ValueVariant
	ValueSequence
	ValueBitSequence
	ValueAddress
	ValueRaw
)

// Value is the decoded output tree. It is created per decode call and owned
// by the caller; it must never reference the metadata or input buffers it
// was decoded from (spec.md §3 ownership invariant), so every byte-bearing
// field here holds an owned copy.
type Value struct {
	Kind ValueKind

	// ValuePrimitive
	PrimitiveKind PrimitiveKind
	U             uint64       // PrimU8..PrimU64, PrimBool(0/1), PrimChar
	Big           *uint256.Int // PrimU128, PrimU256
	I             int64        // PrimI8..PrimI64
	BigSigned     *big.Int     // PrimI128, PrimI256
	Str           string       // PrimStr
	Bytes         []byte       // PrimBytes

	// ValueComposite: named fields in declared order (never sorted, per
	// spec.md §4.7 "deterministic... declared field order").
	Fields []NamedValue

	// ValueVariant
	VariantName  string
	VariantIndex uint8
	// VariantFields holds the payload of the chosen arm, same shape as
	// Composite's Fields (possibly empty for unit variants like None).
	VariantFields []NamedValue

	// ValueSequence
	Elements []Value

	// ValueBitSequence: raw bit-packed payload plus the logical bit count.
	BitLen  uint64
	BitData []byte

	// ValueAddress: a decoded MultiAddress (spec.md §4.5).
	Address *AddressValue

	// ValueRaw: opaque bytes, rendered as hex. No decode path in this
	// package produces it; the legacy lenient-mode fallback for an
	// unresolved type name yields a PrimBytes value instead (see
	// legacyTypeSource.Resolve).
	Raw []byte

	// AccountHint marks a 32-byte Bytes/Composite value as semantically an
	// account id, so C9 can render it as ss58 without re-parsing (spec.md
	// §9 "Ss58 and hex rendering").
	AccountHint bool
}

// NamedValue pairs a field name (empty for tuple-positional fields) with its
// decoded Value.
type NamedValue struct {
	Name  string
	Value Value
}

// AddressValue is the decoded form of a MultiAddress (spec.md §4.5).
type AddressValue struct {
	Kind AddressKind
	// Id holds the 32-byte account id for AddressID and AddressAddress32.
	Id [32]byte
	// Index holds the account index for AddressIndex.
	Index uint64
	// Raw holds the bytes for AddressRaw.
	Raw []byte
	// Address20 holds the 20-byte form for AddressAddress20.
	Address20 [20]byte
}

// AddressKind enumerates the MultiAddress tag byte (spec.md §4.5).
type AddressKind uint8

const (
	AddressID AddressKind = iota
	AddressIndex
	AddressRaw
	AddressAddress32
	AddressAddress20
)

// SignatureScheme enumerates the signature tag byte (spec.md §4.5 / §6).
type SignatureScheme uint8

const (
	SignatureEd25519 SignatureScheme = iota
	SignatureSr25519
	SignatureEcdsa
)

// SignatureValue is the decoded signature block of a signed extrinsic.
type SignatureValue struct {
	Scheme SignatureScheme
	Bytes  []byte
}
