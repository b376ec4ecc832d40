package desub

import (
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
)

// Ss58Prefix selects the network byte prepended before ss58-encoding an
// account id (spec.md §9 "32-byte values whose position corresponds to an
// account become ss58 addresses"). Deriving an address from a keypair is out
// of scope (spec.md §1); rendering an already-decoded account id is not.
type Ss58Prefix uint16

const (
	Ss58Polkadot Ss58Prefix = 0
	Ss58Kusama   Ss58Prefix = 2
	Ss58Generic  Ss58Prefix = 42
)

// RenderOptions configures how ToJSON projects a decoded Value.
type RenderOptions struct {
	Ss58Prefix Ss58Prefix
}

// ToJSON renders an ExtrinsicValue into the public structured form spec.md
// §6 requires: declared-field-order preserved (never re-sorted), byte
// vectors as 0x-hex, and account-shaped 32-byte fields as ss58. The result
// marshals with encoding/json, but is built from ordered slices rather than
// a map so key order survives (Go's encoding/json sorts map keys, which
// would violate the "declared field order, not lexicographic" invariant).
func (ev *ExtrinsicValue) ToJSON(opts RenderOptions) ([]byte, error) {
	return json.Marshal(ev.render(opts))
}

func (ev *ExtrinsicValue) render(opts RenderOptions) *orderedMap {
	m := newOrderedMap()
	m.set("version", ev.Version)
	m.set("signed", ev.Signed)
	if ev.Signed {
		m.set("address", renderAddress(ev.Address, opts))
		m.set("signature", renderSignature(ev.Signature))
		m.set("signedExtensions", renderNamedValues(ev.Extra, opts))
	}
	m.set("pallet", ev.PalletName)
	m.set("palletIndex", ev.PalletIndex)
	m.set("call", ev.CallName)
	m.set("callIndex", ev.CallIndex)
	m.set("arguments", renderArgumentsArray(ev.Args, opts))
	return m
}

// renderArgumentsArray projects a call's arguments as spec.md §6 requires:
// a JSON array of `{"name":..., "value":...}` objects in declared field
// order, not an object keyed by field name — so positional access (spec.md
// §8 scenario (a) "arg[1]") and duplicate/empty field names both work.
func renderArgumentsArray(vals []NamedValue, opts RenderOptions) []interface{} {
	out := make([]interface{}, len(vals))
	for i, nv := range vals {
		m := newOrderedMap()
		m.set("name", nv.Name)
		m.set("value", renderValue(nv.Value, opts))
		out[i] = m
	}
	return out
}

func renderNamedValues(vals []NamedValue, opts RenderOptions) *orderedMap {
	m := newOrderedMap()
	for _, nv := range vals {
		m.set(nv.Name, renderValue(nv.Value, opts))
	}
	return m
}

// renderValue projects a Value into a JSON-marshalable tree. AccountHint
// takes priority over the generic Bytes-as-hex rule, per spec.md §9.
func renderValue(v Value, opts RenderOptions) interface{} {
	if v.AccountHint && v.Kind == ValuePrimitive && v.PrimitiveKind == PrimBytes {
		return renderSS58Bytes(v.Bytes, opts.Ss58Prefix)
	}
	if v.AccountHint && v.Kind == ValueComposite && len(v.Fields) == 1 {
		if inner := v.Fields[0].Value; inner.Kind == ValuePrimitive && inner.PrimitiveKind == PrimBytes {
			return renderSS58Bytes(inner.Bytes, opts.Ss58Prefix)
		}
	}

	switch v.Kind {
	case ValuePrimitive:
		return renderPrimitive(v)
	case ValueComposite:
		return renderNamedValues(v.Fields, opts)
	case ValueVariant:
		m := newOrderedMap()
		m.set("variant", v.VariantName)
		m.set("index", v.VariantIndex)
		if len(v.VariantFields) > 0 {
			m.set("fields", renderNamedValues(v.VariantFields, opts))
		}
		return m
	case ValueSequence:
		out := make([]interface{}, len(v.Elements))
		for i, e := range v.Elements {
			out[i] = renderValue(e, opts)
		}
		return out
	case ValueBitSequence:
		m := newOrderedMap()
		m.set("bitLen", v.BitLen)
		m.set("bits", hexString(v.BitData))
		return m
	case ValueAddress:
		return renderAddress(v.Address, opts)
	case ValueRaw:
		return hexString(v.Raw)
	default:
		return nil
	}
}

func renderPrimitive(v Value) interface{} {
	switch v.PrimitiveKind {
	case PrimBytes:
		return hexString(v.Bytes)
	case PrimStr:
		return v.Str
	case PrimChar:
		return string(rune(v.U))
	case PrimBool:
		return v.U != 0
	case PrimU128, PrimU256:
		if v.Big != nil {
			return v.Big.String()
		}
		return "0"
	case PrimI128, PrimI256:
		if v.BigSigned != nil {
			return v.BigSigned.String()
		}
		return "0"
	case PrimI8, PrimI16, PrimI32, PrimI64:
		return v.I
	case PrimNull:
		return nil
	default: // PrimU8, PrimU16, PrimU32, PrimU64
		return v.U
	}
}

func renderAddress(a *AddressValue, opts RenderOptions) interface{} {
	if a == nil {
		return nil
	}
	m := newOrderedMap()
	switch a.Kind {
	case AddressID:
		m.set("kind", "Id")
		m.set("address", encodeSS58(a.Id[:], opts.Ss58Prefix))
	case AddressIndex:
		m.set("kind", "Index")
		m.set("index", a.Index)
	case AddressRaw:
		m.set("kind", "Raw")
		m.set("bytes", hexString(a.Raw))
	case AddressAddress32:
		m.set("kind", "Address32")
		m.set("address", encodeSS58(a.Id[:], opts.Ss58Prefix))
	case AddressAddress20:
		m.set("kind", "Address20")
		m.set("bytes", hexString(a.Address20[:]))
	}
	return m
}

func renderSignature(s *SignatureValue) interface{} {
	if s == nil {
		return nil
	}
	m := newOrderedMap()
	switch s.Scheme {
	case SignatureEd25519:
		m.set("scheme", "Ed25519")
	case SignatureSr25519:
		m.set("scheme", "Sr25519")
	case SignatureEcdsa:
		m.set("scheme", "Ecdsa")
	}
	m.set("signature", hexString(s.Bytes))
	return m
}

func renderSS58Bytes(b []byte, prefix Ss58Prefix) interface{} {
	if len(b) != 32 {
		return hexString(b)
	}
	return encodeSS58(b, prefix)
}

func hexString(b []byte) string {
	return fmt.Sprintf("0x%x", b)
}

// encodeSS58 implements the ss58 address format: base58(prefix-bytes ‖
// payload ‖ checksum), checksum = blake2b-512("SS58PRE" ‖ prefix-bytes ‖
// payload)[:2]. Grounded on the canonical Substrate ss58 algorithm spec.md
// §9 references; prefixes 0-63 encode as a single byte, matching every chain
// this package targets (Polkadot=0, Kusama=2, generic Substrate=42).
func encodeSS58(payload []byte, prefix Ss58Prefix) string {
	prefixBytes := []byte{byte(prefix)}
	body := append(append([]byte{}, prefixBytes...), payload...)

	hash := ss58Checksum(body)
	full := append(body, hash[:2]...)
	return base58.Encode(full)
}

func ss58Checksum(body []byte) [64]byte {
	h, _ := blake2b.New512(nil)
	h.Write([]byte("SS58PRE"))
	h.Write(body)
	var out [64]byte
	copy(out[:], h.Sum(nil))
	return out
}

// orderedMap is a minimal field-name/value list that marshals to a JSON
// object preserving insertion order, since encoding/json always sorts a
// map[string]interface{}'s keys and spec.md §4.7 requires declared field
// order.
type orderedMap struct {
	keys   []string
	values []interface{}
}

func newOrderedMap() *orderedMap { return &orderedMap{} }

func (m *orderedMap) set(key string, value interface{}) {
	m.keys = append(m.keys, key)
	m.values = append(m.values, value)
}

func (m *orderedMap) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, k := range m.keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf = append(buf, kb...)
		buf = append(buf, ':')
		vb, err := json.Marshal(m.values[i])
		if err != nil {
			return nil, err
		}
		buf = append(buf, vb...)
	}
	buf = append(buf, '}')
	return buf, nil
}
