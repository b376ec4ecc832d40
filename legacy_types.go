package desub

import "strings"

// TypeMarker is the legacy (pre-V14) counterpart of Type: it describes a
// type purely by its SCALE-string name until a Resolver turns that name into
// a structural TypeDef (spec.md §3 "TypeMarker (legacy world)"). Legacy
// metadata never ships a structural description itself — only the call
// argument names/type-strings captured from the blob — so TypeMarker is
// just a parsed form of those strings, ready for the Resolver to fill in.
type TypeMarker struct {
	// Raw is the original SCALE type string, e.g. "Compact<Balance>",
	// "Vec<AccountId>", "Option<Hash>", "(AccountId, Balance)".
	Raw string

	Def TypeDef
}

// ParseTypeMarker parses a legacy SCALE type-name string into a TypeMarker.
// Recognised std wrappers (Option, Result, Vec, array, tuple, Compact) and
// primitive names (see primitiveNames) become structural TypeDefs; any other
// name becomes a bare KindReference, left for the Resolver to look up.
func ParseTypeMarker(raw string) TypeMarker {
	s := strings.TrimSpace(raw)

	switch {
	case strings.HasPrefix(s, "Compact<") && strings.HasSuffix(s, ">"):
		inner := s[len("Compact<") : len(s)-1]
		return TypeMarker{Raw: raw, Def: TypeDef{
			Kind:    KindCompact,
			Element: TypeRef{Name: inner},
		}}

	case strings.HasPrefix(s, "Option<") && strings.HasSuffix(s, ">"):
		inner := s[len("Option<") : len(s)-1]
		return TypeMarker{Raw: raw, Def: optionDef(inner)}

	case strings.HasPrefix(s, "Result<") && strings.HasSuffix(s, ">"):
		inner := s[len("Result<") : len(s)-1]
		parts := splitTopLevel(inner, ',')
		return TypeMarker{Raw: raw, Def: resultDef(parts)}

	case strings.HasPrefix(s, "Vec<") && strings.HasSuffix(s, ">"):
		inner := s[len("Vec<") : len(s)-1]
		return TypeMarker{Raw: raw, Def: TypeDef{
			Kind:    KindSequence,
			Element: TypeRef{Name: inner},
		}}

	case strings.HasPrefix(s, "[") && strings.Contains(s, ";") && strings.HasSuffix(s, "]"):
		body := s[1 : len(s)-1]
		parts := splitTopLevel(body, ';')
		if len(parts) == 2 {
			n := parseArrayLen(parts[1])
			return TypeMarker{Raw: raw, Def: TypeDef{
				Kind:     KindArray,
				Element:  TypeRef{Name: strings.TrimSpace(parts[0])},
				ArrayLen: n,
			}}
		}

	case strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")"):
		body := s[1 : len(s)-1]
		parts := splitTopLevel(body, ',')
		elems := make([]TypeRef, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			elems = append(elems, TypeRef{Name: p})
		}
		return TypeMarker{Raw: raw, Def: TypeDef{Kind: KindTuple, TupleElems: elems}}
	}

	if prim, ok := primitiveByName(s); ok {
		return TypeMarker{Raw: raw, Def: TypeDef{Kind: KindPrimitive, Primitive: prim}}
	}

	return TypeMarker{Raw: raw, Def: TypeDef{Kind: KindReference, Reference: s}}
}

// optionDef wraps inner in a 2-variant Composite-less Option shape: we model
// Option as a Variant with "None"/"Some" arms so the codec's generic variant
// decoder (decodeVariant) handles it uniformly with V14 Option<T>,
// which metadata itself represents as exactly such a variant type.
func optionDef(inner string) TypeDef {
	return TypeDef{
		Kind:        KindVariant,
		VariantName: "Option",
		Variants: []Variant{
			{Index: 0, Name: "None"},
			{Index: 1, Name: "Some", Fields: []Field{{Type: TypeRef{Name: inner}}}},
		},
	}
}

func resultDef(parts []string) TypeDef {
	okName, errName := "", ""
	if len(parts) > 0 {
		okName = strings.TrimSpace(parts[0])
	}
	if len(parts) > 1 {
		errName = strings.TrimSpace(parts[1])
	}
	return TypeDef{
		Kind:        KindVariant,
		VariantName: "Result",
		Variants: []Variant{
			{Index: 0, Name: "Ok", Fields: []Field{{Type: TypeRef{Name: okName}}}},
			{Index: 1, Name: "Err", Fields: []Field{{Type: TypeRef{Name: errName}}}},
		},
	}
}

// splitTopLevel splits s on sep, ignoring occurrences nested inside <...>,
// (...), or [...].
func splitTopLevel(s string, sep byte) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(', '[':
			depth++
		case '>', ')', ']':
			depth--
		default:
			if s[i] == sep && depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}

func parseArrayLen(s string) uint64 {
	s = strings.TrimSpace(s)
	var n uint64
	for _, r := range s {
		if r < '0' || r > '9' {
			return n
		}
		n = n*10 + uint64(r-'0')
	}
	return n
}

var primitiveNames = map[string]PrimitiveKind{
	"u8": PrimU8, "u16": PrimU16, "u32": PrimU32, "u64": PrimU64,
	"u128": PrimU128, "u256": PrimU256,
	"i8": PrimI8, "i16": PrimI16, "i32": PrimI32, "i64": PrimI64,
	"i128": PrimI128, "i256": PrimI256,
	"bool": PrimBool, "Null": PrimNull, "()": PrimNull,
	"Text": PrimStr, "String": PrimStr, "str": PrimStr,
	"char": PrimChar,
	"Bytes": PrimBytes, "Vec<u8>": PrimBytes,
}

func primitiveByName(s string) (PrimitiveKind, bool) {
	k, ok := primitiveNames[s]
	return k, ok
}
