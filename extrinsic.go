package desub

// signedBit marks a signed extrinsic in the version byte's high bit
// (spec.md §4.5); the low 7 bits are the envelope version.
const signedBit = 0x80

// ExtrinsicValue is the decoded form of one extrinsic envelope (spec.md §3,
// §4.5): version/signed flag, the optional signed block (address, signature,
// signed extensions), the dispatched pallet/call, and its decoded arguments.
type ExtrinsicValue struct {
	Version   uint8
	Signed    bool
	Address   *AddressValue
	Signature *SignatureValue
	Extra     []NamedValue

	PalletIndex uint8
	PalletName  string
	CallIndex   uint8
	CallName    string
	Args        []NamedValue
}

// DecodeExtrinsic decodes a single self-framed extrinsic: a Compact<len>
// prefix followed by exactly len bytes of envelope (spec.md §4.5, §4.6). The
// whole of data must be consumed; anything short or left over is an error,
// per spec.md's byte-accounting invariant.
func DecodeExtrinsic(data []byte, specVersion uint32, meta *Metadata, factory TypeSourceFactory) (*ExtrinsicValue, error) {
	c := NewCursor(data)
	length, err := ReadCompactLen(c)
	if err != nil {
		return nil, wrapDecodeError(err)
	}
	bodyEnd := c.Pos() + length
	if bodyEnd > c.Len() {
		return nil, wrapDecodeError(ErrNeedMoreBytes)
	}

	ev, err := decodeExtrinsicBody(c, specVersion, meta, factory)
	if err != nil {
		return nil, wrapDecodeError(err)
	}

	if c.Pos() != bodyEnd {
		return nil, wrapDecodeError(boundaryError(c.Pos(), bodyEnd))
	}
	if c.Len() > bodyEnd {
		return nil, wrapDecodeError(&TrailingBytesError{N: c.Len() - bodyEnd, Offset: bodyEnd})
	}
	return ev, nil
}

// ExtrinsicResult pairs one batch slot's decoded value with any error, so a
// lenient DecodeExtrinsics run can report per-extrinsic failures without
// aborting the whole block (spec.md §4.6 "skip-and-continue").
type ExtrinsicResult struct {
	Value *ExtrinsicValue
	Err   error
}

// DecodeExtrinsics decodes a block body: Compact<count> followed by count
// self-framed extrinsics (spec.md §4.6). In strict mode (lenient=false) the
// first error aborts the batch. In lenient mode, a failing extrinsic's
// cursor still advances by its declared length — recovering framing for the
// next entry — and its failure is recorded in the result slot instead of
// aborting.
func DecodeExtrinsics(data []byte, specVersion uint32, meta *Metadata, factory TypeSourceFactory, lenient bool) ([]ExtrinsicResult, error) {
	c := NewCursor(data)
	n, err := ReadCompactLen(c)
	if err != nil {
		return nil, wrapDecodeError(err)
	}

	results := make([]ExtrinsicResult, 0, n)
	for i := 0; i < n; i++ {
		length, err := ReadCompactLen(c)
		if err != nil {
			// No declared length to skip past: framing is unrecoverable from
			// here regardless of mode.
			return results, wrapDecodeError(err)
		}
		bodyEnd := c.Pos() + length
		if bodyEnd > c.Len() {
			return results, wrapDecodeError(ErrNeedMoreBytes)
		}

		ev, decErr := decodeExtrinsicBody(c, specVersion, meta, factory)
		if decErr == nil && c.Pos() != bodyEnd {
			decErr = boundaryError(c.Pos(), bodyEnd)
		}
		if decErr != nil {
			if !lenient {
				return results, wrapDecodeError(decErr)
			}
			results = append(results, ExtrinsicResult{Err: wrapDecodeError(decErr)})
			c.Seek(bodyEnd)
			continue
		}
		results = append(results, ExtrinsicResult{Value: ev})
	}
	return results, nil
}

func boundaryError(pos, bodyEnd int) error {
	if pos < bodyEnd {
		return &UnderrunError{Short: bodyEnd - pos, Offset: pos}
	}
	return &TrailingBytesError{N: pos - bodyEnd, Offset: bodyEnd}
}

func decodeExtrinsicBody(c *Cursor, specVersion uint32, meta *Metadata, factory TypeSourceFactory) (*ExtrinsicValue, error) {
	versionByte, err := c.ReadByte()
	if err != nil {
		return nil, err
	}
	ev := &ExtrinsicValue{
		Version: versionByte &^ signedBit,
		Signed:  versionByte&signedBit != 0,
	}

	if ev.Signed {
		addr, err := decodeMultiAddress(c)
		if err != nil {
			return nil, err
		}
		ev.Address = addr

		sig, err := decodeSignature(c)
		if err != nil {
			return nil, err
		}
		ev.Signature = sig

		extra, err := decodeSignedExtensions(c, meta.Extrinsic.SignedExtensions, factory.ForExtrinsic())
		if err != nil {
			return nil, err
		}
		ev.Extra = extra
	}

	palletIndex, err := c.ReadByte()
	if err != nil {
		return nil, err
	}
	ev.PalletIndex = palletIndex
	pallet, ok := meta.Pallets[palletIndex]
	if !ok {
		return nil, &UnknownPalletError{SpecVersion: specVersion, PalletIndex: palletIndex, ByteOffset: c.Pos() - 1}
	}
	ev.PalletName = pallet.Name

	callIndex, err := c.ReadByte()
	if err != nil {
		return nil, err
	}
	ev.CallIndex = callIndex
	if pallet.Calls == nil {
		return nil, &UnknownCallError{SpecVersion: specVersion, PalletIndex: palletIndex, PalletName: pallet.Name, CallIndex: callIndex, ByteOffset: c.Pos() - 1}
	}
	variant, ok := pallet.Calls.LookupCall(callIndex)
	if !ok {
		return nil, &UnknownCallError{SpecVersion: specVersion, PalletIndex: palletIndex, PalletName: pallet.Name, CallIndex: callIndex, ByteOffset: c.Pos() - 1}
	}
	ev.CallName = variant.Name

	args, err := decodeCallArgs(c, pallet.Name, variant, factory.ForModule(pallet.Name))
	if err != nil {
		return nil, err
	}
	ev.Args = args

	return ev, nil
}

func decodeCallArgs(c *Cursor, palletName string, variant Variant, src TypeSource) ([]NamedValue, error) {
	out := make([]NamedValue, 0, len(variant.Fields))
	for _, f := range variant.Fields {
		def, err := resolveRef(f.Type, src)
		if err != nil {
			return nil, &CodecFailureError{Pallet: palletName, Call: variant.Name, Field: f.Name, Offset: c.Pos(), Err: err}
		}
		v, err := decodeValue(c, def, src)
		if err != nil {
			return nil, &CodecFailureError{Pallet: palletName, Call: variant.Name, Field: f.Name, Offset: c.Pos(), Err: err}
		}
		out = append(out, NamedValue{Name: f.Name, Value: v})
	}
	return out, nil
}

func decodeSignedExtensions(c *Cursor, exts []SignedExtensionMetadata, src TypeSource) ([]NamedValue, error) {
	out := make([]NamedValue, 0, len(exts))
	for _, ext := range exts {
		def, err := resolveExtensionType(ext, src)
		if err != nil {
			return nil, &CodecFailureError{Pallet: "$extrinsic", Call: "signedExtensions", Field: ext.Name, Offset: c.Pos(), Err: err}
		}
		v, err := decodeValue(c, def, src)
		if err != nil {
			return nil, &CodecFailureError{Pallet: "$extrinsic", Call: "signedExtensions", Field: ext.Name, Offset: c.Pos(), Err: err}
		}
		out = append(out, NamedValue{Name: ext.Name, Value: v})
	}
	return out, nil
}

// resolveExtensionType prefers a dialect's name-addressed extrinsic-type
// lookup (legacy) over its dialect TypeRef (portable already puts a concrete
// registry id on ext.Type, so the generic path suffices there).
func resolveExtensionType(ext SignedExtensionMetadata, src TypeSource) (TypeDef, error) {
	if ets, ok := src.(ExtrinsicTypeSource); ok {
		return ets.ResolveExtrinsic(ext.Name)
	}
	return src.Resolve(ext.Type)
}

func decodeMultiAddress(c *Cursor) (*AddressValue, error) {
	tag, err := c.ReadByte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case 0: // Id(AccountId)
		b, err := c.CloneBytes(32)
		if err != nil {
			return nil, err
		}
		var id [32]byte
		copy(id[:], b)
		return &AddressValue{Kind: AddressID, Id: id}, nil
	case 1: // Index(Compact<AccountIndex>)
		n, _, err := DecodeCompactUint64(c)
		if err != nil {
			return nil, err
		}
		return &AddressValue{Kind: AddressIndex, Index: n}, nil
	case 2: // Raw(Vec<u8>)
		b, err := ReadBytesSeq(c)
		if err != nil {
			return nil, err
		}
		return &AddressValue{Kind: AddressRaw, Raw: b}, nil
	case 3: // Address32([u8; 32])
		b, err := c.CloneBytes(32)
		if err != nil {
			return nil, err
		}
		var id [32]byte
		copy(id[:], b)
		return &AddressValue{Kind: AddressAddress32, Id: id}, nil
	case 4: // Address20([u8; 20])
		b, err := c.CloneBytes(20)
		if err != nil {
			return nil, err
		}
		var a20 [20]byte
		copy(a20[:], b)
		return &AddressValue{Kind: AddressAddress20, Address20: a20}, nil
	default:
		return nil, &InvalidTagError{Context: "MultiAddress", Byte: tag, Offset: c.Pos() - 1}
	}
}

var signatureByteLens = map[SignatureScheme]int{
	SignatureEd25519: 64,
	SignatureSr25519: 64,
	SignatureEcdsa:   65,
}

func decodeSignature(c *Cursor) (*SignatureValue, error) {
	tag, err := c.ReadByte()
	if err != nil {
		return nil, err
	}
	var scheme SignatureScheme
	switch tag {
	case 0:
		scheme = SignatureEd25519
	case 1:
		scheme = SignatureSr25519
	case 2:
		scheme = SignatureEcdsa
	default:
		return nil, &InvalidTagError{Context: "MultiSignature", Byte: tag, Offset: c.Pos() - 1}
	}
	b, err := c.CloneBytes(signatureByteLens[scheme])
	if err != nil {
		return nil, err
	}
	return &SignatureValue{Scheme: scheme, Bytes: b}, nil
}
