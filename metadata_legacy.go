package desub

// decodeLegacyMetadata parses V8..V13 metadata: a flat Vec<ModuleMetadata>,
// each module carrying its storage/calls/events/constants/errors inline.
// Call and module indices are positional (the dense-slice-index problem
// spec.md §9 warns about only bites the portable dialect, where scale-info
// assigns arbitrary per-variant indices; legacy FunctionMetadata has no
// separate index field, so wire index == Vec position).
func decodeLegacyMetadata(version uint8, c *Cursor) (*Metadata, error) {
	n, err := ReadCompactLen(c)
	if err != nil {
		return nil, err
	}

	pallets := make(map[uint8]*Pallet, n)
	for i := 0; i < n; i++ {
		pallet, err := decodeLegacyModule(c, uint8(i))
		if err != nil {
			return nil, err
		}
		pallets[pallet.Index] = pallet
	}

	return &Metadata{
		Version: version,
		Pallets: pallets,
		// Legacy metadata does not embed its own extrinsic/signed-extension
		// descriptor; callers supply it out of band (a fixed table per
		// chain/spec), via Decoder.SetLegacyExtrinsicMetadata.
		Extrinsic: ExtrinsicMetadata{Version: 4},
	}, nil
}

func decodeLegacyModule(c *Cursor, index uint8) (*Pallet, error) {
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
		storage, err = decodeLegacyStorage(c)
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
		calls, err = decodeLegacyCalls(c)
		if err != nil {
			return nil, err
		}
	}

	// Events: Option<Vec<EventMetadata>>. Not required for extrinsic decode
	// (spec.md §4.4); parsed only so the cursor stays correctly framed.
	hasEvents, err := ReadOptionTag(c)
	if err != nil {
		return nil, err
	}
	if hasEvents == OptionSome {
		if err := skipLegacyEvents(c); err != nil {
			return nil, err
		}
	}

	if err := skipLegacyConstants(c); err != nil {
		return nil, err
	}
	if err := skipLegacyErrors(c); err != nil {
		return nil, err
	}

	return &Pallet{Index: index, Name: name, Calls: calls, Storage: storage}, nil
}

func decodeLegacyStorage(c *Cursor) (*StorageGroup, error) {
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
		// StorageEntryModifier (1 byte: Optional/Default) then
		// StorageEntryType, whose shape varies (Plain(ty) / Map{hasher, key,
		// value, linked} / DoubleMap{...}). We only need the hasher names
		// (spec.md's storage Non-goal excludes key/value decode), so read
		// just enough to stay framed, tolerating any of the three shapes.
		if _, err := c.ReadByte(); err != nil { // modifier
			return nil, err
		}
		kind, err := c.ReadByte()
		if err != nil {
			return nil, err
		}
		var hashers []string
		switch kind {
		case 0: // Plain(Type)
			if _, err := ReadString(c); err != nil {
				return nil, err
			}
		case 1: // Map { hasher, key, value, unused bool }
			h, err := decodeLegacyHasher(c)
			if err != nil {
				return nil, err
			}
			hashers = []string{h}
			if _, err := ReadString(c); err != nil { // key type
				return nil, err
			}
			if _, err := ReadString(c); err != nil { // value type
				return nil, err
			}
			if _, err := ReadBool(c); err != nil { // linked
				return nil, err
			}
		case 2: // DoubleMap { hasher, key1, key2_hasher, key2, value }
			h1, err := decodeLegacyHasher(c)
			if err != nil {
				return nil, err
			}
			if _, err := ReadString(c); err != nil {
				return nil, err
			}
			h2, err := decodeLegacyHasher(c)
			if err != nil {
				return nil, err
			}
			if _, err := ReadString(c); err != nil {
				return nil, err
			}
			if _, err := ReadString(c); err != nil {
				return nil, err
			}
			hashers = []string{h1, h2}
		default:
			return nil, &InvalidTagError{Context: "storage entry type", Byte: kind, Offset: c.Pos() - 1}
		}

		// default value (Vec<u8>) and documentation.
		if _, err := ReadBytesSeq(c); err != nil {
			return nil, err
		}
		if _, err := readStringSeq(c); err != nil {
			return nil, err
		}

		entries = append(entries, StorageEntry{Name: name, Hashers: hashers})
	}
	return &StorageGroup{Prefix: prefix, Entries: entries}, nil
}

var legacyHasherNames = []string{"Blake2_128", "Blake2_256", "Blake2_128Concat", "Twox128", "Twox256", "Twox64Concat", "Identity"}

func decodeLegacyHasher(c *Cursor) (string, error) {
	b, err := c.ReadByte()
	if err != nil {
		return "", err
	}
	if int(b) < len(legacyHasherNames) {
		return legacyHasherNames[b], nil
	}
	return "", &InvalidTagError{Context: "storage hasher", Byte: b, Offset: c.Pos() - 1}
}

func decodeLegacyCalls(c *Cursor) (*CallGroup, error) {
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
		argCount, err := ReadCompactLen(c)
		if err != nil {
			return nil, err
		}
		fields := make([]Field, 0, argCount)
		for j := 0; j < argCount; j++ {
			argName, err := ReadString(c)
			if err != nil {
				return nil, err
			}
			argType, err := ReadString(c)
			if err != nil {
				return nil, err
			}
			fields = append(fields, Field{Name: argName, Type: TypeRef{Name: argType}})
		}
		docs, err := readStringSeq(c)
		if err != nil {
			return nil, err
		}
		variants = append(variants, Variant{Index: uint8(i), Name: name, Fields: fields, Docs: docs})
	}
	return &CallGroup{Variants: variants, VariantIndex: buildVariantIndex(variants)}, nil
}

func skipLegacyEvents(c *Cursor) error {
	n, err := ReadCompactLen(c)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if _, err := ReadString(c); err != nil { // name
			return err
		}
		if _, err := readStringSeq(c); err != nil { // arguments (type strings)
			return err
		}
		if _, err := readStringSeq(c); err != nil { // documentation
			return err
		}
	}
	return nil
}

func skipLegacyConstants(c *Cursor) error {
	n, err := ReadCompactLen(c)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if _, err := ReadString(c); err != nil { // name
			return err
		}
		if _, err := ReadString(c); err != nil { // type
			return err
		}
		if _, err := ReadBytesSeq(c); err != nil { // value
			return err
		}
		if _, err := readStringSeq(c); err != nil { // documentation
			return err
		}
	}
	return nil
}

func skipLegacyErrors(c *Cursor) error {
	n, err := ReadCompactLen(c)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if _, err := ReadString(c); err != nil { // name
			return err
		}
		if _, err := readStringSeq(c); err != nil { // documentation
			return err
		}
	}
	return nil
}
