package desub

import "math/big"

// Compact mode selectors (low 2 bits of the first byte). See spec.md §4.1.
const (
	compactModeSingle = 0b00 // 6-bit value in the remaining bits of byte 0
	compactModeTwo    = 0b01 // 14-bit value across 2 bytes
	compactModeFour   = 0b10 // 30-bit value across 4 bytes
	compactModeBig    = 0b11 // big-integer mode, byte length in upper 6 bits + 4
)

// DecodeCompactUint64 decodes a SCALE compact integer into a uint64,
// returning the value and the number of input bytes consumed. It fails with
// ErrOverflow if a big-integer-mode encoding does not fit in 64 bits.
//
// Per spec.md scenario (d), non-canonical (overlong) encodings are accepted
// on decode: a small value encoded in a wider mode than strictly necessary
// is not an error. Only EncodeCompactUint64 is required to emit the
// canonical minimal-mode form.
func DecodeCompactUint64(c *Cursor) (uint64, int, error) {
	start := c.Pos()
	first, err := c.ReadByte()
	if err != nil {
		return 0, 0, ErrNeedMoreBytes
	}

	switch first & 0b11 {
	case compactModeSingle:
		return uint64(first >> 2), 1, nil

	case compactModeTwo:
		b2, err := c.ReadByte()
		if err != nil {
			return 0, 0, ErrNeedMoreBytes
		}
		v := uint64(first) | uint64(b2)<<8
		return v >> 2, 2, nil

	case compactModeFour:
		rest, err := c.ReadBytes(3)
		if err != nil {
			return 0, 0, ErrNeedMoreBytes
		}
		v := uint64(first) | uint64(rest[0])<<8 | uint64(rest[1])<<16 | uint64(rest[2])<<24
		return v >> 2, 4, nil

	default: // compactModeBig
		byteLen := int(first>>2) + 4
		body, err := c.ReadBytes(byteLen)
		if err != nil {
			return 0, 0, ErrNeedMoreBytes
		}
		if byteLen > 8 {
			// Anything beyond the low 8 bytes must be all-zero to fit in a uint64.
			for _, b := range body[8:] {
				if b != 0 {
					return 0, 0, ErrOverflow
				}
			}
			body = body[:8]
		}
		var v uint64
		for i := len(body) - 1; i >= 0; i-- {
			v = v<<8 | uint64(body[i])
		}
		return v, c.Pos() - start, nil
	}
}

// DecodeCompactBigInt decodes a SCALE compact integer of arbitrary width
// into a *big.Int, for the U128/U256 fields that may legitimately exceed 64
// bits (e.g. balances). Returns the value and bytes consumed.
func DecodeCompactBigInt(c *Cursor) (*big.Int, int, error) {
	start := c.Pos()
	first, err := c.ReadByte()
	if err != nil {
		return nil, 0, ErrNeedMoreBytes
	}

	switch first & 0b11 {
	case compactModeSingle:
		return big.NewInt(int64(first >> 2)), 1, nil

	case compactModeTwo:
		b2, err := c.ReadByte()
		if err != nil {
			return nil, 0, ErrNeedMoreBytes
		}
		v := uint64(first) | uint64(b2)<<8
		return big.NewInt(int64(v >> 2)), 2, nil

	case compactModeFour:
		rest, err := c.ReadBytes(3)
		if err != nil {
			return nil, 0, ErrNeedMoreBytes
		}
		v := uint64(first) | uint64(rest[0])<<8 | uint64(rest[1])<<16 | uint64(rest[2])<<24
		return new(big.Int).SetUint64(v >> 2), 4, nil

	default:
		byteLen := int(first>>2) + 4
		body, err := c.ReadBytes(byteLen)
		if err != nil {
			return nil, 0, ErrNeedMoreBytes
		}
		le := make([]byte, len(body))
		for i, b := range body {
			le[len(body)-1-i] = b
		}
		return new(big.Int).SetBytes(le), c.Pos() - start, nil
	}
}

// CompactLen returns the number of bytes the canonical compact encoding of v
// would occupy (the length EncodeCompactUint64 emits), for callers sizing
// buffers.
func CompactLen(v uint64) int {
	switch {
	case v < 1<<6:
		return 1
	case v < 1<<14:
		return 2
	case v < 1<<30:
		return 4
	default:
		n := 1
		for tmp := v; tmp > 0; tmp >>= 8 {
			n++
		}
		return n
	}
}

// EncodeCompactUint64 appends the canonical (minimal-mode) compact encoding
// of v to dst and returns the extended slice.
func EncodeCompactUint64(dst []byte, v uint64) []byte {
	switch {
	case v < 1<<6:
		return append(dst, byte(v<<2)|compactModeSingle)
	case v < 1<<14:
		v2 := uint16(v<<2) | compactModeTwo
		return append(dst, byte(v2), byte(v2>>8))
	case v < 1<<30:
		v4 := uint32(v<<2) | compactModeFour
		return append(dst, byte(v4), byte(v4>>8), byte(v4>>16), byte(v4>>24))
	default:
		var body []byte
		for tmp := v; tmp > 0; tmp >>= 8 {
			body = append(body, byte(tmp))
		}
		header := byte(len(body)-4)<<2 | compactModeBig
		out := append(dst, header)
		return append(out, body...)
	}
}
