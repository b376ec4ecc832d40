package desub

import (
	"encoding/binary"
	"math/big"

	"github.com/holiman/uint256"
)

// ReadUint8 reads a single unsigned byte.
func ReadUint8(c *Cursor) (uint8, error) {
	return c.ReadByte()
}

// ReadInt8 reads a single signed byte.
func ReadInt8(c *Cursor) (int8, error) {
	b, err := c.ReadByte()
	return int8(b), err
}

// ReadUint16 reads a little-endian uint16.
func ReadUint16(c *Cursor) (uint16, error) {
	b, err := c.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadInt16 reads a little-endian int16.
func ReadInt16(c *Cursor) (int16, error) {
	v, err := ReadUint16(c)
	return int16(v), err
}

// ReadUint32 reads a little-endian uint32.
func ReadUint32(c *Cursor) (uint32, error) {
	b, err := c.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadInt32 reads a little-endian int32.
func ReadInt32(c *Cursor) (int32, error) {
	v, err := ReadUint32(c)
	return int32(v), err
}

// ReadUint64 reads a little-endian uint64.
func ReadUint64(c *Cursor) (uint64, error) {
	b, err := c.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadInt64 reads a little-endian int64.
func ReadInt64(c *Cursor) (int64, error) {
	v, err := ReadUint64(c)
	return int64(v), err
}

// ReadUint128 reads a little-endian 128-bit unsigned integer into a
// *uint256.Int (which natively covers 128 and 256 bit widths).
func ReadUint128(c *Cursor) (*uint256.Int, error) {
	b, err := c.ReadBytes(16)
	if err != nil {
		return nil, err
	}
	le := make([]byte, 16)
	copy(le, b)
	return new(uint256.Int).SetBytes(reverse(le)), nil
}

// ReadUint256 reads a little-endian 256-bit unsigned integer.
func ReadUint256(c *Cursor) (*uint256.Int, error) {
	b, err := c.ReadBytes(32)
	if err != nil {
		return nil, err
	}
	le := make([]byte, 32)
	copy(le, b)
	return new(uint256.Int).SetBytes(reverse(le)), nil
}

// ReadInt128 reads a little-endian signed 128-bit integer as a *big.Int
// (two's complement), since uint256.Int has no signed counterpart.
func ReadInt128(c *Cursor) (*big.Int, error) {
	return readSignedN(c, 16)
}

// ReadInt256 reads a little-endian signed 256-bit integer.
func ReadInt256(c *Cursor) (*big.Int, error) {
	return readSignedN(c, 32)
}

func readSignedN(c *Cursor, n int) (*big.Int, error) {
	b, err := c.ReadBytes(n)
	if err != nil {
		return nil, err
	}
	be := reverse(append([]byte(nil), b...))
	v := new(big.Int).SetBytes(be)
	if be[0]&0x80 != 0 {
		// Two's complement negative: v - 2^(8n)
		mod := new(big.Int).Lsh(big.NewInt(1), uint(8*n))
		v.Sub(v, mod)
	}
	return v, nil
}

// fromBigInt converts a non-negative *big.Int (as produced by
// DecodeCompactBigInt) into a *uint256.Int, reporting overflow if it exceeds
// 256 bits.
func fromBigInt(v *big.Int) (*uint256.Int, error) {
	if v.Sign() < 0 {
		return nil, ErrOverflow
	}
	out, overflow := uint256.FromBig(v)
	if overflow {
		return nil, ErrOverflow
	}
	return out, nil
}

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, x := range b {
		out[len(b)-1-i] = x
	}
	return out
}

// ReadBool decodes a SCALE bool: 0x00 false, 0x01 true, anything else is
// ErrInvalidBool.
func ReadBool(c *Cursor) (bool, error) {
	b, err := c.ReadByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0x00:
		return false, nil
	case 0x01:
		return true, nil
	default:
		return false, ErrInvalidBool
	}
}

// OptionTag is the tag byte of an Option<T>.
type OptionTag uint8

const (
	OptionNone OptionTag = 0x00
	OptionSome OptionTag = 0x01
)

// ReadOptionTag reads the one-byte Option discriminant.
func ReadOptionTag(c *Cursor) (OptionTag, error) {
	b, err := c.ReadByte()
	if err != nil {
		return 0, err
	}
	switch b {
	case 0x00, 0x01:
		return OptionTag(b), nil
	default:
		return 0, &InvalidTagError{Context: "option", Byte: b, Offset: c.Pos() - 1}
	}
}

// ResultTag is the tag byte of a Result<T, E>.
type ResultTag uint8

const (
	ResultOk  ResultTag = 0x00
	ResultErr ResultTag = 0x01
)

// ReadResultTag reads the one-byte Result discriminant.
func ReadResultTag(c *Cursor) (ResultTag, error) {
	b, err := c.ReadByte()
	if err != nil {
		return 0, err
	}
	switch b {
	case 0x00, 0x01:
		return ResultTag(b), nil
	default:
		return 0, &InvalidTagError{Context: "result", Byte: b, Offset: c.Pos() - 1}
	}
}

// ReadCompactLen reads a compact-encoded sequence length, bounding it by the
// bytes remaining in the cursor (spec.md invariant 4: "a length that would
// overrun is a decode error, not a truncation").
func ReadCompactLen(c *Cursor) (int, error) {
	n, _, err := DecodeCompactUint64(c)
	if err != nil {
		return 0, err
	}
	if n > uint64(c.Remaining()) {
		return 0, ErrNeedMoreBytes
	}
	return int(n), nil
}

// ReadBytesSeq decodes a SCALE Vec<u8>: compact length prefix followed by
// that many raw bytes, returned as an owned copy.
func ReadBytesSeq(c *Cursor) ([]byte, error) {
	n, err := ReadCompactLen(c)
	if err != nil {
		return nil, err
	}
	return c.CloneBytes(n)
}

// ReadString decodes a SCALE string: a Vec<u8> required to be valid UTF-8.
func ReadString(c *Cursor) (string, error) {
	b, err := ReadBytesSeq(c)
	if err != nil {
		return "", err
	}
	if !isValidUTF8(b) {
		return "", ErrInvalidUTF8
	}
	return string(b), nil
}

func isValidUTF8(b []byte) bool {
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c < 0x80:
			i++
		case c&0xE0 == 0xC0:
			if i+1 >= len(b) || b[i+1]&0xC0 != 0x80 {
				return false
			}
			i += 2
		case c&0xF0 == 0xE0:
			if i+2 >= len(b) || b[i+1]&0xC0 != 0x80 || b[i+2]&0xC0 != 0x80 {
				return false
			}
			i += 3
		case c&0xF8 == 0xF0:
			if i+3 >= len(b) || b[i+1]&0xC0 != 0x80 || b[i+2]&0xC0 != 0x80 || b[i+3]&0xC0 != 0x80 {
				return false
			}
			i += 4
		default:
			return false
		}
	}
	return true
}
