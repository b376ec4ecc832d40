package desub

import (
	"errors"
	"fmt"
)

// Sentinel input/codec errors (spec.md §7 "Input errors").
var (
	// ErrNeedMoreBytes is returned when the cursor has fewer bytes remaining
	// than the value being decoded requires.
	ErrNeedMoreBytes = errors.New("desub: need more bytes")

	// ErrInvalidBool is returned when a bool tag byte is neither 0x00 nor 0x01.
	ErrInvalidBool = errors.New("desub: invalid bool tag")

	// ErrOverflow is returned when a compact big-integer mode decodes a value
	// wider than the caller-requested width.
	ErrOverflow = errors.New("desub: compact integer overflow")

	// ErrInvalidUTF8 is returned when a string field is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("desub: invalid utf-8")
)

// Sentinel metadata/registry/resolver errors (spec.md §7).
var (
	// ErrExpectedVariantType is returned when a pallet's calls type does not
	// resolve to a Variant TypeDef. See ExpectedVariantTypeError for the
	// structured form carrying which type id and kind it actually found.
	ErrExpectedVariantType = errors.New("desub: expected variant type")

	// ErrAlreadyRegistered is returned by RegisterVersion for a spec version
	// that already has metadata registered.
	ErrAlreadyRegistered = errors.New("desub: spec version already registered")

	// ErrSpecVersionNotFound is returned when decoding against an
	// unregistered spec version.
	ErrSpecVersionNotFound = errors.New("desub: spec version not found")

	// ErrUnresolvedType is returned by the legacy path, in strict mode, when
	// the resolver cannot find a type marker for a name.
	ErrUnresolvedType = errors.New("desub: unresolved legacy type")
)

// InvalidTagError reports an unexpected tag byte at a named decode site.
type InvalidTagError struct {
	Context string
	Byte    byte
	Offset  int
}

func (e *InvalidTagError) Error() string {
	return fmt.Sprintf("desub: invalid tag 0x%02x for %s at offset %d", e.Byte, e.Context, e.Offset)
}

// TrailingBytesError reports that an envelope had more bytes than its
// declared length accounted for.
type TrailingBytesError struct {
	N      int
	Offset int
}

func (e *TrailingBytesError) Error() string {
	return fmt.Sprintf("desub: %d trailing byte(s) after offset %d", e.N, e.Offset)
}

// UnderrunError reports that an envelope's cursor stopped short of its
// declared boundary.
type UnderrunError struct {
	Short  int
	Offset int
}

func (e *UnderrunError) Error() string {
	return fmt.Sprintf("desub: decode underran envelope by %d byte(s) (at offset %d)", e.Short, e.Offset)
}

// UnsupportedVersionError reports a metadata prefix with an unknown version
// discriminator.
type UnsupportedVersionError struct {
	Version uint8
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("desub: unsupported metadata version %d", e.Version)
}

// TypeNotFoundError reports a portable-registry id with no backing type.
type TypeNotFoundError struct {
	ID uint32
}

func (e *TypeNotFoundError) Error() string {
	return fmt.Sprintf("desub: type id %d not found in registry", e.ID)
}

func (e *TypeNotFoundError) Unwrap() error { return ErrUnresolvedType }

// ExpectedVariantTypeError reports that a pallet's calls (or similar
// enum-shaped) registry entry resolved to something other than a Variant.
type ExpectedVariantTypeError struct {
	TypeID uint32
	Got    TypeKind
}

func (e *ExpectedVariantTypeError) Error() string {
	return fmt.Sprintf("desub: type id %d: expected variant, got kind %d", e.TypeID, e.Got)
}

func (e *ExpectedVariantTypeError) Unwrap() error { return ErrExpectedVariantType }

// UnknownPalletError reports a pallet index absent from registered metadata.
type UnknownPalletError struct {
	SpecVersion  uint32
	PalletIndex  uint8
	ByteOffset   int
}

func (e *UnknownPalletError) Error() string {
	return fmt.Sprintf("desub: unknown pallet %d for spec %d (at offset %d)",
		e.PalletIndex, e.SpecVersion, e.ByteOffset)
}

// UnknownCallError reports a call index absent from a pallet's call variant
// table.
type UnknownCallError struct {
	SpecVersion uint32
	PalletIndex uint8
	PalletName  string
	CallIndex   uint8
	ByteOffset  int
}

func (e *UnknownCallError) Error() string {
	return fmt.Sprintf("desub: unknown call %d on pallet %q (index %d, spec %d, at offset %d)",
		e.CallIndex, e.PalletName, e.PalletIndex, e.SpecVersion, e.ByteOffset)
}

// CodecFailureError wraps an underlying primitive-codec error with the
// pallet/call/field context it occurred in, per spec.md §7 ("user-visible
// messages must include the byte offset and the pallet/call context when
// available").
type CodecFailureError struct {
	Pallet string
	Call   string
	Field  string
	Offset int
	Err    error
}

func (e *CodecFailureError) Error() string {
	return fmt.Sprintf("desub: decoding %s.%s field %q at offset %d: %v",
		e.Pallet, e.Call, e.Field, e.Offset, e.Err)
}

func (e *CodecFailureError) Unwrap() error { return e.Err }

// ErrorKind classifies a DecodeError for callers that want to branch on
// category without a type switch over every structured error above.
type ErrorKind uint8

const (
	KindUnknown ErrorKind = iota
	KindInput           // malformed/truncated/overrun bytes
	KindMetadata        // unsupported version, bad magic, registry lookup miss
	KindDispatch        // unknown pallet/call
	KindField           // a specific field's codec failed (CodecFailureError)
)

// DecodeError is the facade DecodeExtrinsic/DecodeExtrinsics return: it
// wraps the underlying error (usually one of the sentinels or structured
// types above; errors that match none of them are classified KindUnknown)
// and is reachable via As, so a caller who only cares about the coarse
// category need not enumerate every concrete error type.
type DecodeError struct {
	Kind ErrorKind
	Err  error
}

func (e *DecodeError) Error() string { return e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

// wrapDecodeError classifies err into a DecodeError. nil passes through.
func wrapDecodeError(err error) error {
	if err == nil {
		return nil
	}
	var (
		invalidTag  *InvalidTagError
		trailing    *TrailingBytesError
		underrun    *UnderrunError
		unsupported *UnsupportedVersionError
		typeNF      *TypeNotFoundError
		unknownPal  *UnknownPalletError
		unknownCall *UnknownCallError
		codecFail   *CodecFailureError
		expVariant  *ExpectedVariantTypeError
	)
	switch {
	case errors.As(err, &codecFail):
		return &DecodeError{Kind: KindField, Err: err}
	case errors.As(err, &invalidTag), errors.As(err, &trailing), errors.As(err, &underrun),
		errors.Is(err, ErrNeedMoreBytes), errors.Is(err, ErrInvalidBool),
		errors.Is(err, ErrOverflow), errors.Is(err, ErrInvalidUTF8):
		return &DecodeError{Kind: KindInput, Err: err}
	case errors.As(err, &unsupported), errors.As(err, &typeNF), errors.As(err, &expVariant),
		errors.Is(err, ErrUnresolvedType):
		return &DecodeError{Kind: KindMetadata, Err: err}
	case errors.As(err, &unknownPal), errors.As(err, &unknownCall),
		errors.Is(err, ErrSpecVersionNotFound), errors.Is(err, ErrAlreadyRegistered):
		return &DecodeError{Kind: KindDispatch, Err: err}
	default:
		return &DecodeError{Kind: KindUnknown, Err: err}
	}
}
