package desub

import (
	"os"
	"sync"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/archivete/desub-go/internal/log"
)

// Options configures a Decoder (spec.md §5).
type Options struct {
	// Chain selects which chain's legacy type definitions Resolver lookups
	// apply to. Irrelevant if only V14+ (portable) metadata is ever
	// registered.
	Chain ChainTag
	// Resolver backs the legacy (<14) dialect's type-name lookups. May be
	// nil if the Decoder will only ever register portable metadata.
	Resolver Resolver
	// Lenient opts into best-effort decoding of unresolved legacy types as
	// opaque bytes instead of failing (spec.md §9 Open Question; default is
	// strict/hard-error).
	Lenient bool
	Logger  *log.Helper
}

// Decoder is the dispatch decoder spec.md §5 describes: a set of metadata
// blobs registered per runtime spec version, used to decode extrinsics
// against whichever version produced them. RegisterVersion is the sole
// mutating operation and is exclusive with concurrent decodes, via mu.
type Decoder struct {
	mu sync.RWMutex

	chain    ChainTag
	resolver Resolver
	lenient  bool
	logger   *log.Helper

	metadata map[uint32]*Metadata
}

// New constructs an empty Decoder; metadata is added via RegisterVersion.
func New(opts Options) *Decoder {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Decoder{
		chain:    opts.Chain,
		resolver: opts.Resolver,
		lenient:  opts.Lenient,
		logger:   logger,
		metadata: make(map[uint32]*Metadata),
	}
}

// NewFromFile memory-maps a metadata blob and registers it under specVersion,
// mirroring the teacher's pe.New mmap-backed file constructor. The mapping
// is copied into an owned buffer and unmapped before return, since a
// Metadata's Fields/Variants/Registry hold string and []byte data that must
// outlive the mapping (spec.md's ownership invariant applies to metadata as
// much as to decoded values).
func NewFromFile(path string, specVersion uint32, opts Options) (*Decoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, err
	}
	data := make([]byte, len(m))
	copy(data, m)
	if err := m.Unmap(); err != nil {
		return nil, err
	}

	d := New(opts)
	if err := d.RegisterVersion(specVersion, data); err != nil {
		return nil, err
	}
	return d, nil
}

// HasVersion reports whether metadata for specVersion is registered.
func (d *Decoder) HasVersion(specVersion uint32) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.metadata[specVersion]
	return ok
}

// RegisterVersion parses data as a metadata blob and registers it under
// specVersion (spec.md §5, §9). Re-registering an already-registered version
// is an error: the Decoder models one metadata blob per spec version
// globally, with no fork/re-genesis handling (see DESIGN.md's Open Question
// decision).
func (d *Decoder) RegisterVersion(specVersion uint32, data []byte) error {
	meta, err := DecodeMetadata(data)
	if err != nil {
		return wrapDecodeError(err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.metadata[specVersion]; exists {
		return wrapDecodeError(ErrAlreadyRegistered)
	}
	d.metadata[specVersion] = meta
	d.logger.Infof("registered metadata v%d for spec version %d (chain %s)", meta.Version, specVersion, d.chain)
	return nil
}

// SetLegacyExtrinsicMetadata overrides the signed-extension list used when
// decoding extrinsics against specVersion's metadata. Legacy (<14) metadata
// does not self-describe its extrinsic envelope the way portable metadata
// does, so callers decoding pre-V14 chains must supply this out of band
// (spec.md §4.5).
func (d *Decoder) SetLegacyExtrinsicMetadata(specVersion uint32, extrinsic ExtrinsicMetadata) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	meta, ok := d.metadata[specVersion]
	if !ok {
		return ErrSpecVersionNotFound
	}
	meta.Extrinsic = extrinsic
	return nil
}

// DecodeExtrinsic decodes a single self-framed extrinsic against the
// metadata registered for specVersion.
func (d *Decoder) DecodeExtrinsic(specVersion uint32, data []byte) (*ExtrinsicValue, error) {
	d.mu.RLock()
	meta, ok := d.metadata[specVersion]
	d.mu.RUnlock()
	if !ok {
		return nil, wrapDecodeError(ErrSpecVersionNotFound)
	}

	ev, err := DecodeExtrinsic(data, specVersion, meta, d.typeSourceFactory(specVersion, meta))
	if err != nil {
		d.logger.Debugf("decode failed for spec %d: %v", specVersion, err)
	}
	return ev, err
}

// DecodeExtrinsics decodes a block body (Compact<count> of self-framed
// extrinsics) against the metadata registered for specVersion. In lenient
// mode a failing extrinsic is recorded in its result slot and decoding
// continues with the next one; in strict mode the first failure aborts.
func (d *Decoder) DecodeExtrinsics(specVersion uint32, data []byte) ([]ExtrinsicResult, error) {
	d.mu.RLock()
	meta, ok := d.metadata[specVersion]
	d.mu.RUnlock()
	if !ok {
		return nil, wrapDecodeError(ErrSpecVersionNotFound)
	}

	return DecodeExtrinsics(data, specVersion, meta, d.typeSourceFactory(specVersion, meta), d.lenient)
}

// typeSourceFactory picks the portable or legacy TypeSourceFactory depending
// on which dialect meta was decoded as (Registry is non-nil only for V14+).
func (d *Decoder) typeSourceFactory(specVersion uint32, meta *Metadata) TypeSourceFactory {
	if meta.Registry != nil {
		return meta.Registry
	}
	return NewLegacySourceFactory(d.resolver, d.chain, specVersion, d.lenient)
}
