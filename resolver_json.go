package desub

import "encoding/json"

// jsonResolver is a Resolver backed by a JSON definition bundle, loaded once
// at construction and immutable thereafter (spec.md §4.3). Its shape is
// grounded on the paritytech/desub Rust workspace's
// extras/src/polkadot/extrinsics.rs, which associates a legacy type-name
// table with an inclusive spec-version range ("minmax") per module, rather
// than one flat table — the same historical runtime can rename or retype a
// field across upgrades.
type jsonResolver struct {
	byChain  map[string][]rangedModuleTypes
	fallback map[string]string
	extrinsic map[string]string
}

// rangedModuleTypes is one {minmax, module, types} entry of the bundle.
type rangedModuleTypes struct {
	Min    *uint32           `json:"min"`
	Max    *uint32           `json:"max"`
	Module string            `json:"module"`
	Types  map[string]string `json:"types"`
}

// jsonResolverDoc is the on-disk shape consumed by NewJSONResolver.
type jsonResolverDoc struct {
	Chains    map[string][]rangedModuleTypes `json:"chains"`
	Fallback  map[string]string              `json:"fallback"`
	Extrinsic map[string]string              `json:"extrinsic"`
}

// NewJSONResolver parses a JSON definition bundle into an immutable
// Resolver. See jsonResolverDoc for the expected document shape.
func NewJSONResolver(data []byte) (Resolver, error) {
	var doc jsonResolverDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &jsonResolver{
		byChain:   doc.Chains,
		fallback:  doc.Fallback,
		extrinsic: doc.Extrinsic,
	}, nil
}

// NewMultiChainResolver merges several backends, trying each in order. This
// is how a consumer registers Polkadot, Kusama, and a custom chain's
// definitions side by side (spec.md §4.3 "multiple backends may coexist").
func NewMultiChainResolver(backends ...Resolver) Resolver {
	return multiResolver(backends)
}

type multiResolver []Resolver

func (m multiResolver) Get(chain ChainTag, spec uint32, module, typeName string) (TypeDef, bool) {
	for _, r := range m {
		if def, ok := r.Get(chain, spec, module, typeName); ok {
			return def, true
		}
	}
	return TypeDef{}, false
}

func (m multiResolver) TryFallback(module, typeName string) (TypeDef, bool) {
	for _, r := range m {
		if def, ok := r.TryFallback(module, typeName); ok {
			return def, true
		}
	}
	return TypeDef{}, false
}

func (m multiResolver) GetExtrinsicType(chain ChainTag, spec uint32, name string) (TypeDef, bool) {
	for _, r := range m {
		if def, ok := r.GetExtrinsicType(chain, spec, name); ok {
			return def, true
		}
	}
	return TypeDef{}, false
}

func (j *jsonResolver) Get(chain ChainTag, spec uint32, module, typeName string) (TypeDef, bool) {
	entries, ok := j.byChain[chain.String()]
	if !ok {
		return TypeDef{}, false
	}
	for _, e := range entries {
		if e.Module != module {
			continue
		}
		if e.Min != nil && spec < *e.Min {
			continue
		}
		if e.Max != nil && spec > *e.Max {
			continue
		}
		if raw, ok := e.Types[typeName]; ok {
			return ParseTypeMarker(raw).Def, true
		}
	}
	return TypeDef{}, false
}

func (j *jsonResolver) TryFallback(module, typeName string) (TypeDef, bool) {
	raw, ok := j.fallback[typeName]
	if !ok {
		return TypeDef{}, false
	}
	return ParseTypeMarker(raw).Def, true
}

func (j *jsonResolver) GetExtrinsicType(chain ChainTag, spec uint32, name string) (TypeDef, bool) {
	raw, ok := j.extrinsic[name]
	if !ok {
		return TypeDef{}, false
	}
	return ParseTypeMarker(raw).Def, true
}
