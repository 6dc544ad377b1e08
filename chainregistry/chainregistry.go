package chainregistry

type AssetList struct {
	ChainName string  `json:"chain_name"`
	Assets    []Asset `json:"assets"`
}

type Asset struct {
	Description string           `json:"description"`
	Base        string           `json:"base"`
	Symbol      string           `json:"symbol"`
	Display     string           `json:"display"`
	DenomUnits  []AssetDenomUnit `json:"denom_units"`
	ChainName   string           `json:"chain_name,omitempty"`
}

type AssetDenomUnit struct {
	Denom    string `json:"denom"`
	Exponent uint   `json:"exponent"`
}

// AssetMap is keyed by the asset's base denomination (uatom, ibc/27394FB0..., factory/...).
type AssetMap map[string]Asset

func (m AssetMap) Lookup(denomBase string) (Asset, bool) {
	if m == nil {
		return Asset{}, false
	}
	asset, ok := m[denomBase]
	return asset, ok
}

func GetHighestDenomUnitForAsset(asset Asset) AssetDenomUnit {
	highestDenomUnit := AssetDenomUnit{Exponent: 0}
	for _, denomUnit := range asset.DenomUnits {
		if denomUnit.Exponent >= highestDenomUnit.Exponent {
			highestDenomUnit = denomUnit
		}
	}

	return highestDenomUnit
}
