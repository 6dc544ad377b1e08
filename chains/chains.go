package chains

import (
	"fmt"
	"sort"
	"strings"

	"github.com/epicexcelsior/awaken-long-tail-chains/denoms"
)

// Provider kinds. Each maps to one adapter package.
const (
	ProviderCosmos    = "cosmos"
	ProviderEtherscan = "etherscan"
	ProviderSui       = "sui"
)

type Chain struct {
	Name        string
	DisplayName string
	Provider    string
	APIURL      string
	// ChainID is sent to multi-chain APIs (the Etherscan v2 chainid parameter).
	ChainID string
	// AddressPrefix is the bech32 human-readable part for Cosmos chains.
	AddressPrefix string
	Native        denoms.NativeAsset
}

const etherscanV2 = "https://api.etherscan.io/v2/api"

var presets = map[string]Chain{
	"cosmoshub": {
		Name: "cosmoshub", DisplayName: "Cosmos Hub", Provider: ProviderCosmos,
		APIURL: "https://cosmos-rest.publicnode.com", AddressPrefix: "cosmos",
		Native: denoms.NativeAsset{Denom: "uatom", Symbol: "ATOM", Decimals: 6},
	},
	"osmosis": {
		Name: "osmosis", DisplayName: "Osmosis", Provider: ProviderCosmos,
		APIURL: "https://osmosis-rest.publicnode.com", AddressPrefix: "osmo",
		Native: denoms.NativeAsset{Denom: "uosmo", Symbol: "OSMO", Decimals: 6},
	},
	"juno": {
		Name: "juno", DisplayName: "Juno", Provider: ProviderCosmos,
		APIURL: "https://juno-rest.publicnode.com", AddressPrefix: "juno",
		Native: denoms.NativeAsset{Denom: "ujuno", Symbol: "JUNO", Decimals: 6},
	},
	"akash": {
		Name: "akash", DisplayName: "Akash", Provider: ProviderCosmos,
		APIURL: "https://akash-rest.publicnode.com", AddressPrefix: "akash",
		Native: denoms.NativeAsset{Denom: "uakt", Symbol: "AKT", Decimals: 6},
	},
	"stargaze": {
		Name: "stargaze", DisplayName: "Stargaze", Provider: ProviderCosmos,
		APIURL: "https://stargaze-rest.publicnode.com", AddressPrefix: "stars",
		Native: denoms.NativeAsset{Denom: "ustars", Symbol: "STARS", Decimals: 6},
	},
	"injective": {
		Name: "injective", DisplayName: "Injective", Provider: ProviderCosmos,
		APIURL: "https://injective-rest.publicnode.com", AddressPrefix: "inj",
		Native: denoms.NativeAsset{Denom: "inj", Symbol: "INJ", Decimals: 18},
	},
	"ethereum": {
		Name: "ethereum", DisplayName: "Ethereum", Provider: ProviderEtherscan,
		APIURL: etherscanV2, ChainID: "1",
		Native: denoms.NativeAsset{Denom: "wei", Symbol: "ETH", Decimals: 18},
	},
	"base": {
		Name: "base", DisplayName: "Base", Provider: ProviderEtherscan,
		APIURL: etherscanV2, ChainID: "8453",
		Native: denoms.NativeAsset{Denom: "wei", Symbol: "ETH", Decimals: 18},
	},
	"arbitrum": {
		Name: "arbitrum", DisplayName: "Arbitrum One", Provider: ProviderEtherscan,
		APIURL: etherscanV2, ChainID: "42161",
		Native: denoms.NativeAsset{Denom: "wei", Symbol: "ETH", Decimals: 18},
	},
	"polygon": {
		Name: "polygon", DisplayName: "Polygon PoS", Provider: ProviderEtherscan,
		APIURL: etherscanV2, ChainID: "137",
		Native: denoms.NativeAsset{Denom: "wei", Symbol: "POL", Decimals: 18},
	},
	"sui": {
		Name: "sui", DisplayName: "Sui", Provider: ProviderSui,
		APIURL: "https://fullnode.mainnet.sui.io:443",
		Native: denoms.NativeAsset{Denom: "0x2::sui::SUI", Symbol: "SUI", Decimals: 9},
	},
}

// Lookup finds a preset by name, case-insensitively.
func Lookup(name string) (Chain, error) {
	chain, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Chain{}, fmt.Errorf("unsupported chain %q, expected one of: %s", name, strings.Join(Names(), ", "))
	}
	return chain, nil
}

// Names lists the supported presets alphabetically.
func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func All() []Chain {
	all := make([]Chain, 0, len(presets))
	for _, name := range Names() {
		all = append(all, presets[name])
	}
	return all
}

// WithAPIURL returns a copy of the chain pointed at another endpoint.
func (c Chain) WithAPIURL(url string) Chain {
	if strings.TrimSpace(url) != "" {
		c.APIURL = strings.TrimRight(url, "/")
	}
	return c
}
