package denoms

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/epicexcelsior/awaken-long-tail-chains/chainregistry"
)

// NativeAsset describes the fee/staking asset of a chain.
type NativeAsset struct {
	Denom    string
	Symbol   string
	Decimals int
}

// Resolver maps raw denominations to display metadata for one chain and one fetch session.
type Resolver struct {
	Native NativeAsset
	Assets chainregistry.AssetMap
	Tokens *TokenCache
}

// Resolve never fails: unknown denominations get a best-effort symbol and the native decimals.
func (r Resolver) Resolve(denom string) TokenMetadata {
	denom = strings.TrimSpace(denom)
	if denom == "" || strings.EqualFold(denom, r.Native.Denom) {
		return TokenMetadata{Symbol: r.Native.Symbol, Decimals: r.Native.Decimals, Name: r.Native.Symbol}
	}

	if md, ok := r.Tokens.Get(denom); ok {
		return md
	}

	if asset, ok := r.Assets.Lookup(denom); ok && asset.Symbol != "" {
		unit := chainregistry.GetHighestDenomUnitForAsset(asset)
		return TokenMetadata{Symbol: asset.Symbol, Decimals: int(unit.Exponent), Name: asset.Display}
	}

	return GuessMetadata(denom, r.Native.Decimals)
}

// ResolveWithHints applies explicit symbol/decimals carried by a provider event to contracts the session
// has not seen yet, and records them so later transactions resolve the contract the same way. A contract
// already in the token cache keeps the metadata on record whatever its hints say.
func (r Resolver) ResolveWithHints(denom, symbol, decimals string) TokenMetadata {
	denom = strings.TrimSpace(denom)
	if denom == "" || strings.EqualFold(denom, r.Native.Denom) {
		return r.Resolve(denom)
	}
	if md, ok := r.Tokens.Get(denom); ok {
		return md
	}

	md := r.Resolve(denom)
	hinted := false
	if symbol != "" {
		md.Symbol = symbol
		hinted = true
	}
	if d, err := strconv.Atoi(strings.TrimSpace(decimals)); err == nil && d >= 0 {
		md.Decimals = d
		hinted = true
	}
	if hinted {
		return r.Tokens.Remember(denom, md)
	}
	return md
}

// GuessMetadata derives a display symbol from the denomination's own naming conventions.
func GuessMetadata(denom string, defaultDecimals int) TokenMetadata {
	switch {
	case strings.HasPrefix(denom, "factory/"):
		parts := strings.Split(denom, "/")
		sub := parts[len(parts)-1]
		if len(sub) > 1 && sub[0] == 'u' && isLowerAlpha(sub[1:]) {
			return TokenMetadata{Symbol: strings.ToUpper(sub[1:]), Decimals: 6, Name: denom}
		}
		return TokenMetadata{Symbol: strings.ToUpper(sub), Decimals: defaultDecimals, Name: denom}
	case strings.HasPrefix(denom, "ibc/"), strings.HasPrefix(denom, "gamm/"):
		return TokenMetadata{Symbol: denom, Decimals: defaultDecimals, Name: denom}
	case strings.Contains(denom, "::"):
		// Move coin types: 0x2::sui::SUI
		parts := strings.Split(denom, "::")
		return TokenMetadata{Symbol: parts[len(parts)-1], Decimals: defaultDecimals, Name: denom}
	case strings.HasPrefix(denom, "0x"):
		return TokenMetadata{Symbol: denom, Decimals: defaultDecimals, Name: denom}
	case len(denom) > 1 && denom[0] == 'u' && isLowerAlpha(denom[1:]):
		return TokenMetadata{Symbol: strings.ToUpper(denom[1:]), Decimals: 6, Name: denom}
	case len(denom) >= 5 && denom[0] == 'a' && isLowerAlpha(denom[1:]):
		return TokenMetadata{Symbol: strings.ToUpper(denom[1:]), Decimals: 18, Name: denom}
	}
	return TokenMetadata{Symbol: strings.ToUpper(denom), Decimals: defaultDecimals, Name: denom}
}

func isLowerAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLower(r) || r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
