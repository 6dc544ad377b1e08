package cosmos

import (
	"fmt"
	"regexp"

	"github.com/cosmos/cosmos-sdk/types/bech32"
)

// accountAddressRegex accepts 20 byte (secp256k1) and 32 byte (module/ICA) account addresses.
func accountAddressRegex(prefix string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`^%s1[02-9ac-hj-np-z]{38}([02-9ac-hj-np-z]{20})?$`, regexp.QuoteMeta(prefix)))
}

// IsValidBech32Address checks the shape against the regex first and then verifies the checksum and prefix.
func IsValidBech32Address(address, prefix string, addressRegex *regexp.Regexp) bool {
	if !addressRegex.MatchString(address) {
		return false
	}

	hrp, bz, err := bech32.DecodeAndConvert(address)
	if err != nil {
		return false
	}

	return hrp == prefix && (len(bz) == 20 || len(bz) == 32)
}
