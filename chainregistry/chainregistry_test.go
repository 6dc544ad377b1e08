package chainregistry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const osmosisAssetList = `{
  "chain_name": "osmosis",
  "assets": [
    {"base": "uosmo", "symbol": "OSMO", "display": "osmo",
     "denom_units": [{"denom": "uosmo", "exponent": 0}, {"denom": "osmo", "exponent": 6}]},
    {"base": "ibc/27394FB092D2ECCD56123C74F36E4C1F926001CEADA9CA97EA622B25F41E5EB2", "symbol": "ATOM",
     "denom_units": [{"denom": "ibc/27394FB092D2ECCD56123C74F36E4C1F926001CEADA9CA97EA622B25F41E5EB2", "exponent": 0}, {"denom": "atom", "exponent": 6}]}
  ]
}`

func writeAssetList(t *testing.T, root, chain, body string) {
	dir := filepath.Join(root, chain)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assetlist.json"), []byte(body), 0o600))
}

func TestGetAssetMapOnDisk(t *testing.T) {
	root := t.TempDir()
	writeAssetList(t, root, "osmosis", osmosisAssetList)
	writeAssetList(t, root, "testnets", `{"chain_name": "testnets", "assets": [{"base": "uosmo", "symbol": "FAKE"}]}`)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "_non-cosmos"), 0o755))

	assets, err := GetAssetMapOnDisk(root, map[string]bool{"testnets": true})
	require.NoError(t, err)

	osmo, ok := assets.Lookup("uosmo")
	assert.True(t, ok)
	assert.Equal(t, "OSMO", osmo.Symbol, "blacklisted directories should not overwrite entries")
	assert.Equal(t, "osmosis", osmo.ChainName)

	highest := GetHighestDenomUnitForAsset(osmo)
	assert.Equal(t, uint(6), highest.Exponent)
	assert.Equal(t, "osmo", highest.Denom)

	_, ok = assets.Lookup("uatom")
	assert.False(t, ok)
}

func TestGetAssetMapOnDiskBadJSON(t *testing.T) {
	root := t.TempDir()
	writeAssetList(t, root, "broken", "{")

	_, err := GetAssetMapOnDisk(root, nil)
	assert.Error(t, err)
}

func TestNilAssetMapLookup(t *testing.T) {
	var assets AssetMap
	_, ok := assets.Lookup("uatom")
	assert.False(t, ok)
}
