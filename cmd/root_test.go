package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/epicexcelsior/awaken-long-tail-chains/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindFlagsPrefersCommandLine(t *testing.T) {
	var conf config.ExportConfig
	cmd := &cobra.Command{Use: "test"}
	config.SetupFetchFlags(&conf.Fetch, cmd)
	config.SetupExportSpecificFlags(&conf, cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--base.address", "osmo1cli"}))

	v := viper.New()
	v.Set("base.chain", "osmosis")
	v.Set("base.address", "osmo1file")
	v.Set("fetch.max-pages", 7)

	bindFlags(cmd, v)
	assert.Equal(t, "osmosis", conf.Base.Chain)
	assert.Equal(t, "osmo1cli", conf.Base.Address)
	assert.Equal(t, 7, conf.Fetch.MaxPages)
	assert.Equal(t, 3, conf.Fetch.RetryAttempts, "unset keys keep the flag default")
}

func TestBindTables(t *testing.T) {
	v := viper.New()
	v.Set("providers.etherscan.page-size", 25)
	v.Set("credentials.etherscan", "KEY")

	var providers map[string]config.Provider
	var credentials map[string]string
	require.NoError(t, bindTables(v, &providers, &credentials))
	assert.Equal(t, 25, providers["etherscan"].PageSize)
	assert.Equal(t, "KEY", credentials["etherscan"])
}

func TestResolveProvidersLayers(t *testing.T) {
	file := filepath.Join(t.TempDir(), "providers.toml")
	require.NoError(t, os.WriteFile(file, []byte("[providers.sui]\nthrottling = 2.0\n"), 0o600))

	merged, err := resolveProviders(map[string]config.Provider{"cosmos": {PageSize: 10}}, file)
	require.NoError(t, err)
	assert.Equal(t, 10, merged["cosmos"].PageSize)
	assert.Equal(t, 0.25, merged["cosmos"].Throttling)
	assert.Equal(t, 2.0, merged["sui"].Throttling)
	assert.Equal(t, 50, merged["sui"].PageSize)

	_, err = resolveProviders(nil, filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestExportRequestCarriesDateWindow(t *testing.T) {
	var conf config.ExportConfig
	conf.Base.Address = "osmo1xyz"
	conf.Base.StartDate = "2024-01-01"

	request, err := exportRequest(&conf)
	require.NoError(t, err)
	assert.Equal(t, "osmo1xyz", request.Address)
	require.NotNil(t, request.StartDate)
	assert.Equal(t, 2024, request.StartDate.Year())
	assert.Nil(t, request.EndDate)

	conf.Base.EndDate = "2023-01-01"
	_, err = exportRequest(&conf)
	assert.Error(t, err, "a reversed window must not turn into an unbounded export")
}
