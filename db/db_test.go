package db

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/epicexcelsior/awaken-long-tail-chains/config"
	"github.com/epicexcelsior/awaken-long-tail-chains/denoms"
	"github.com/epicexcelsior/awaken-long-tail-chains/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Connect(config.Database{Sqlite: filepath.Join(t.TempDir(), "awaken.db")})
	require.NoError(t, err)
	return db
}

var started = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func TestRecordExport(t *testing.T) {
	db := openTestDB(t)

	tokens := denoms.NewTokenCache()
	tokens.Remember("0xUSDC", denoms.TokenMetadata{Symbol: "USDC", Decimals: 6, Name: "USD Coin"})

	summary := RunSummary{
		TotalFetched: 10,
		RawRecords:   12,
		Dropped:      1,
		ExportedRows: 9,
		Complete:     false,
		DataSource:   "Etherscan (ethereum)",
		Branches: []providers.BranchStatus{
			{Name: "native", Pages: 2, Records: 8, Complete: true},
			{Name: "token", Pages: 1, Records: 4, Failed: true, Error: "giving up"},
		},
	}
	run, err := RecordExport(db, "ethereum", "0xabc", started, started.Add(time.Minute), summary, tokens)
	require.NoError(t, err)
	require.NotZero(t, run.ID)

	runs, err := GetExportRuns(db, "0xabc", "", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	stored := runs[0]
	assert.Equal(t, "ethereum", stored.Chain)
	assert.Equal(t, "0xabc", stored.Address.Address)
	assert.Equal(t, 10, stored.TotalFetched)
	assert.Equal(t, 12, stored.RawRecords)
	assert.Equal(t, 1, stored.Dropped)
	assert.Equal(t, 9, stored.ExportedRows)
	assert.False(t, stored.Complete)
	require.NotNil(t, stored.FinishedAt)
	assert.True(t, stored.FinishedAt.Equal(started.Add(time.Minute)))
	require.Len(t, stored.Branches, 2)
	assert.True(t, stored.Branches[1].Failed)

	stored2, err := GetTokens(db, "ethereum")
	require.NoError(t, err)
	require.Len(t, stored2, 1)
	assert.Equal(t, "0xusdc", stored2[0].Contract)
	assert.Equal(t, 6, stored2[0].Decimals)
}

func TestRecordExportReusesAddressAndFiltersByChain(t *testing.T) {
	db := openTestDB(t)

	_, err := RecordExport(db, "osmosis", "osmo1wallet", started, started, RunSummary{Complete: true}, nil)
	require.NoError(t, err)
	_, err = RecordExport(db, "cosmoshub", "osmo1wallet", started.Add(time.Hour), started.Add(time.Hour), RunSummary{Err: errors.New("exhausted")}, nil)
	require.NoError(t, err)
	_, err = RecordExport(db, "osmosis", "osmo1other", started, started, RunSummary{}, nil)
	require.NoError(t, err)

	var addresses int64
	require.NoError(t, db.Model(&Address{}).Count(&addresses).Error)
	assert.Equal(t, int64(2), addresses)

	runs, err := GetExportRuns(db, "osmo1wallet", "", 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "cosmoshub", runs[0].Chain, "newest first")
	assert.Equal(t, "exhausted", runs[0].Error)
	assert.True(t, runs[1].Complete)

	runs, err = GetExportRuns(db, "osmo1wallet", "osmosis", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	runs, err = GetExportRuns(db, "osmo1wallet", "", 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestUpsertTokensRefreshesMetadata(t *testing.T) {
	db := openTestDB(t)

	first := denoms.NewTokenCache()
	first.Remember("0x2::coin::X", denoms.TokenMetadata{Symbol: "X", Decimals: 9})
	require.NoError(t, UpsertTokens(db, "sui", first))

	second := denoms.NewTokenCache()
	second.Remember("0x2::coin::X", denoms.TokenMetadata{Symbol: "XX", Decimals: 6})
	require.NoError(t, UpsertTokens(db, "sui", second))
	require.NoError(t, UpsertTokens(db, "sui", denoms.NewTokenCache()))

	tokens, err := GetTokens(db, "sui")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "XX", tokens[0].Symbol)
	assert.Equal(t, 6, tokens[0].Decimals)
}
