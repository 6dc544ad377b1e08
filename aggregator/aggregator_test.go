package aggregator

import (
	"errors"
	"testing"
	"time"

	"github.com/epicexcelsior/awaken-long-tail-chains/canonical"
	"github.com/epicexcelsior/awaken-long-tail-chains/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	hash   string
	ts     time.Time
	branch string
}

// fakeMapper turns fakeTx payloads into transactions and rejects the rest.
type fakeMapper struct{}

func (fakeMapper) ToCanonical(record providers.Record) (*canonical.Transaction, error) {
	payload, ok := record.Payload.(fakeTx)
	if !ok {
		return nil, errors.New("boom")
	}
	if payload.hash == "" {
		return nil, &providers.MalformedRecordError{Provider: "fake", Reason: "no hash"}
	}
	return &canonical.Transaction{Hash: payload.hash, Timestamp: payload.ts, Memo: payload.branch}, nil
}

func rec(branch, hash string, ts time.Time) providers.Record {
	return providers.Record{Provider: "fake", Branch: branch, Payload: fakeTx{hash: hash, ts: ts, branch: branch}}
}

var (
	t1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	t3 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
)

func hashes(txs []canonical.Transaction) []string {
	out := make([]string, len(txs))
	for i, tx := range txs {
		out[i] = tx.Hash
	}
	return out
}

func TestMergeDeduplicatesLastWins(t *testing.T) {
	batches := [][]providers.Record{
		{rec("sender", "A", t1), rec("sender", "B", t2)},
		{rec("recipient", "B", t2), rec("recipient", "C", t3)},
	}

	result := Merge(batches, fakeMapper{}, t3)
	assert.Equal(t, []string{"C", "B", "A"}, hashes(result.Transactions))
	assert.Equal(t, "recipient", result.Transactions[1].Memo, "the later batch wins")
	assert.Equal(t, 0, result.Dropped)
}

func TestMergeOneEntryPerHash(t *testing.T) {
	var batch []providers.Record
	for i := 0; i < 5; i++ {
		batch = append(batch, rec("a", "X", t1), rec("a", "Y", t2))
	}
	result := Merge([][]providers.Record{batch, batch}, fakeMapper{}, t3)
	assert.Equal(t, []string{"Y", "X"}, hashes(result.Transactions))
}

func TestMergeDropsMalformedRecords(t *testing.T) {
	batches := [][]providers.Record{{
		rec("a", "A", t1),
		rec("a", "", t2),
		{Provider: "fake", Payload: 12},
		rec("a", "B", t3),
	}}

	result := Merge(batches, fakeMapper{}, t3)
	assert.Equal(t, []string{"B", "A"}, hashes(result.Transactions))
	assert.Equal(t, 2, result.Dropped)
}

func TestMergeSubstitutesFetchTimeForMissingTimestamps(t *testing.T) {
	fetchedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	result := Merge([][]providers.Record{{rec("a", "A", t1), rec("a", "Z", time.Time{})}}, fakeMapper{}, fetchedAt)

	require.Len(t, result.Transactions, 2)
	estimated := result.Transactions[0]
	assert.Equal(t, "Z", estimated.Hash)
	assert.True(t, estimated.TimestampEstimated)
	assert.True(t, estimated.Timestamp.Equal(fetchedAt))
	assert.Equal(t, time.UTC, estimated.Timestamp.Location())
	assert.False(t, result.Transactions[1].TimestampEstimated)
}

func TestMergeTieBreaksByHash(t *testing.T) {
	batches := [][]providers.Record{{rec("a", "m", t1), rec("a", "b", t1), rec("a", "z", t1)}}
	first := Merge(batches, fakeMapper{}, t3)
	assert.Equal(t, []string{"b", "m", "z"}, hashes(first.Transactions))

	reversed := [][]providers.Record{{rec("a", "z", t1), rec("a", "m", t1), rec("a", "b", t1)}}
	assert.Equal(t, hashes(first.Transactions), hashes(Merge(reversed, fakeMapper{}, t3).Transactions))
}

func TestMergeEmpty(t *testing.T) {
	result := Merge(nil, fakeMapper{}, t3)
	assert.Empty(t, result.Transactions)
	assert.Equal(t, 0, result.Dropped)
}
