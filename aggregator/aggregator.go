package aggregator

import (
	"errors"
	"sort"
	"time"

	"github.com/epicexcelsior/awaken-long-tail-chains/canonical"
	"github.com/epicexcelsior/awaken-long-tail-chains/config"
	"github.com/epicexcelsior/awaken-long-tail-chains/providers"
)

// Mapper is the half of providers.Adapter the aggregator needs.
type Mapper interface {
	ToCanonical(record providers.Record) (*canonical.Transaction, error)
}

type Result struct {
	// Transactions holds one entry per distinct hash, newest first.
	Transactions []canonical.Transaction
	// Dropped counts records the mapper rejected.
	Dropped int
}

// Merge maps every record, deduplicates by hash and sorts newest first. Batches are walked in order and
// the last record processed for a hash wins. Records without a usable timestamp are stamped with
// fetchedAt and flagged as estimated rather than dropped.
func Merge(batches [][]providers.Record, mapper Mapper, fetchedAt time.Time) Result {
	var result Result
	byHash := map[string]int{}

	for _, batch := range batches {
		for _, record := range batch {
			tx, err := mapper.ToCanonical(record)
			if err != nil || tx == nil {
				result.Dropped++
				var malformed *providers.MalformedRecordError
				if err != nil && !errors.As(err, &malformed) {
					config.Log.Warnf("Unexpected error mapping %s record from branch %s: %v", record.Provider, record.Branch, err)
				} else {
					config.Log.Debugf("Dropping %s record from branch %s: %v", record.Provider, record.Branch, err)
				}
				continue
			}

			merged := *tx
			if merged.Timestamp.IsZero() {
				merged.Timestamp = fetchedAt.UTC()
				merged.TimestampEstimated = true
			}

			if idx, ok := byHash[merged.Hash]; ok {
				result.Transactions[idx] = merged
				continue
			}
			byHash[merged.Hash] = len(result.Transactions)
			result.Transactions = append(result.Transactions, merged)
		}
	}

	SortNewestFirst(result.Transactions)
	return result
}

// SortNewestFirst orders by timestamp descending, then by hash so equal timestamps are stable across runs.
func SortNewestFirst(txs []canonical.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Timestamp.Equal(txs[j].Timestamp) {
			return txs[i].Timestamp.After(txs[j].Timestamp)
		}
		return txs[i].Hash < txs[j].Hash
	})
}
