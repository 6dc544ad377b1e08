package core

import (
	"context"
	"errors"
	"time"

	"github.com/epicexcelsior/awaken-long-tail-chains/aggregator"
	"github.com/epicexcelsior/awaken-long-tail-chains/canonical"
	"github.com/epicexcelsior/awaken-long-tail-chains/config"
	"github.com/epicexcelsior/awaken-long-tail-chains/providers"
)

// Metadata describes how complete a fetch was. Partial results are never reported as complete.
type Metadata struct {
	Address string
	Chain   string
	// TotalFetched counts distinct transactions after mapping and deduplication.
	TotalFetched int
	// RawRecords counts provider records before mapping, across every branch.
	RawRecords           int
	FirstTransactionDate *time.Time
	LastTransactionDate  *time.Time
	DataSource           string
	Complete             bool
	Branches             []providers.BranchStatus
	DroppedCount         int
	FetchedAt            time.Time
}

type Result struct {
	Transactions []canonical.Transaction
	Metadata     Metadata
}

// Recorder receives one call per finished fetch. The metrics package implements it.
type Recorder interface {
	FetchCompleted(chain, outcome string, duration time.Duration, dropped int)
}

// Fetch outcomes passed to Recorder.
const (
	OutcomeComplete  = "complete"
	OutcomePartial   = "partial"
	OutcomeExhausted = "exhausted"
	OutcomeInvalid   = "invalid"
	OutcomeError     = "error"
)

// Service runs the fetch pipeline. The zero value is usable.
type Service struct {
	Recorder Recorder
	// Now defaults to time.Now.
	Now func() time.Time
}

// FetchAll runs the default Service.
func FetchAll(ctx context.Context, adapter providers.Adapter, address string, onProgress providers.ProgressFunc) (Result, error) {
	return Service{}.FetchAll(ctx, adapter, address, onProgress)
}

// FetchAll paginates every branch of the adapter, then maps, deduplicates and sorts the records newest
// first. It fails only on an invalid address or when every branch failed without yielding a record.
func (s Service) FetchAll(ctx context.Context, adapter providers.Adapter, address string, onProgress providers.ProgressFunc) (Result, error) {
	started := s.now()

	fetched, err := adapter.FetchAll(ctx, address, onProgress)
	if err != nil {
		s.record(adapter.Chain(), outcomeForError(err), started, 0)
		return Result{}, err
	}

	merged := aggregator.Merge(fetched.Batches, adapter, started)

	metadata := Metadata{
		Address:      address,
		Chain:        adapter.Chain(),
		TotalFetched: len(merged.Transactions),
		RawRecords:   fetched.Total(),
		DataSource:   fetched.SourceLabel,
		Complete:     fetched.Complete(),
		Branches:     fetched.Branches,
		DroppedCount: merged.Dropped,
		FetchedAt:    started.UTC(),
	}
	metadata.FirstTransactionDate, metadata.LastTransactionDate = dateRange(merged.Transactions)

	if merged.Dropped > 0 {
		config.Log.Infof("Dropped %d of %d %s records for %s that could not be mapped", merged.Dropped, metadata.RawRecords, adapter.Name(), address)
	}
	if !metadata.Complete {
		config.Log.Warnf("History for %s on %s is incomplete, %d transactions were fetched", address, metadata.Chain, metadata.TotalFetched)
	}

	outcome := OutcomeComplete
	if !metadata.Complete {
		outcome = OutcomePartial
	}
	s.record(metadata.Chain, outcome, started, merged.Dropped)

	return Result{Transactions: merged.Transactions, Metadata: metadata}, nil
}

func (s Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s Service) record(chain, outcome string, started time.Time, dropped int) {
	if s.Recorder == nil {
		return
	}
	s.Recorder.FetchCompleted(chain, outcome, s.now().Sub(started), dropped)
}

func outcomeForError(err error) string {
	var exhausted *providers.ExhaustedFetchError
	var validation *providers.ValidationError
	switch {
	case errors.As(err, &exhausted):
		return OutcomeExhausted
	case errors.As(err, &validation):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}

// dateRange ignores estimated timestamps; they only describe when the fetch ran.
func dateRange(txs []canonical.Transaction) (*time.Time, *time.Time) {
	var first, last *time.Time
	for i := range txs {
		if txs[i].TimestampEstimated {
			continue
		}
		ts := txs[i].Timestamp
		if first == nil || ts.Before(*first) {
			first = &ts
		}
		if last == nil || ts.After(*last) {
			last = &ts
		}
	}
	return first, last
}

// FilterByDate keeps transactions with start <= timestamp < end. Nil bounds are open.
func FilterByDate(txs []canonical.Transaction, start, end *time.Time) []canonical.Transaction {
	if start == nil && end == nil {
		return txs
	}
	filtered := make([]canonical.Transaction, 0, len(txs))
	for _, tx := range txs {
		if start != nil && tx.Timestamp.Before(*start) {
			continue
		}
		if end != nil && !tx.Timestamp.Before(*end) {
			continue
		}
		filtered = append(filtered, tx)
	}
	return filtered
}
