package providers

import (
	"context"

	"github.com/epicexcelsior/awaken-long-tail-chains/canonical"
)

// Record is one provider-native item tagged with the adapter and query branch that produced it.
// Payload holds the adapter's own response type; only that adapter's ToCanonical understands it.
type Record struct {
	Provider string
	Branch   string
	// Address is the wallet the query was issued for.
	Address string
	Payload interface{}
}

// ProgressFunc receives the cumulative record count and the page number that was just fetched.
type ProgressFunc func(count int, page int)

// Adapter owns pagination, retry and rate limiting against one upstream API, and the translation of
// its records into canonical transactions.
type Adapter interface {
	Name() string
	Chain() string
	IsValidAddress(address string) bool
	FetchAll(ctx context.Context, address string, onProgress ProgressFunc) (FetchResult, error)
	ToCanonical(record Record) (*canonical.Transaction, error)
}

// Credentials resolves an overridden API key for a provider. A missing key means "use the built-in default".
type Credentials interface {
	Credential(provider string) (string, bool)
}

type FetchResult struct {
	// Batches holds one slice of records per branch, in branch declaration order.
	Batches     [][]Record
	Branches    []BranchStatus
	SourceLabel string
}

// Total is the number of records across every batch.
func (r FetchResult) Total() int {
	total := 0
	for _, batch := range r.Batches {
		total += len(batch)
	}
	return total
}

// Complete is true when every branch was read to its end.
func (r FetchResult) Complete() bool {
	for _, b := range r.Branches {
		if !b.Complete {
			return false
		}
	}
	return true
}

type BranchStatus struct {
	Name     string
	Pages    int
	Records  int
	Complete bool
	// Failed is set when the branch stopped on an error rather than at the end of the data or the page limit.
	Failed bool
	Error  string
}

// ValidateAddress fails fast, before any network call, when the adapter rejects the address.
func ValidateAddress(adapter Adapter, address string) error {
	if !adapter.IsValidAddress(address) {
		return &ValidationError{Provider: adapter.Name(), Chain: adapter.Chain(), Address: address}
	}
	return nil
}

type noCredentials struct{}

func (noCredentials) Credential(string) (string, bool) { return "", false }

// NoCredentials is used when a caller has no credential store.
var NoCredentials Credentials = noCredentials{}
