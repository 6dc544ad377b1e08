package providers

import (
	"context"
	"errors"
	"sync"

	"github.com/epicexcelsior/awaken-long-tail-chains/config"
	"golang.org/x/sync/errgroup"
)

// Branch is one independent query shape for a wallet's history.
type Branch struct {
	Name  string
	Fetch PageFunc
}

type BranchResult struct {
	Status  BranchStatus
	Records []Record
}

// RunBranches fetches every branch to exhaustion concurrently. Branch failures never stop the other
// branches; each result carries its own status. Results keep the declaration order.
func (o Options) RunBranches(ctx context.Context, provider string, branches []Branch, onProgress ProgressFunc) []BranchResult {
	o = o.withDefaults()
	results := make([]BranchResult, len(branches))

	var mu sync.Mutex
	total := 0
	progress := func(records, page int) {
		mu.Lock()
		defer mu.Unlock()
		total += records
		if onProgress != nil {
			onProgress(total, page)
		}
	}

	var g errgroup.Group
	for i, branch := range branches {
		i, branch := i, branch
		g.Go(func() error {
			records, pages, err := o.Paginate(ctx, provider, branch.Name, branch.Fetch, progress)
			status := BranchStatus{
				Name:     branch.Name,
				Pages:    pages,
				Records:  len(records),
				Complete: err == nil,
			}
			if err != nil {
				status.Error = err.Error()
				status.Failed = !errors.Is(err, ErrPageLimitReached)
				if status.Failed {
					config.Log.Warnf("%s branch %s abandoned after %d pages with %d records. Err: %v", provider, branch.Name, pages, len(records), err)
				}
			}
			o.Observer.BranchFinished(provider, branch.Name, status)
			results[i] = BranchResult{Status: status, Records: records}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Collect assembles branch results into a FetchResult. It fails with ExhaustedFetchError only when
// every branch failed and no records were obtained.
func Collect(provider, address, sourceLabel string, results []BranchResult) (FetchResult, error) {
	fetched := FetchResult{SourceLabel: sourceLabel}
	allFailed := len(results) > 0
	for _, result := range results {
		fetched.Batches = append(fetched.Batches, result.Records)
		fetched.Branches = append(fetched.Branches, result.Status)
		if !result.Status.Failed {
			allFailed = false
		}
	}

	if allFailed && fetched.Total() == 0 {
		return fetched, &ExhaustedFetchError{Provider: provider, Address: address, Branches: fetched.Branches}
	}
	return fetched, nil
}
