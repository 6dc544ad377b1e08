package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/epicexcelsior/awaken-long-tail-chains/config"
	"golang.org/x/time/rate"
)

// Cursor locates the next page. Adapters use whichever field matches their API.
type Cursor struct {
	// Page is 1-based.
	Page   int
	Offset int
	Token  string
}

type Page struct {
	Records []Record
	// Total is the provider-declared result count, 0 when the provider does not declare one.
	Total int
	// NextCursor is the opaque token for the next page of cursor-based APIs.
	NextCursor string
	// HasMore is the provider's own end-of-results flag, nil when it has none.
	HasMore *bool
}

type PageFunc func(ctx context.Context, cursor Cursor) (Page, error)

// Observer receives fetch telemetry. The metrics package implements it.
type Observer interface {
	PageFetched(provider, branch string, records int)
	RequestRetried(provider, branch string)
	BranchFinished(provider, branch string, status BranchStatus)
}

type noopObserver struct{}

func (noopObserver) PageFetched(string, string, int)             {}
func (noopObserver) RequestRetried(string, string)               {}
func (noopObserver) BranchFinished(string, string, BranchStatus) {}

// Options is the pagination and retry discipline shared by every branch of one adapter.
type Options struct {
	PageSize int
	MaxPages int
	// RetryAttempts is the number of consecutive transient failures on one page that abandons the branch.
	RetryAttempts int
	RetryBackoff  time.Duration
	// Limiter spaces requests to the provider. It is shared by all branches of the adapter.
	Limiter  *rate.Limiter
	Observer Observer
}

// NewLimiter allows one request immediately and then one every delay.
func NewLimiter(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = 50
	}
	if o.MaxPages <= 0 {
		o.MaxPages = 200
	}
	if o.RetryAttempts <= 0 {
		o.RetryAttempts = 3
	}
	if o.Limiter == nil {
		o.Limiter = rate.NewLimiter(rate.Inf, 1)
	}
	if o.Observer == nil {
		o.Observer = noopObserver{}
	}
	return o
}

// Paginate requests pages in cursor order until a short page, the declared total, the provider's end flag
// or the page limit. Records accumulated before an error are always returned alongside it.
func (o Options) Paginate(ctx context.Context, provider, branch string, fetch PageFunc, progress func(records, page int)) ([]Record, int, error) {
	o = o.withDefaults()

	var records []Record
	cursor := Cursor{Page: 1}

	for pages := 1; ; pages++ {
		page, err := o.fetchWithRetry(ctx, provider, branch, fetch, cursor)
		if err != nil {
			return records, pages - 1, err
		}

		records = append(records, page.Records...)
		o.Observer.PageFetched(provider, branch, len(page.Records))
		if progress != nil {
			progress(len(page.Records), pages)
		}

		if !o.hasMore(page, len(records)) {
			return records, pages, nil
		}
		if pages >= o.MaxPages {
			config.Log.Warnf("%s branch %s stopped at the safety limit of %d pages", provider, branch, o.MaxPages)
			return records, pages, ErrPageLimitReached
		}

		cursor = Cursor{
			Page:   cursor.Page + 1,
			Offset: cursor.Offset + len(page.Records),
			Token:  page.NextCursor,
		}
	}
}

func (o Options) hasMore(page Page, fetched int) bool {
	if len(page.Records) < o.PageSize {
		return false
	}
	if page.Total > 0 && fetched >= page.Total {
		return false
	}
	if page.HasMore != nil && !*page.HasMore {
		return false
	}
	return true
}

func (o Options) fetchWithRetry(ctx context.Context, provider, branch string, fetch PageFunc, cursor Cursor) (Page, error) {
	failures := 0
	for {
		if err := o.Limiter.Wait(ctx); err != nil {
			return Page{}, err
		}

		page, err := fetch(ctx, cursor)
		if err == nil {
			return page, nil
		}

		var transient *TransientError
		if !errors.As(err, &transient) {
			return Page{}, err
		}

		failures++
		if failures >= o.RetryAttempts {
			return Page{}, fmt.Errorf("giving up on page %d after %d attempts: %w", cursor.Page, failures, err)
		}

		o.Observer.RequestRetried(provider, branch)
		config.Log.Warnf("Error getting %s response for branch %s page %d, backing off and trying again. Err: %v", provider, branch, cursor.Page, err)

		if err := sleepContext(ctx, o.RetryBackoff); err != nil {
			return Page{}, err
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
