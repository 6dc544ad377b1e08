package core

import (
	"context"
	"time"

	"github.com/epicexcelsior/awaken-long-tail-chains/canonical"
	"github.com/epicexcelsior/awaken-long-tail-chains/classifier"
	"github.com/epicexcelsior/awaken-long-tail-chains/csv"
	"github.com/epicexcelsior/awaken-long-tail-chains/providers"
)

type ExportRequest struct {
	Address string
	// StartDate and EndDate bound the exported rows, start inclusive and end exclusive. Nil is open.
	StartDate  *time.Time
	EndDate    *time.Time
	OnProgress providers.ProgressFunc
}

// Export is a fetched, classified and rendered wallet history.
type Export struct {
	Metadata Metadata
	// Transactions are the fetched transactions inside the date window, newest first.
	Transactions []canonical.Transaction
	Parsed       []classifier.ParsedTransaction
	Rows         []csv.Row
}

// CSV renders the rows with the fixed header.
func (e Export) CSV() string {
	return csv.Serialize(e.Rows)
}

func (s Service) Export(ctx context.Context, session Session, req ExportRequest) (Export, error) {
	result, err := s.FetchAll(ctx, session.Adapter, req.Address, req.OnProgress)
	if err != nil {
		return Export{}, err
	}

	txs := FilterByDate(result.Transactions, req.StartDate, req.EndDate)
	parsed := classifier.New(session.Resolver).ClassifyAll(txs, req.Address)

	return Export{
		Metadata:     result.Metadata,
		Transactions: txs,
		Parsed:       parsed,
		Rows:         csv.ConvertToRows(parsed, req.Address),
	}, nil
}
