package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/epicexcelsior/awaken-long-tail-chains/canonical"
	"github.com/epicexcelsior/awaken-long-tail-chains/chains"
	"github.com/epicexcelsior/awaken-long-tail-chains/classifier"
	"github.com/epicexcelsior/awaken-long-tail-chains/config"
	"github.com/epicexcelsior/awaken-long-tail-chains/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	wallet      = "osmo1qypqxpq9qcrsszg2pvxq6rs0zqg3yyc5helwsw"
	counterpart = "osmo1z5tpwxqergd3c8g7ruszzg3rysjjvfegqutqcc"
)

var fetchTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func bankSend(from, to, amount string) string {
	return fmt.Sprintf(`{"body": {"messages": [{"@type": "/cosmos.bank.v1beta1.MsgSend", "from_address": %q, "to_address": %q,
  "amount": [{"denom": "uosmo", "amount": %q}]}], "memo": "rent"}, "auth_info": {"fee": {"amount": [{"denom": "uosmo", "amount": "2500"}]}}}`,
		from, to, amount)
}

func txResponse(hash, timestamp string) string {
	return fmt.Sprintf(`{"txhash": %q, "height": "100", "timestamp": %q, "code": 0}`, hash, timestamp)
}

func page(t *testing.T, pairs ...[2]string) []byte {
	t.Helper()
	txs := make([]json.RawMessage, 0, len(pairs))
	responses := make([]json.RawMessage, 0, len(pairs))
	for _, pair := range pairs {
		txs = append(txs, json.RawMessage(pair[0]))
		responses = append(responses, json.RawMessage(pair[1]))
	}
	body, err := json.Marshal(map[string]interface{}{
		"txs":          txs,
		"tx_responses": responses,
		"pagination":   map[string]string{"total": fmt.Sprint(len(pairs))},
	})
	require.NoError(t, err)
	return body
}

// lcd serves the sender and recipient branches from separate handlers.
func lcd(t *testing.T, sender, recipient http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Query().Get("events"), "message.sender") {
			sender(w, r)
			return
		}
		recipient(w, r)
	}))
	t.Cleanup(server.Close)
	return server
}

func unavailable(calls *int, mu *sync.Mutex) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		*calls++
		mu.Unlock()
		w.WriteHeader(http.StatusServiceUnavailable)
	}
}

func newSession(t *testing.T, url string) Session {
	t.Helper()
	chain, err := chains.Lookup("osmosis")
	require.NoError(t, err)

	session, err := NewSession(chain.WithAPIURL(url), AdapterSettings{
		Fetch:     config.Fetch{MaxPages: 5, RetryAttempts: 3, HTTPTimeout: 5},
		Providers: map[string]config.Provider{chains.ProviderCosmos: {PageSize: 10}},
	})
	require.NoError(t, err)
	return session
}

type recordedFetch struct {
	chain   string
	outcome string
	dropped int
}

type fakeRecorder struct {
	fetches []recordedFetch
}

func (r *fakeRecorder) FetchCompleted(chain, outcome string, _ time.Duration, dropped int) {
	r.fetches = append(r.fetches, recordedFetch{chain: chain, outcome: outcome, dropped: dropped})
}

func newService(recorder *fakeRecorder) Service {
	return Service{Recorder: recorder, Now: func() time.Time { return fetchTime }}
}

func TestFetchAllDropsRecordsWithoutHash(t *testing.T) {
	server := lcd(t,
		func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write(page(t,
				[2]string{bankSend(wallet, counterpart, "1500000"), txResponse("AAA111", "2024-03-01T10:00:00Z")},
				[2]string{bankSend(wallet, counterpart, "1"), txResponse("", "2024-03-02T10:00:00Z")},
			))
		},
		func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write(page(t)) },
	)

	recorder := &fakeRecorder{}
	result, err := newService(recorder).FetchAll(context.Background(), newSession(t, server.URL).Adapter, wallet, nil)
	require.NoError(t, err)

	require.Len(t, result.Transactions, 1)
	assert.Equal(t, "AAA111", result.Transactions[0].Hash)
	assert.Equal(t, 2, result.Metadata.RawRecords)
	assert.Equal(t, 1, result.Metadata.TotalFetched)
	assert.Equal(t, 1, result.Metadata.DroppedCount)
	assert.True(t, result.Metadata.Complete)
	assert.Equal(t, []recordedFetch{{chain: "osmosis", outcome: OutcomeComplete, dropped: 1}}, recorder.fetches)
}

func TestFetchAllKeepsPartialResultsWhenOneBranchFails(t *testing.T) {
	var mu sync.Mutex
	senderCalls := 0
	server := lcd(t,
		unavailable(&senderCalls, &mu),
		func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write(page(t, [2]string{bankSend(counterpart, wallet, "2500000"), txResponse("BBB222", "2024-02-01T08:00:00Z")}))
		},
	)

	recorder := &fakeRecorder{}
	result, err := newService(recorder).FetchAll(context.Background(), newSession(t, server.URL).Adapter, wallet, nil)
	require.NoError(t, err, "a surviving branch means no ExhaustedFetchError")

	assert.Equal(t, 3, senderCalls)
	assert.Equal(t, 1, result.Metadata.TotalFetched)
	assert.False(t, result.Metadata.Complete)
	require.Len(t, result.Metadata.Branches, 2)
	assert.True(t, result.Metadata.Branches[0].Failed)
	assert.False(t, result.Metadata.Branches[0].Complete)
	assert.True(t, result.Metadata.Branches[1].Complete)
	assert.Equal(t, OutcomePartial, recorder.fetches[0].outcome)
}

func TestFetchAllExhausted(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	server := lcd(t, unavailable(&calls, &mu), unavailable(&calls, &mu))

	recorder := &fakeRecorder{}
	_, err := newService(recorder).FetchAll(context.Background(), newSession(t, server.URL).Adapter, wallet, nil)

	var exhausted *providers.ExhaustedFetchError
	require.True(t, errors.As(err, &exhausted))
	assert.Equal(t, 6, calls)
	assert.Equal(t, OutcomeExhausted, recorder.fetches[0].outcome)
}

func TestFetchAllEmptyHistoryIsNotAnError(t *testing.T) {
	empty := func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write(page(t)) }
	server := lcd(t, empty, empty)

	result, err := newService(&fakeRecorder{}).FetchAll(context.Background(), newSession(t, server.URL).Adapter, wallet, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Transactions)
	assert.True(t, result.Metadata.Complete)
	assert.Nil(t, result.Metadata.FirstTransactionDate)
	assert.Equal(t, fetchTime, result.Metadata.FetchedAt)
}

func TestFetchAllRejectsInvalidAddress(t *testing.T) {
	recorder := &fakeRecorder{}
	_, err := newService(recorder).FetchAll(context.Background(), newSession(t, "http://unused").Adapter, "0x1234", nil)

	var validation *providers.ValidationError
	require.True(t, errors.As(err, &validation))
	assert.Equal(t, OutcomeInvalid, recorder.fetches[0].outcome)
}

func TestExport(t *testing.T) {
	server := lcd(t,
		func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write(page(t,
				[2]string{bankSend(wallet, counterpart, "1500000"), txResponse("AAA111", "2024-03-01T10:00:00Z")},
				[2]string{bankSend(wallet, counterpart, "9000000"), txResponse("OLD000", "2023-06-01T10:00:00Z")},
			))
		},
		func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write(page(t, [2]string{bankSend(counterpart, wallet, "2500000"), txResponse("BBB222", "2024-02-01T08:00:00Z")}))
		},
	)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var progress []int
	export, err := newService(&fakeRecorder{}).Export(context.Background(), newSession(t, server.URL), ExportRequest{
		Address:    wallet,
		StartDate:  &start,
		OnProgress: func(count, page int) { progress = append(progress, count) },
	})
	require.NoError(t, err)

	assert.NotEmpty(t, progress)
	assert.Equal(t, 3, export.Metadata.TotalFetched, "metadata describes the whole fetch")
	require.Len(t, export.Rows, 2)
	require.Len(t, export.Parsed, 2)

	assert.Equal(t, classifier.TypeSend, export.Parsed[0].Type)
	send := export.Rows[0]
	assert.Equal(t, "03/01/2024 10:00:00", send.Date)
	assert.Equal(t, "1.500000", send.SentQuantity)
	assert.Equal(t, "OSMO", send.SentCurrency)
	assert.Equal(t, "0.002500", send.FeeAmount)
	assert.Contains(t, send.Notes, "[AAA111]")

	receive := export.Rows[1]
	assert.Equal(t, "2.500000", receive.ReceivedQuantity)
	assert.Empty(t, receive.FeeAmount)

	first, last := export.Metadata.FirstTransactionDate, export.Metadata.LastTransactionDate
	require.NotNil(t, first)
	require.NotNil(t, last)
	assert.Equal(t, 2023, first.Year())
	assert.Equal(t, time.March, last.Month())

	text := export.CSV()
	assert.True(t, strings.HasPrefix(text, "Date,Received Quantity,"))
	assert.Equal(t, 3, strings.Count(text, "\n"))
}

func TestFilterByDate(t *testing.T) {
	at := func(day int) canonical.Transaction {
		return canonical.Transaction{Hash: fmt.Sprint(day), Timestamp: time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)}
	}
	txs := []canonical.Transaction{at(5), at(3), at(1)}

	start := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, txs, FilterByDate(txs, nil, nil))
	assert.Equal(t, []canonical.Transaction{at(3)}, FilterByDate(txs, &start, &end))
	assert.Equal(t, []canonical.Transaction{at(5), at(3)}, FilterByDate(txs, &start, nil))
}

func TestNewSessionPicksAdapterByProvider(t *testing.T) {
	for _, chain := range chains.All() {
		session, err := NewSession(chain, AdapterSettings{})
		require.NoError(t, err, chain.Name)
		assert.Equal(t, chain.Provider, session.Adapter.Name())
		assert.Equal(t, chain.Name, session.Adapter.Chain())
		assert.Same(t, session.Tokens, session.Resolver.Tokens)
	}

	_, err := NewSession(chains.Chain{Name: "x", Provider: "nope"}, AdapterSettings{})
	assert.Error(t, err)
}
