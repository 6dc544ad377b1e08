package sui

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/epicexcelsior/awaken-long-tail-chains/canonical"
	"github.com/epicexcelsior/awaken-long-tail-chains/chains"
	"github.com/epicexcelsior/awaken-long-tail-chains/denoms"
	"github.com/epicexcelsior/awaken-long-tail-chains/providers"
	"github.com/epicexcelsior/awaken-long-tail-chains/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	wallet = "0x" + strings.Repeat("a", 64)
	friend = "0x" + strings.Repeat("b", 64)
	pool   = "0x" + strings.Repeat("c", 64)
)

const (
	suiType  = "0x2::sui::SUI"
	usdcType = "0xdba34672e30cb065b1f93e3ab55318768fd6fef66c15942c9f7cb846e2f900e7::usdc::USDC"
)

func balanceChange(owner, coinType, amount string) BalanceChange {
	return BalanceChange{Owner: json.RawMessage(`{"AddressOwner":"` + owner + `"}`), CoinType: coinType, Amount: amount}
}

func effects(status string) *TransactionEffects {
	return &TransactionEffects{
		Status:  ExecutionStatus{Status: status},
		GasUsed: GasUsed{ComputationCost: "1000000", StorageCost: "2000000", StorageRebate: "1500000"},
	}
}

func programmable(sender string, commands ...string) *Transaction {
	tx := &Transaction{Data: TransactionData{Sender: sender, Transaction: TransactionKind{Kind: programmableTransaction}}}
	for _, command := range commands {
		var decoded map[string]json.RawMessage
		if err := json.Unmarshal([]byte(command), &decoded); err != nil {
			panic(err)
		}
		tx.Data.Transaction.Transactions = append(tx.Data.Transaction.Transactions, decoded)
	}
	return tx
}

func newTestAdapter(t *testing.T, url string, tokens *denoms.TokenCache) *Adapter {
	t.Helper()
	chain, err := chains.Lookup("sui")
	require.NoError(t, err)
	return New(chain.WithAPIURL(url), &rest.Client{}, providers.Options{PageSize: 2, RetryAttempts: 3}, tokens)
}

func TestIsValidAddress(t *testing.T) {
	adapter := newTestAdapter(t, "http://unused", nil)
	assert.True(t, adapter.IsValidAddress(wallet))
	assert.True(t, adapter.IsValidAddress("0x"+strings.Repeat("F", 64)))
	assert.False(t, adapter.IsValidAddress(strings.Repeat("a", 64)))
	assert.False(t, adapter.IsValidAddress("0x"+strings.Repeat("a", 40)), "EVM length")
	assert.False(t, adapter.IsValidAddress("0x"+strings.Repeat("g", 64)))
}

type rpcRecorder struct {
	mu       sync.Mutex
	requests []JSONRPCRequest
}

func (r *rpcRecorder) record(req JSONRPCRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
}

func writeResult(w http.ResponseWriter, result interface{}) {
	raw, _ := json.Marshal(result)
	_ = json.NewEncoder(w).Encode(JSONRPCResponse{JSONRPC: "2.0", ID: 1, Result: raw})
}

func TestFetchAllFollowsCursorsAndLoadsMetadata(t *testing.T) {
	recorder := &rpcRecorder{}
	next := "c1"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req JSONRPCRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		recorder.record(req)

		switch req.Method {
		case methodGetCoinMetadata:
			writeResult(w, CoinMetadata{Decimals: 6, Name: "USD Coin", Symbol: "USDC"})
		case methodQueryTransactionBlocks:
			query := req.Params[0].(map[string]interface{})
			filter := query["filter"].(map[string]interface{})
			if _, ok := filter["ToAddress"]; ok {
				writeResult(w, TransactionQueryResponse{})
				return
			}
			if req.Params[1] == nil {
				writeResult(w, TransactionQueryResponse{
					Data: []TransactionBlock{
						{Digest: "D1", BalanceChanges: []BalanceChange{balanceChange(wallet, usdcType, "100")}},
						{Digest: "D2", BalanceChanges: []BalanceChange{balanceChange(wallet, suiType, "-5")}},
					},
					NextCursor:  &next,
					HasNextPage: true,
				})
				return
			}
			assert.Equal(t, "c1", req.Params[1])
			writeResult(w, TransactionQueryResponse{Data: []TransactionBlock{{Digest: "D3"}}, HasNextPage: false})
		default:
			t.Errorf("unexpected method %s", req.Method)
		}
	}))
	defer server.Close()

	tokens := denoms.NewTokenCache()
	var progress []int
	result, err := newTestAdapter(t, server.URL, tokens).FetchAll(context.Background(), wallet, func(count, page int) {
		progress = append(progress, count)
	})
	require.NoError(t, err)

	require.Len(t, result.Batches, 2)
	assert.Len(t, result.Batches[0], 3)
	assert.Empty(t, result.Batches[1])
	assert.Equal(t, 2, result.Branches[0].Pages)
	assert.True(t, result.Complete())
	assert.Equal(t, 3, progress[len(progress)-1])

	md, ok := tokens.Get(usdcType)
	require.True(t, ok)
	assert.Equal(t, "USDC", md.Symbol)
	assert.Equal(t, 6, md.Decimals)
	assert.Equal(t, []string{strings.ToLower(usdcType)}, tokens.Keys(), "the native coin is never looked up")

	metadataCalls := 0
	for _, req := range recorder.requests {
		if req.Method == methodGetCoinMetadata {
			metadataCalls++
		}
		if req.Method == methodQueryTransactionBlocks {
			assert.Equal(t, true, req.Params[3], "descending order")
			assert.EqualValues(t, 2, req.Params[2])
		}
	}
	assert.Equal(t, 1, metadataCalls)
}

func TestFetchAllRPCErrorExhausts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(JSONRPCResponse{JSONRPC: "2.0", ID: 1, Error: &RPCError{Code: -32602, Message: "Invalid params"}})
	}))
	defer server.Close()

	_, err := newTestAdapter(t, server.URL, nil).FetchAll(context.Background(), wallet, nil)
	var exhausted *providers.ExhaustedFetchError
	require.True(t, errors.As(err, &exhausted))
	assert.Contains(t, err.Error(), "Invalid params")
}

func TestToCanonicalSendAddsGasBack(t *testing.T) {
	adapter := newTestAdapter(t, "http://unused", denoms.NewTokenCache())
	block := TransactionBlock{
		Digest:      "8xSend",
		Transaction: programmable(wallet, `{"SplitCoins": ["GasCoin", [{"Input": 0}]]}`, `{"TransferObjects": [[{"Result": 0}], {"Input": 1}]}`),
		Effects:     effects(statusSuccess),
		BalanceChanges: []BalanceChange{
			balanceChange(wallet, suiType, "-1001500000"),
			balanceChange(friend, suiType, "1000000000"),
		},
		TimestampMs: "1709288430123",
		Checkpoint:  "25000000",
	}

	tx, err := adapter.ToCanonical(providers.Record{Branch: BranchFrom, Address: wallet, Payload: block})
	require.NoError(t, err)

	assert.Equal(t, "8xSend", tx.Hash)
	assert.Equal(t, uint64(25000000), tx.Height)
	assert.Equal(t, int64(1709288430123), tx.Timestamp.UnixMilli())
	assert.True(t, tx.Succeeded())
	assert.Equal(t, &canonical.Coin{Amount: "1500000", Denom: suiType}, tx.Fee)

	require.Len(t, tx.Messages, 1)
	assert.Equal(t, canonical.KindTransfer, tx.Messages[0].Kind)
	assert.Equal(t, wallet, tx.Messages[0].Sender)

	transfers := canonical.GetEventsWithType(canonical.EventTokenTransfer, tx.Events)
	require.Len(t, transfers, 1)
	assert.Equal(t, wallet, canonical.GetValueForAttribute(canonical.AttrFrom, &transfers[0]))
	assert.Equal(t, friend, canonical.GetValueForAttribute(canonical.AttrTo, &transfers[0]))
	assert.Equal(t, "1000000000", canonical.GetValueForAttribute(canonical.AttrValue, &transfers[0]))
	assert.Equal(t, "SUI", canonical.GetValueForAttribute(canonical.AttrSymbol, &transfers[0]))
	assert.Equal(t, "9", canonical.GetValueForAttribute(canonical.AttrDecimals, &transfers[0]))
}

func TestToCanonicalReceiveAndSwap(t *testing.T) {
	tokens := denoms.NewTokenCache()
	tokens.Remember(usdcType, denoms.TokenMetadata{Symbol: "USDC", Decimals: 6})
	adapter := newTestAdapter(t, "http://unused", tokens)

	receive := TransactionBlock{
		Digest:         "8xRecv",
		Transaction:    programmable(friend, `{"TransferObjects": []}`),
		Effects:        effects(statusSuccess),
		BalanceChanges: []BalanceChange{balanceChange(friend, usdcType, "-50250000"), balanceChange(wallet, usdcType, "50250000")},
	}
	tx, err := adapter.ToCanonical(providers.Record{Branch: BranchTo, Address: wallet, Payload: receive})
	require.NoError(t, err)
	transfers := canonical.GetEventsWithType(canonical.EventTokenTransfer, tx.Events)
	require.Len(t, transfers, 1)
	assert.Equal(t, friend, canonical.GetValueForAttribute(canonical.AttrFrom, &transfers[0]))
	assert.Equal(t, "USDC", canonical.GetValueForAttribute(canonical.AttrSymbol, &transfers[0]))
	assert.Equal(t, "6", canonical.GetValueForAttribute(canonical.AttrDecimals, &transfers[0]))
	assert.NotNil(t, canonical.GetEventWithType(canonical.EventInvocation, tx.Events))

	swap := TransactionBlock{
		Digest:      "8xSwap",
		Transaction: programmable(wallet, `{"MoveCall": {"package": "0xdee9", "module": "clob_v2", "function": "swap_exact_base_for_quote"}}`),
		Effects:     effects(statusSuccess),
		BalanceChanges: []BalanceChange{
			balanceChange(wallet, suiType, "-2001500000"),
			balanceChange(wallet, usdcType, "3100000"),
			{Owner: json.RawMessage(`{"ObjectOwner":"` + pool + `"}`), CoinType: suiType, Amount: "2000000000"},
		},
	}
	tx, err = adapter.ToCanonical(providers.Record{Branch: BranchFrom, Address: wallet, Payload: swap})
	require.NoError(t, err)
	assert.Equal(t, canonical.KindContractCall, tx.Messages[0].Kind)
	assert.Equal(t, "0xdee9::clob_v2::swap_exact_base_for_quote", tx.Messages[0].Type)

	transfers = canonical.GetEventsWithType(canonical.EventTokenTransfer, tx.Events)
	require.Len(t, transfers, 2)
	assert.Equal(t, "2000000000", canonical.GetValueForAttribute(canonical.AttrValue, &transfers[0]))
	assert.Equal(t, pool, canonical.GetValueForAttribute(canonical.AttrTo, &transfers[0]))
	assert.Equal(t, wallet, canonical.GetValueForAttribute(canonical.AttrTo, &transfers[1]))
	assert.Equal(t, "3100000", canonical.GetValueForAttribute(canonical.AttrValue, &transfers[1]))
}

func TestToCanonicalStaking(t *testing.T) {
	adapter := newTestAdapter(t, "http://unused", nil)
	block := TransactionBlock{
		Digest: "8xStake",
		Transaction: programmable(wallet,
			`{"SplitCoins": ["GasCoin", [{"Input": 0}]]}`,
			`{"MoveCall": {"package": "0x0000000000000000000000000000000000000000000000000000000000000003", "module": "sui_system", "function": "request_add_stake"}}`),
		Effects:        effects(statusSuccess),
		BalanceChanges: []BalanceChange{balanceChange(wallet, suiType, "-5001500000")},
	}

	tx, err := adapter.ToCanonical(providers.Record{Branch: BranchFrom, Address: wallet, Payload: block})
	require.NoError(t, err)
	require.Len(t, tx.Messages, 1)
	assert.Equal(t, canonical.KindDelegate, tx.Messages[0].Kind)
	assert.Equal(t, &canonical.Coin{Amount: "5000000000", Denom: suiType}, tx.Messages[0].Amount)
}

func TestToCanonicalFailedAndMalformed(t *testing.T) {
	adapter := newTestAdapter(t, "http://unused", nil)

	tx, err := adapter.ToCanonical(providers.Record{Address: wallet, Payload: TransactionBlock{
		Digest:         "8xFail",
		Transaction:    programmable(wallet),
		Effects:        effects("failure"),
		BalanceChanges: []BalanceChange{balanceChange(wallet, suiType, "-1500000")},
		TimestampMs:    "soon",
	}})
	require.NoError(t, err)
	assert.False(t, tx.Succeeded())
	assert.True(t, tx.Timestamp.IsZero())
	assert.Empty(t, canonical.GetEventsWithType(canonical.EventTokenTransfer, tx.Events), "a gas-only change moves nothing")

	var malformed *providers.MalformedRecordError
	_, err = adapter.ToCanonical(providers.Record{Payload: TransactionBlock{}})
	assert.True(t, errors.As(err, &malformed))
	_, err = adapter.ToCanonical(providers.Record{Payload: "block"})
	assert.True(t, errors.As(err, &malformed))
}

func TestOwnerAddress(t *testing.T) {
	assert.Equal(t, wallet, balanceChange(wallet, suiType, "1").OwnerAddress())
	assert.Equal(t, "", BalanceChange{Owner: json.RawMessage(`"Immutable"`)}.OwnerAddress())
	assert.Equal(t, "", BalanceChange{Owner: json.RawMessage(`{"Shared":{"initial_shared_version":"1"}}`)}.OwnerAddress())
}
