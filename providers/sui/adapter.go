package sui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/epicexcelsior/awaken-long-tail-chains/chains"
	"github.com/epicexcelsior/awaken-long-tail-chains/config"
	"github.com/epicexcelsior/awaken-long-tail-chains/denoms"
	"github.com/epicexcelsior/awaken-long-tail-chains/providers"
	"github.com/epicexcelsior/awaken-long-tail-chains/rest"
)

const (
	ProviderName = chains.ProviderSui

	BranchFrom = "from"
	BranchTo   = "to"

	methodQueryTransactionBlocks = "suix_queryTransactionBlocks"
	methodGetCoinMetadata        = "suix_getCoinMetadata"

	// Fullnodes reject query limits above 50.
	maxPageSize = 50
)

var addressRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// Adapter reads a wallet's transaction blocks from a Sui fullnode JSON-RPC endpoint.
type Adapter struct {
	chain  chains.Chain
	client *rest.Client
	opts   providers.Options
	tokens *denoms.TokenCache
}

func New(chain chains.Chain, client *rest.Client, opts providers.Options, tokens *denoms.TokenCache) *Adapter {
	if opts.PageSize <= 0 || opts.PageSize > maxPageSize {
		opts.PageSize = maxPageSize
	}
	return &Adapter{chain: chain, client: client, opts: opts, tokens: tokens}
}

func (a *Adapter) Name() string {
	return ProviderName
}

func (a *Adapter) Chain() string {
	return a.chain.Name
}

func (a *Adapter) IsValidAddress(address string) bool {
	return addressRegex.MatchString(address)
}

func (a *Adapter) FetchAll(ctx context.Context, address string, onProgress providers.ProgressFunc) (providers.FetchResult, error) {
	if err := providers.ValidateAddress(a, address); err != nil {
		return providers.FetchResult{}, err
	}

	branches := []providers.Branch{
		{Name: BranchFrom, Fetch: a.pageFunc(BranchFrom, address, "FromAddress")},
		{Name: BranchTo, Fetch: a.pageFunc(BranchTo, address, "ToAddress")},
	}

	results := a.opts.RunBranches(ctx, ProviderName, branches, onProgress)
	a.loadCoinMetadata(ctx, results)
	return providers.Collect(ProviderName, address, a.sourceLabel(), results)
}

func (a *Adapter) sourceLabel() string {
	return fmt.Sprintf("Sui JSON-RPC (%s)", a.chain.APIURL)
}

func (a *Adapter) pageFunc(branch, address, filter string) providers.PageFunc {
	return func(ctx context.Context, cursor providers.Cursor) (providers.Page, error) {
		var next interface{}
		if cursor.Token != "" {
			next = cursor.Token
		}

		params := []interface{}{
			map[string]interface{}{
				"filter": map[string]interface{}{filter: address},
				"options": map[string]interface{}{
					"showInput":          true,
					"showEffects":        true,
					"showEvents":         true,
					"showBalanceChanges": true,
				},
			},
			next,
			a.opts.PageSize,
			true,
		}

		var resp TransactionQueryResponse
		if err := a.call(ctx, branch, methodQueryTransactionBlocks, params, &resp); err != nil {
			return providers.Page{}, err
		}

		records := make([]providers.Record, 0, len(resp.Data))
		for _, block := range resp.Data {
			records = append(records, providers.Record{Provider: ProviderName, Branch: branch, Address: address, Payload: block})
		}

		hasMore := resp.HasNextPage
		page := providers.Page{Records: records, HasMore: &hasMore}
		if resp.NextCursor != nil {
			page.NextCursor = *resp.NextCursor
		}
		return page, nil
	}
}

func (a *Adapter) call(ctx context.Context, branch, method string, params []interface{}, out interface{}) error {
	req := JSONRPCRequest{JSONRPC: "2.0", Method: method, Params: params, ID: 1}

	var resp JSONRPCResponse
	if err := a.client.PostJSON(ctx, a.chain.APIURL, req, &resp); err != nil {
		if rest.IsRetryable(err) {
			return &providers.TransientError{Provider: ProviderName, Branch: branch, Err: err}
		}
		return err
	}

	if resp.Error != nil {
		err := fmt.Errorf("RPC error %d: %s", resp.Error.Code, resp.Error.Message)
		if strings.Contains(strings.ToLower(resp.Error.Message), "rate limit") {
			return &providers.TransientError{Provider: ProviderName, Branch: branch, Err: err}
		}
		return err
	}

	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("unmarshaling %s result: %w", method, err)
	}
	return nil
}

// loadCoinMetadata fetches metadata once per coin type seen in balance changes. Failures only cost
// the symbol; the resolver falls back to the coin type's own name.
func (a *Adapter) loadCoinMetadata(ctx context.Context, results []providers.BranchResult) {
	if a.tokens == nil {
		return
	}

	for _, coinType := range coinTypes(results) {
		if strings.EqualFold(coinType, a.chain.Native.Denom) {
			continue
		}
		if _, ok := a.tokens.Get(coinType); ok {
			continue
		}
		if a.opts.Limiter != nil {
			if err := a.opts.Limiter.Wait(ctx); err != nil {
				return
			}
		}

		var md *CoinMetadata
		err := a.call(ctx, "metadata", methodGetCoinMetadata, []interface{}{coinType}, &md)
		if err == nil && md == nil {
			err = errors.New("no metadata published")
		}
		if err != nil {
			config.Log.Debugf("Could not load coin metadata for %s: %v", coinType, err)
			continue
		}
		a.tokens.Remember(coinType, denoms.TokenMetadata{Symbol: md.Symbol, Decimals: md.Decimals, Name: md.Name})
	}
}

// coinTypes lists distinct coin types in first-seen order.
func coinTypes(results []providers.BranchResult) []string {
	seen := map[string]bool{}
	var types []string
	for _, result := range results {
		for _, record := range result.Records {
			block, ok := record.Payload.(TransactionBlock)
			if !ok {
				continue
			}
			for _, change := range block.BalanceChanges {
				if change.CoinType != "" && !seen[change.CoinType] {
					seen[change.CoinType] = true
					types = append(types, change.CoinType)
				}
			}
		}
	}
	return types
}
