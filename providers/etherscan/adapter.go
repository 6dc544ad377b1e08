package etherscan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/epicexcelsior/awaken-long-tail-chains/chains"
	"github.com/epicexcelsior/awaken-long-tail-chains/config"
	"github.com/epicexcelsior/awaken-long-tail-chains/denoms"
	"github.com/epicexcelsior/awaken-long-tail-chains/providers"
	"github.com/epicexcelsior/awaken-long-tail-chains/rest"

	"github.com/ethereum/go-ethereum/common"
)

const (
	ProviderName = chains.ProviderEtherscan

	BranchNative = "native"
	BranchToken  = "token"

	actionTxList  = "txlist"
	actionTokenTx = "tokentx"

	// Etherscan rejects page*offset above this window.
	resultWindow    = 10000
	defaultPageSize = 100

	noTransactionsFound = "No transactions found"
)

var hexAddressRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// Adapter reads native and ERC-20 history from an Etherscan compatible account API.
type Adapter struct {
	chain       chains.Chain
	client      *rest.Client
	opts        providers.Options
	credentials providers.Credentials
	tokens      *denoms.TokenCache
}

func New(chain chains.Chain, client *rest.Client, opts providers.Options, credentials providers.Credentials, tokens *denoms.TokenCache) *Adapter {
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.PageSize > resultWindow {
		opts.PageSize = resultWindow
	}
	if window := resultWindow / opts.PageSize; opts.MaxPages <= 0 || opts.MaxPages > window {
		opts.MaxPages = window
	}
	if credentials == nil {
		credentials = providers.NoCredentials
	}
	return &Adapter{chain: chain, client: client, opts: opts, credentials: credentials, tokens: tokens}
}

func (a *Adapter) Name() string {
	return ProviderName
}

func (a *Adapter) Chain() string {
	return a.chain.Name
}

// IsValidAddress accepts 0x-prefixed 20 byte hex. Mixed-case input must carry a valid EIP-55 checksum.
func (a *Adapter) IsValidAddress(address string) bool {
	if !hexAddressRegex.MatchString(address) || !common.IsHexAddress(address) {
		return false
	}
	body := address[2:]
	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return true
	}
	return common.HexToAddress(address).Hex() == address
}

func (a *Adapter) FetchAll(ctx context.Context, address string, onProgress providers.ProgressFunc) (providers.FetchResult, error) {
	if err := providers.ValidateAddress(a, address); err != nil {
		return providers.FetchResult{}, err
	}

	branches := []providers.Branch{
		{Name: BranchNative, Fetch: a.pageFunc(BranchNative, actionTxList, address)},
		{Name: BranchToken, Fetch: a.pageFunc(BranchToken, actionTokenTx, address)},
	}

	results := a.opts.RunBranches(ctx, ProviderName, branches, onProgress)
	bundleRecords(results)
	return providers.Collect(ProviderName, address, a.sourceLabel(), results)
}

func (a *Adapter) sourceLabel() string {
	return fmt.Sprintf("Etherscan %s (chain %s)", a.chain.DisplayName, a.chain.ChainID)
}

func (a *Adapter) pageFunc(branch, action, address string) providers.PageFunc {
	return func(ctx context.Context, cursor providers.Cursor) (providers.Page, error) {
		query := url.Values{}
		query.Set("chainid", a.chain.ChainID)
		query.Set("module", "account")
		query.Set("action", action)
		query.Set("address", address)
		query.Set("startblock", "0")
		query.Set("endblock", "99999999")
		query.Set("page", strconv.Itoa(cursor.Page))
		query.Set("offset", strconv.Itoa(a.opts.PageSize))
		query.Set("sort", "desc")
		if key, ok := a.credentials.Credential(ProviderName); ok {
			query.Set("apikey", key)
		}

		var resp Response
		if err := a.client.GetJSON(ctx, a.chain.APIURL, query, &resp); err != nil {
			if rest.IsRetryable(err) {
				return providers.Page{}, &providers.TransientError{Provider: ProviderName, Branch: branch, Err: err}
			}
			return providers.Page{}, err
		}

		if resp.Status != "1" {
			if err := a.statusError(branch, resp); err != nil {
				return providers.Page{}, err
			}
			return providers.Page{}, nil
		}

		records, err := a.decodeRecords(branch, address, action, resp.Result)
		if err != nil {
			return providers.Page{}, err
		}
		return providers.Page{Records: records}, nil
	}
}

// statusError interprets a status "0" envelope. An empty history is a successful empty page.
func (a *Adapter) statusError(branch string, resp Response) error {
	var reason string
	if err := json.Unmarshal(resp.Result, &reason); err != nil {
		reason = string(resp.Result)
	}

	if strings.EqualFold(resp.Message, noTransactionsFound) {
		return nil
	}

	lowered := strings.ToLower(reason)
	if strings.Contains(lowered, "rate limit") || strings.Contains(lowered, "timeout") {
		return &providers.TransientError{Provider: ProviderName, Branch: branch, Err: errors.New(reason)}
	}
	return fmt.Errorf("etherscan %s: %s", resp.Message, reason)
}

func (a *Adapter) decodeRecords(branch, address, action string, result json.RawMessage) ([]providers.Record, error) {
	var records []providers.Record

	switch action {
	case actionTxList:
		var txs []NativeTx
		if err := json.Unmarshal(result, &txs); err != nil {
			return nil, fmt.Errorf("decoding %s result: %w", action, err)
		}
		for i := range txs {
			records = append(records, providers.Record{Provider: ProviderName, Branch: branch, Address: address, Payload: &txs[i]})
		}
	case actionTokenTx:
		var txs []TokenTx
		if err := json.Unmarshal(result, &txs); err != nil {
			return nil, fmt.Errorf("decoding %s result: %w", action, err)
		}
		for i := range txs {
			a.rememberToken(txs[i])
			records = append(records, providers.Record{Provider: ProviderName, Branch: branch, Address: address, Payload: txs[i]})
		}
	}

	return records, nil
}

func (a *Adapter) rememberToken(tx TokenTx) {
	if a.tokens == nil || tx.ContractAddress == "" {
		return
	}
	decimals, err := strconv.Atoi(tx.TokenDecimal)
	if err != nil {
		config.Log.Debugf("Token %s has no usable decimals %q", tx.ContractAddress, tx.TokenDecimal)
		return
	}
	a.tokens.Remember(tx.ContractAddress, denoms.TokenMetadata{Symbol: tx.TokenSymbol, Decimals: decimals, Name: tx.TokenName})
}

// bundleRecords points every record of a hash, in either branch, at one shared Bundle.
// Records keep their branch and position so fetch counts are unaffected.
func bundleRecords(results []providers.BranchResult) {
	bundles := map[string]*Bundle{}
	get := func(hash string) *Bundle {
		key := strings.ToLower(hash)
		bundle, ok := bundles[key]
		if !ok {
			bundle = &Bundle{Hash: hash}
			bundles[key] = bundle
		}
		return bundle
	}

	for _, result := range results {
		for _, record := range result.Records {
			switch payload := record.Payload.(type) {
			case *NativeTx:
				if payload.Hash != "" && get(payload.Hash).Native == nil {
					get(payload.Hash).Native = payload
				}
			case TokenTx:
				if payload.Hash != "" {
					bundle := get(payload.Hash)
					bundle.Tokens = append(bundle.Tokens, payload)
				}
			}
		}
	}

	for _, result := range results {
		for i, record := range result.Records {
			var hash string
			switch payload := record.Payload.(type) {
			case *NativeTx:
				hash = payload.Hash
			case TokenTx:
				hash = payload.Hash
			}
			if hash != "" {
				result.Records[i].Payload = bundles[strings.ToLower(hash)]
			}
		}
	}
}
