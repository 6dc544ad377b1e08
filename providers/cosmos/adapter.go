package cosmos

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"

	"github.com/epicexcelsior/awaken-long-tail-chains/chains"
	"github.com/epicexcelsior/awaken-long-tail-chains/providers"
	"github.com/epicexcelsior/awaken-long-tail-chains/rest"
)

const (
	ProviderName = chains.ProviderCosmos

	BranchSender    = "sender"
	BranchRecipient = "recipient"

	txsEndpoint = "/cosmos/tx/v1beta1/txs"

	// The LCD caps pagination.limit at 100.
	maxPageSize     = 100
	defaultPageSize = 50
)

// Adapter reads a wallet's history from a Cosmos SDK LCD (REST) endpoint.
type Adapter struct {
	chain        chains.Chain
	client       *rest.Client
	opts         providers.Options
	addressRegex *regexp.Regexp
}

func New(chain chains.Chain, client *rest.Client, opts providers.Options) *Adapter {
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.PageSize > maxPageSize {
		opts.PageSize = maxPageSize
	}
	return &Adapter{
		chain:        chain,
		client:       client,
		opts:         opts,
		addressRegex: accountAddressRegex(chain.AddressPrefix),
	}
}

func (a *Adapter) Name() string {
	return ProviderName
}

func (a *Adapter) Chain() string {
	return a.chain.Name
}

func (a *Adapter) IsValidAddress(address string) bool {
	return IsValidBech32Address(address, a.chain.AddressPrefix, a.addressRegex)
}

// FetchAll queries the txs the wallet signed and the txs that paid the wallet, concurrently.
func (a *Adapter) FetchAll(ctx context.Context, address string, onProgress providers.ProgressFunc) (providers.FetchResult, error) {
	if err := providers.ValidateAddress(a, address); err != nil {
		return providers.FetchResult{}, err
	}

	branches := []providers.Branch{
		{Name: BranchSender, Fetch: a.pageFunc(BranchSender, address, fmt.Sprintf("message.sender='%s'", address))},
		{Name: BranchRecipient, Fetch: a.pageFunc(BranchRecipient, address, fmt.Sprintf("transfer.recipient='%s'", address))},
	}

	results := a.opts.RunBranches(ctx, ProviderName, branches, onProgress)
	return providers.Collect(ProviderName, address, a.sourceLabel(), results)
}

func (a *Adapter) sourceLabel() string {
	return fmt.Sprintf("%s LCD (%s)", a.chain.DisplayName, a.chain.APIURL)
}

func (a *Adapter) pageFunc(branch, address, events string) providers.PageFunc {
	return func(ctx context.Context, cursor providers.Cursor) (providers.Page, error) {
		query := url.Values{}
		query.Set("events", events)
		query.Set("pagination.offset", strconv.Itoa(cursor.Offset))
		query.Set("pagination.limit", strconv.Itoa(a.opts.PageSize))
		query.Set("pagination.count_total", "true")
		query.Set("order_by", "ORDER_BY_DESC")

		var resp GetTxsEventResponse
		if err := a.client.GetJSON(ctx, a.chain.APIURL+txsEndpoint, query, &resp); err != nil {
			if rest.IsRetryable(err) {
				return providers.Page{}, &providers.TransientError{Provider: ProviderName, Branch: branch, Err: err}
			}
			return providers.Page{}, err
		}

		records := make([]providers.Record, 0, len(resp.TxResponses))
		for i, txResponse := range resp.TxResponses {
			merged := MergedTx{TxResponse: txResponse}
			if i < len(resp.Txs) {
				merged.Tx = resp.Txs[i]
			}
			records = append(records, providers.Record{Provider: ProviderName, Branch: branch, Address: address, Payload: merged})
		}

		return providers.Page{Records: records, Total: resp.DeclaredTotal()}, nil
	}
}
