package core

import (
	"fmt"

	"github.com/epicexcelsior/awaken-long-tail-chains/chainregistry"
	"github.com/epicexcelsior/awaken-long-tail-chains/chains"
	"github.com/epicexcelsior/awaken-long-tail-chains/config"
	"github.com/epicexcelsior/awaken-long-tail-chains/denoms"
	"github.com/epicexcelsior/awaken-long-tail-chains/providers"
	"github.com/epicexcelsior/awaken-long-tail-chains/providers/cosmos"
	"github.com/epicexcelsior/awaken-long-tail-chains/providers/etherscan"
	"github.com/epicexcelsior/awaken-long-tail-chains/providers/sui"
	"github.com/epicexcelsior/awaken-long-tail-chains/rest"
)

// AdapterSettings carries the configured fetch discipline into the adapters.
type AdapterSettings struct {
	Fetch       config.Fetch
	Providers   map[string]config.Provider
	Credentials providers.Credentials
	Observer    providers.Observer
	// Client is built from Fetch.HTTPTimeout when nil.
	Client *rest.Client
	// Assets resolves Cosmos denominations. It may be nil.
	Assets chainregistry.AssetMap
}

// Options builds the pagination settings for one provider. Each call gets its own limiter.
func (s AdapterSettings) Options(provider string) providers.Options {
	pacing := s.Providers[provider]
	return providers.Options{
		PageSize:      pacing.PageSize,
		MaxPages:      s.Fetch.MaxPages,
		RetryAttempts: s.Fetch.RetryAttempts,
		RetryBackoff:  s.Fetch.RetryBackoffDuration(),
		Limiter:       providers.NewLimiter(pacing.ThrottlingDuration()),
		Observer:      s.Observer,
	}
}

func (s AdapterSettings) client() *rest.Client {
	if s.Client != nil {
		return s.Client
	}
	return rest.NewClient(s.Fetch.HTTPTimeoutDuration())
}

// Session is everything one export needs. The token cache lives exactly as long as the session.
type Session struct {
	Chain    chains.Chain
	Adapter  providers.Adapter
	Resolver denoms.Resolver
	Tokens   *denoms.TokenCache
}

// NewSession picks the adapter for the chain's provider and wires a fresh token cache into both the
// adapter and the resolver.
func NewSession(chain chains.Chain, settings AdapterSettings) (Session, error) {
	tokens := denoms.NewTokenCache()
	client := settings.client()
	opts := settings.Options(chain.Provider)

	credentials := settings.Credentials
	if credentials == nil {
		credentials = providers.NoCredentials
	}

	var adapter providers.Adapter
	switch chain.Provider {
	case chains.ProviderCosmos:
		adapter = cosmos.New(chain, client, opts)
	case chains.ProviderEtherscan:
		adapter = etherscan.New(chain, client, opts, credentials, tokens)
	case chains.ProviderSui:
		adapter = sui.New(chain, client, opts, tokens)
	default:
		return Session{}, fmt.Errorf("chain %s uses unknown provider %q", chain.Name, chain.Provider)
	}

	return Session{
		Chain:   chain,
		Adapter: adapter,
		Resolver: denoms.Resolver{
			Native: chain.Native,
			Assets: settings.Assets,
			Tokens: tokens,
		},
		Tokens: tokens,
	}, nil
}
