package config

import (
	"fmt"
	lg "log"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/imdario/mergo"
)

// Provider holds the request pacing for one upstream data source.
type Provider struct {
	// Throttling is the minimum number of seconds between two requests to the provider. 0 counts as
	// unset, so providers with built-in pacing always keep a delay.
	Throttling float64 `toml:"throttling" mapstructure:"throttling"`
	PageSize   int     `toml:"page-size" mapstructure:"page-size"`
}

func (p Provider) ThrottlingDuration() time.Duration {
	return secondsToDuration(p.Throttling)
}

// The published limits of the public endpoints. Users override any key under [providers.<name>].
const defaultProvidersTOML = `
[providers.cosmos]
throttling = 0.25
page-size = 50

[providers.etherscan]
throttling = 0.35
page-size = 100

[providers.sui]
throttling = 0.2
page-size = 50
`

type providersFile struct {
	Providers map[string]Provider `toml:"providers"`
}

func DefaultProviders() map[string]Provider {
	var file providersFile
	if _, err := toml.Decode(defaultProvidersTOML, &file); err != nil {
		lg.Panicf("Default provider settings are invalid. Err: %v", err)
	}
	return file.Providers
}

// GetProvidersConfig reads a standalone TOML file holding [providers.<name>] tables.
func GetProvidersConfig(configFileLocation string) (map[string]Provider, error) {
	var file providersFile
	_, err := toml.DecodeFile(configFileLocation, &file)
	if err != nil {
		return nil, fmt.Errorf("reading provider settings from %s: %w", configFileLocation, err)
	}
	return file.Providers, nil
}

// MergeProviders fills every unset field of the configured providers from the defaults.
func MergeProviders(defaults map[string]Provider, overide map[string]Provider) map[string]Provider {
	merged := make(map[string]Provider, len(defaults))
	for name, p := range overide {
		merged[name] = p
	}
	for name, def := range defaults {
		p := merged[name]
		err := mergo.Merge(&p, def)
		if err != nil {
			lg.Panicf("Config merge failed. Err: %v", err)
		}
		merged[name] = p
	}
	return merged
}
