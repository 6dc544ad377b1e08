package config

import (
	"errors"

	"github.com/spf13/cobra"
)

type ServeConfig struct {
	Database    Database
	Log         log
	Fetch       Fetch
	Registry    Registry
	Providers   map[string]Provider
	Credentials map[string]string
	// Endpoints overrides chain preset API URLs, keyed by chain name.
	Endpoints map[string]string
	Server    server
}

type server struct {
	Port            string
	EnvFile         string `mapstructure:"env-file"`
	RegistryRefresh int    `mapstructure:"registry-refresh"`
}

func SetupServeSpecificFlags(conf *ServeConfig, cmd *cobra.Command) {
	cmd.Flags().StringVar(&conf.Server.Port, "server.port", "8080", "port the HTTP API listens on")
	cmd.Flags().StringVar(&conf.Server.EnvFile, "server.env-file", ".env", "dotenv file holding provider API keys")
	cmd.Flags().IntVar(&conf.Server.RegistryRefresh, "server.registry-refresh", 6, "hours between chain registry refreshes (0 disables)")
}

func (conf *ServeConfig) Validate() error {
	if conf.Server.Port == "" {
		return errors.New("server port must be set")
	}
	if conf.Server.RegistryRefresh < 0 {
		return errors.New("server registry-refresh must be a positive number or 0")
	}
	if conf.Database.DatabaseEnabled() {
		if err := validateDatabaseConf(conf.Database); err != nil {
			return err
		}
	}
	if err := validateFetchConf(conf.Fetch); err != nil {
		return err
	}
	return validateProviders(conf.Providers)
}
