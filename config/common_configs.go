package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/epicexcelsior/awaken-long-tail-chains/util"
	"github.com/spf13/cobra"
)

type log struct {
	Level  string
	Path   string
	Pretty bool
}

// These configs are used across multiple commands, and are not specific to a single command
type Database struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
	LogLevel string `mapstructure:"log-level"`
	// Sqlite is a file path (or ":memory:"). When set it takes precedence over the postgres settings.
	Sqlite string
}

type Fetch struct {
	MaxPages      int     `mapstructure:"max-pages"`
	RetryAttempts int     `mapstructure:"retry-attempts"`
	RetryBackoff  float64 `mapstructure:"retry-backoff"`
	HTTPTimeout   float64 `mapstructure:"http-timeout"`
}

type Registry struct {
	Path string
}

func (f Fetch) RetryBackoffDuration() time.Duration {
	return secondsToDuration(f.RetryBackoff)
}

func (f Fetch) HTTPTimeoutDuration() time.Duration {
	return secondsToDuration(f.HTTPTimeout)
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

func SetupLogFlags(logConf *log, cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&logConf.Level, "log.level", "info", "log level")
	cmd.PersistentFlags().BoolVar(&logConf.Pretty, "log.pretty", false, "pretty logs")
	cmd.PersistentFlags().StringVar(&logConf.Path, "log.path", "", "log path (default is stderr only)")
}

func SetupDatabaseFlags(databaseConf *Database, cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&databaseConf.Host, "database.host", "", "database host")
	cmd.PersistentFlags().StringVar(&databaseConf.Port, "database.port", "5432", "database port")
	cmd.PersistentFlags().StringVar(&databaseConf.Database, "database.database", "", "database name")
	cmd.PersistentFlags().StringVar(&databaseConf.User, "database.user", "", "database user")
	cmd.PersistentFlags().StringVar(&databaseConf.Password, "database.password", "", "database password")
	cmd.PersistentFlags().StringVar(&databaseConf.LogLevel, "database.log-level", "", "database loglevel")
	cmd.PersistentFlags().StringVar(&databaseConf.Sqlite, "database.sqlite", "", "sqlite database file, used instead of postgres when set")
}

func SetupFetchFlags(fetchConf *Fetch, cmd *cobra.Command) {
	cmd.PersistentFlags().IntVar(&fetchConf.MaxPages, "fetch.max-pages", 200, "safety limit on pages requested per query branch")
	cmd.PersistentFlags().IntVar(&fetchConf.RetryAttempts, "fetch.retry-attempts", 3, "consecutive transient failures on one page that abandon the branch")
	cmd.PersistentFlags().Float64Var(&fetchConf.RetryBackoff, "fetch.retry-backoff", 1, "seconds to wait before retrying a failed page")
	cmd.PersistentFlags().Float64Var(&fetchConf.HTTPTimeout, "fetch.http-timeout", 30, "HTTP client timeout in seconds")
}

func SetupRegistryFlags(registryConf *Registry, cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&registryConf.Path, "registry.path", "", "local checkout of the cosmos chain-registry (asset symbols are skipped when unset)")
}

// DatabaseEnabled reports whether any storage backend was configured.
func (dbConf Database) DatabaseEnabled() bool {
	return !util.StrNotSet(dbConf.Sqlite) || !util.StrNotSet(dbConf.Host)
}

func validateDatabaseConf(dbConf Database) error {
	if !util.StrNotSet(dbConf.Sqlite) {
		return nil
	}
	if util.StrNotSet(dbConf.Host) {
		return errors.New("database host must be set")
	}
	if util.StrNotSet(dbConf.Port) {
		return errors.New("database port must be set")
	}
	if util.StrNotSet(dbConf.Database) {
		return errors.New("database name (i.e. database) must be set")
	}
	if util.StrNotSet(dbConf.User) {
		return errors.New("database user must be set")
	}
	if util.StrNotSet(dbConf.Password) {
		return errors.New("database password must be set")
	}

	return nil
}

func validateFetchConf(fetchConf Fetch) error {
	if fetchConf.MaxPages <= 0 {
		return errors.New("fetch max-pages must be a positive number")
	}
	if fetchConf.RetryAttempts <= 0 {
		return errors.New("fetch retry-attempts must be a positive number")
	}
	if fetchConf.RetryBackoff < 0 {
		return errors.New("fetch retry-backoff must be a positive number or 0")
	}
	if fetchConf.HTTPTimeout < 0 {
		return errors.New("fetch http-timeout must be a positive number or 0")
	}
	return nil
}

func validateProviders(providers map[string]Provider) error {
	for name, p := range providers {
		if p.Throttling < 0 {
			return fmt.Errorf("providers.%s throttling must not be negative", name)
		}
		if p.PageSize <= 0 {
			return fmt.Errorf("providers.%s page-size must be a positive number", name)
		}
	}
	return nil
}
