package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/epicexcelsior/awaken-long-tail-chains/util"
	"github.com/spf13/cobra"
)

// DateLayout is the accepted layout for the start-date and end-date settings.
const DateLayout = "2006-01-02"

type ExportConfig struct {
	Database    Database
	Log         log
	Fetch       Fetch
	Registry    Registry
	Providers   map[string]Provider
	Credentials map[string]string
	Base        exportBase
}

type exportBase struct {
	Chain         string
	Address       string
	Output        string
	StartDate     string `mapstructure:"start-date"`
	EndDate       string `mapstructure:"end-date"`
	APIURL        string `mapstructure:"api-url"`
	EnvFile       string `mapstructure:"env-file"`
	ProvidersFile string `mapstructure:"providers-file"`
}

func SetupExportSpecificFlags(conf *ExportConfig, cmd *cobra.Command) {
	cmd.Flags().StringVar(&conf.Base.Chain, "base.chain", "", "chain preset to export (see the chains command)")
	cmd.Flags().StringVar(&conf.Base.Address, "base.address", "", "wallet address to export")
	cmd.Flags().StringVar(&conf.Base.Output, "base.output", "", "write the CSV to this file instead of stdout")
	cmd.Flags().StringVar(&conf.Base.StartDate, "base.start-date", "", "only export transactions on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&conf.Base.EndDate, "base.end-date", "", "only export transactions before this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&conf.Base.APIURL, "base.api-url", "", "override the chain preset's API endpoint")
	cmd.Flags().StringVar(&conf.Base.EnvFile, "base.env-file", ".env", "dotenv file holding provider API keys")
	cmd.Flags().StringVar(&conf.Base.ProvidersFile, "base.providers-file", "", "TOML file with [providers.<name>] pacing overrides")
}

func (conf *ExportConfig) Validate() error {
	if util.StrNotSet(conf.Base.Chain) {
		return errors.New("base chain must be set")
	}
	if util.StrNotSet(conf.Base.Address) {
		return errors.New("base address must be set")
	}
	if _, _, err := conf.Base.DateWindow(); err != nil {
		return err
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

// DateWindow parses the optional date bounds. Nil means unbounded.
func (b exportBase) DateWindow() (*time.Time, *time.Time, error) {
	return ParseDateWindow(b.StartDate, b.EndDate)
}

func ParseDateWindow(start, end string) (*time.Time, *time.Time, error) {
	var startDate, endDate *time.Time
	if !util.StrNotSet(start) {
		parsed, err := time.Parse(DateLayout, start)
		if err != nil {
			return nil, nil, fmt.Errorf("start-date must use the layout %s: %w", DateLayout, err)
		}
		startDate = &parsed
	}
	if !util.StrNotSet(end) {
		parsed, err := time.Parse(DateLayout, end)
		if err != nil {
			return nil, nil, fmt.Errorf("end-date must use the layout %s: %w", DateLayout, err)
		}
		endDate = &parsed
	}
	if startDate != nil && endDate != nil && !startDate.Before(*endDate) {
		return nil, nil, errors.New("start-date must be before end-date")
	}
	return startDate, endDate, nil
}
