package config

import (
	"errors"

	"github.com/epicexcelsior/awaken-long-tail-chains/util"
	"github.com/spf13/cobra"
)

type HistoryConfig struct {
	Database Database
	Log      log
	Base     historyBase
}

type historyBase struct {
	Chain   string
	Address string
	Limit   int
}

func SetupHistorySpecificFlags(conf *HistoryConfig, cmd *cobra.Command) {
	cmd.Flags().StringVar(&conf.Base.Chain, "base.chain", "", "only list runs for this chain")
	cmd.Flags().StringVar(&conf.Base.Address, "base.address", "", "wallet address whose export runs are listed")
	cmd.Flags().IntVar(&conf.Base.Limit, "base.limit", 20, "maximum number of runs to list")
}

func (conf *HistoryConfig) Validate() error {
	if util.StrNotSet(conf.Base.Address) {
		return errors.New("base address must be set")
	}
	if conf.Base.Limit <= 0 {
		return errors.New("base limit must be a positive number")
	}
	if !conf.Database.DatabaseEnabled() {
		return errors.New("a database (database.sqlite or database.host) must be configured")
	}
	return validateDatabaseConf(conf.Database)
}
