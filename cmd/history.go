package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/epicexcelsior/awaken-long-tail-chains/config"
	dbTypes "github.com/epicexcelsior/awaken-long-tail-chains/db"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	historyConfig       config.HistoryConfig
	historyDbConnection *gorm.DB
)

func init() {
	config.SetupLogFlags(&historyConfig.Log, historyCmd)
	config.SetupDatabaseFlags(&historyConfig.Database, historyCmd)
	config.SetupHistorySpecificFlags(&historyConfig, historyCmd)
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:     "history",
	Short:   "Lists the recorded export runs of an address.",
	PreRunE: setupHistory,
	Run: func(cmd *cobra.Command, args []string) {
		runs, err := dbTypes.GetExportRuns(historyDbConnection, historyConfig.Base.Address, historyConfig.Base.Chain, historyConfig.Base.Limit)
		if err != nil {
			config.Log.Fatal("Error reading export runs", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "STARTED\tCHAIN\tFETCHED\tDROPPED\tROWS\tCOMPLETE\tSOURCE\tERROR")
		for _, run := range runs {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%t\t%s\t%s\n", run.StartedAt.UTC().Format(time.RFC3339), run.Chain,
				run.TotalFetched, run.Dropped, run.ExportedRows, run.Complete, run.DataSource, run.Error)
		}
		if err := w.Flush(); err != nil {
			config.Log.Fatal("Error writing history", err)
		}
	},
}

func setupHistory(cmd *cobra.Command, args []string) error {
	bindFlags(cmd, viperConf)
	err := historyConfig.Validate()
	if err != nil {
		return err
	}

	config.DoConfigureLogger(historyConfig.Log.Path, historyConfig.Log.Level, historyConfig.Log.Pretty)

	historyDbConnection, err = connectDatabase(historyConfig.Database)
	if err != nil {
		config.Log.Error("Could not establish connection to the database", err)
		return err
	}
	return nil
}
