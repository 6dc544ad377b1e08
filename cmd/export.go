package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/epicexcelsior/awaken-long-tail-chains/chainregistry"
	"github.com/epicexcelsior/awaken-long-tail-chains/chains"
	"github.com/epicexcelsior/awaken-long-tail-chains/client"
	"github.com/epicexcelsior/awaken-long-tail-chains/config"
	"github.com/epicexcelsior/awaken-long-tail-chains/core"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	exportConfig       config.ExportConfig
	exportDbConnection *gorm.DB
	exportCredentials  config.CredentialStore
	exportAssets       chainregistry.AssetMap
)

func init() {
	config.SetupLogFlags(&exportConfig.Log, exportCmd)
	config.SetupDatabaseFlags(&exportConfig.Database, exportCmd)
	config.SetupFetchFlags(&exportConfig.Fetch, exportCmd)
	config.SetupRegistryFlags(&exportConfig.Registry, exportCmd)
	config.SetupExportSpecificFlags(&exportConfig, exportCmd)
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Exports the transaction history of an address as an Awaken Tax CSV.",
	Long: `Fetches every transaction of the address from the chain's public API, classifies each one
	relative to the address and writes the CSV to stdout or to base.output. When a database is configured
	the run is recorded and can be listed with the history command.`,
	PreRunE: setupExport,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		chain, err := chains.Lookup(exportConfig.Base.Chain)
		if err != nil {
			config.Log.Fatal("Unknown chain", err)
		}
		chain = chain.WithAPIURL(exportConfig.Base.APIURL)

		session, err := core.NewSession(chain, core.AdapterSettings{
			Fetch:       exportConfig.Fetch,
			Providers:   exportConfig.Providers,
			Credentials: exportCredentials,
			Assets:      exportAssets,
		})
		if err != nil {
			config.Log.Fatal("Error building the export session", err)
		}

		request, err := exportRequest(&exportConfig)
		if err != nil {
			config.Log.Fatal("Invalid export window", err)
		}
		request.OnProgress = func(count int, page int) {
			config.Log.Infof("Fetched %d records (page %d)", count, page)
		}

		started := time.Now()
		export, err := core.Service{}.Export(ctx, session, request)
		client.RecordRun(exportDbConnection, chain.Name, exportConfig.Base.Address, started, export, err, session)
		if err != nil {
			config.Log.Fatal("Error exporting transactions", err)
		}

		meta := export.Metadata
		if !meta.Complete {
			config.Log.Warnf("History for %s is incomplete, %d of %d query branches finished", meta.Address, completedBranches(meta), len(meta.Branches))
		}
		config.Log.Infof("Exported %d rows from %d transactions (%d records dropped) using %s", len(export.Rows), meta.TotalFetched, meta.DroppedCount, meta.DataSource)

		if exportConfig.Base.Output == "" {
			fmt.Print(export.CSV())
			return
		}
		if err := os.WriteFile(exportConfig.Base.Output, []byte(export.CSV()), 0o644); err != nil {
			config.Log.Fatal("Error writing CSV", err)
		}
		config.Log.Infof("CSV written to %s", exportConfig.Base.Output)
	},
}

func setupExport(cmd *cobra.Command, args []string) error {
	bindFlags(cmd, viperConf)
	if err := bindTables(viperConf, &exportConfig.Providers, &exportConfig.Credentials); err != nil {
		return err
	}

	providers, err := resolveProviders(exportConfig.Providers, exportConfig.Base.ProvidersFile)
	if err != nil {
		return err
	}
	exportConfig.Providers = providers

	err = exportConfig.Validate()
	if err != nil {
		return err
	}

	// Logger
	logLevel := exportConfig.Log.Level
	logPath := exportConfig.Log.Path
	prettyLogging := exportConfig.Log.Pretty
	config.DoConfigureLogger(logPath, logLevel, prettyLogging)

	exportCredentials, err = config.LoadCredentials(exportConfig.Credentials, exportConfig.Base.EnvFile)
	if err != nil {
		return err
	}

	exportAssets = loadAssets(exportConfig.Registry)

	if exportConfig.Database.DatabaseEnabled() {
		exportDbConnection, err = connectDatabase(exportConfig.Database)
		if err != nil {
			config.Log.Error("Could not establish connection to the database", err)
			return err
		}
	}

	return nil
}

func completedBranches(meta core.Metadata) int {
	done := 0
	for _, branch := range meta.Branches {
		if branch.Complete {
			done++
		}
	}
	return done
}

func exportRequest(conf *config.ExportConfig) (core.ExportRequest, error) {
	startDate, endDate, err := conf.Base.DateWindow()
	if err != nil {
		return core.ExportRequest{}, err
	}
	return core.ExportRequest{Address: conf.Base.Address, StartDate: startDate, EndDate: endDate}, nil
}
