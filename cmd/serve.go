package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/epicexcelsior/awaken-long-tail-chains/client"
	"github.com/epicexcelsior/awaken-long-tail-chains/config"
	"github.com/epicexcelsior/awaken-long-tail-chains/core"
	"github.com/epicexcelsior/awaken-long-tail-chains/metrics"
	"github.com/epicexcelsior/awaken-long-tail-chains/tasks"
	"github.com/go-co-op/gocron"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	serveConfig       config.ServeConfig
	serveDbConnection *gorm.DB
	serveCredentials  config.CredentialStore
)

func init() {
	config.SetupLogFlags(&serveConfig.Log, serveCmd)
	config.SetupDatabaseFlags(&serveConfig.Database, serveCmd)
	config.SetupFetchFlags(&serveConfig.Fetch, serveCmd)
	config.SetupRegistryFlags(&serveConfig.Registry, serveCmd)
	config.SetupServeSpecificFlags(&serveConfig, serveCmd)
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves CSV exports over HTTP.",
	Long: `Starts the HTTP API. POST /export.csv with {"chain", "address", "startDate", "endDate"} returns
	the CSV. Prometheus metrics are served on /metrics. When registry.path is set the chain registry is
	refreshed on a schedule.`,
	PreRunE: setupServe,
	Run: func(cmd *cobra.Command, args []string) {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		recorder, err := metrics.New(registry)
		if err != nil {
			config.Log.Fatal("Error registering metrics", err)
		}

		server := &client.Server{
			Settings: core.AdapterSettings{
				Fetch:       serveConfig.Fetch,
				Providers:   serveConfig.Providers,
				Credentials: serveCredentials,
				Observer:    recorder,
			},
			Service:   core.Service{Recorder: recorder},
			DB:        serveDbConnection,
			Gatherer:  registry,
			Endpoints: serveConfig.Endpoints,
		}

		scheduler := gocron.NewScheduler(time.UTC)
		if serveConfig.Registry.Path != "" {
			server.SetAssets(loadAssets(serveConfig.Registry))
			if serveConfig.Server.RegistryRefresh > 0 {
				_, err = tasks.ScheduleRegistryRefresh(scheduler, serveConfig.Server.RegistryRefresh, serveConfig.Registry.Path, server.SetAssets)
				if err != nil {
					config.Log.Fatal("Error scheduling the chain registry refresh", err)
				}
			}
		}
		scheduler.StartAsync()
		defer scheduler.Stop()

		httpServer := &http.Server{
			Addr:              ":" + serveConfig.Server.Port,
			Handler:           client.NewRouter(server),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				config.Log.Error("Error shutting down the HTTP server", err)
			}
		}()

		config.Log.Infof("Serving exports on port %s", serveConfig.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			config.Log.Fatal("HTTP server stopped", err)
		}
		config.Log.Info("HTTP server stopped")
	},
}

func setupServe(cmd *cobra.Command, args []string) error {
	bindFlags(cmd, viperConf)
	if err := bindTables(viperConf, &serveConfig.Providers, &serveConfig.Credentials); err != nil {
		return err
	}
	if err := viperConf.UnmarshalKey("endpoints", &serveConfig.Endpoints); err != nil {
		return err
	}
	serveConfig.Providers = config.MergeProviders(config.DefaultProviders(), serveConfig.Providers)

	err := serveConfig.Validate()
	if err != nil {
		return err
	}

	// Logger
	logLevel := serveConfig.Log.Level
	logPath := serveConfig.Log.Path
	prettyLogging := serveConfig.Log.Pretty
	config.DoConfigureLogger(logPath, logLevel, prettyLogging)

	serveCredentials, err = config.LoadCredentials(serveConfig.Credentials, serveConfig.Server.EnvFile)
	if err != nil {
		return err
	}

	if serveConfig.Database.DatabaseEnabled() {
		serveDbConnection, err = connectDatabase(serveConfig.Database)
		if err != nil {
			config.Log.Error("Could not establish connection to the database", err)
			return err
		}
	}

	return nil
}
