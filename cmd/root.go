package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/epicexcelsior/awaken-long-tail-chains/chainregistry"
	"github.com/epicexcelsior/awaken-long-tail-chains/config"
	dbTypes "github.com/epicexcelsior/awaken-long-tail-chains/db"
	"github.com/epicexcelsior/awaken-long-tail-chains/tasks"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

var (
	// config file location to load
	cfgFile string
	// stores the config file loaded by initConfig, read by each command's bindFlags
	viperConf = viper.New()
	rootCmd   = &cobra.Command{
		Use:   "awaken",
		Short: "A CLI tool for exporting wallet histories from long-tail chains",
		Long: `Awaken fetches the complete transaction history of a wallet from a chain's public API,
		classifies every transaction relative to the wallet and renders it as an Awaken Tax CSV.`,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// initConfig on initialize of cobra guarantees the config file is read before all subcommands are executed
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.awaken/config.toml)")
}

func initConfig() {
	if cfgFile != "" {
		viperConf.SetConfigFile(cfgFile)
		viperConf.SetConfigType("toml")
	} else {
		// Check in current working dir
		pwd, err := os.Getwd()
		if err != nil {
			log.Fatalf("Could not determine current working dir. Err: %v", err)
		}
		if _, err := os.Stat(fmt.Sprintf("%v/config.toml", pwd)); err == nil {
			cfgFile = pwd
		} else {
			// file not in current working dir. Check home dir instead
			home, err := os.UserHomeDir()
			if err != nil {
				log.Fatalf("Failed to find user home dir. Err: %v", err)
			}
			cfgFile = fmt.Sprintf("%s/.awaken", home)
		}
		viperConf.AddConfigPath(cfgFile)
		viperConf.SetConfigType("toml")
		viperConf.SetConfigName("config")
	}

	err := viperConf.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("Failed to read config file. Err: %v", err)
		}
		return
	}
	log.Println("CFG successfully read from: ", viperConf.ConfigFileUsed())
}

// bindFlags fills every flag the user did not pass from the config file. Flags are named "section.key"
// so they line up with the TOML tables.
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed || !v.IsSet(f.Name) {
			return
		}
		err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		if err != nil {
			log.Fatalf("Failed to bind config value for %s. Err: %v", f.Name, err)
		}
	})
}

// bindTables reads the config sections that have no flag form.
func bindTables(v *viper.Viper, providers *map[string]config.Provider, credentials *map[string]string) error {
	if err := v.UnmarshalKey("providers", providers); err != nil {
		return fmt.Errorf("reading [providers]: %w", err)
	}
	if err := v.UnmarshalKey("credentials", credentials); err != nil {
		return fmt.Errorf("reading [credentials]: %w", err)
	}
	return nil
}

// resolveProviders layers the built-in pacing, the main config and an optional providers file.
func resolveProviders(configured map[string]config.Provider, providersFile string) (map[string]config.Provider, error) {
	merged := config.MergeProviders(config.DefaultProviders(), configured)
	if providersFile == "" {
		return merged, nil
	}
	fromFile, err := config.GetProvidersConfig(providersFile)
	if err != nil {
		return nil, err
	}
	return config.MergeProviders(merged, fromFile), nil
}

// connectDatabase opens the configured database, tunes the pool and runs the migrations.
func connectDatabase(dbConf config.Database) (*gorm.DB, error) {
	dbConf.LogLevel = strings.ToLower(dbConf.LogLevel)
	db, err := dbTypes.Connect(dbConf)
	if err != nil {
		return nil, err
	}

	sqldb, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqldb.SetMaxIdleConns(10)
	sqldb.SetMaxOpenConns(100)
	sqldb.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// loadAssets reads the local chain-registry checkout. Without one, Cosmos denominations fall back to guessing.
func loadAssets(registry config.Registry) chainregistry.AssetMap {
	if registry.Path == "" {
		return nil
	}
	assets, err := tasks.LoadRegistryAssets(registry.Path, false)
	if err != nil {
		config.Log.Warn("Could not read the chain registry, run update-assets first", err)
		return nil
	}
	return assets
}
