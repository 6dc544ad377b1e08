package cmd

import (
	"github.com/epicexcelsior/awaken-long-tail-chains/config"
	"github.com/epicexcelsior/awaken-long-tail-chains/tasks"
	"github.com/spf13/cobra"
)

var updateAssetsConfig config.UpdateAssetsConfig

func init() {
	config.SetupLogFlags(&updateAssetsConfig.Log, updateAssetsCmd)
	config.SetupRegistryFlags(&updateAssetsConfig.Registry, updateAssetsCmd)
	rootCmd.AddCommand(updateAssetsCmd)
}

var updateAssetsCmd = &cobra.Command{
	Use:   "update-assets",
	Short: "Clones or pulls the cosmos chain-registry used to name Cosmos denominations.",
	Long: `Clones the cosmos chain-registry into registry.path, or pulls it when it is already there, and
	checks that the asset lists can be read.`,
	PreRunE: setupUpdateAssets,
	Run: func(cmd *cobra.Command, args []string) {
		assets, err := tasks.LoadRegistryAssets(updateAssetsConfig.Registry.Path, true)
		if err != nil {
			config.Log.Fatal("Error updating the chain registry", err)
		}
		config.Log.Infof("Chain registry at %s is up to date with %d assets", updateAssetsConfig.Registry.Path, len(assets))
	},
}

func setupUpdateAssets(cmd *cobra.Command, args []string) error {
	bindFlags(cmd, viperConf)
	err := updateAssetsConfig.Validate()
	if err != nil {
		return err
	}

	config.DoConfigureLogger(updateAssetsConfig.Log.Path, updateAssetsConfig.Log.Level, updateAssetsConfig.Log.Pretty)
	return nil
}
