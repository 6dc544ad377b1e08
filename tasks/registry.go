package tasks

import (
	"github.com/epicexcelsior/awaken-long-tail-chains/chainregistry"
	"github.com/epicexcelsior/awaken-long-tail-chains/config"
	"github.com/go-co-op/gocron"
)

// Directories in the chain-registry checkout that never hold mainnet asset lists.
var RegistryBlacklist = map[string]bool{
	".git":        true,
	".github":     true,
	"_IBC":        true,
	"_non-cosmos": true,
	"_scripts":    true,
	"testnets":    true,
}

// LoadRegistryAssets optionally pulls the registry checkout, then reads every asset list in it.
func LoadRegistryAssets(path string, update bool) (chainregistry.AssetMap, error) {
	if update {
		config.Log.Infof("Updating chain registry at %s", path)
		err := chainregistry.UpdateChainRegistryOnDisk(path)
		if err != nil {
			return nil, err
		}
	}

	assets, err := chainregistry.GetAssetMapOnDisk(path, RegistryBlacklist)
	if err != nil {
		return nil, err
	}
	config.Log.Infof("Loaded %d chain registry assets", len(assets))
	return assets, nil
}

// RegistryRefreshTask reloads the asset map and hands it to apply. On failure the previous map stays in use.
func RegistryRefreshTask(path string, update bool, apply func(chainregistry.AssetMap)) {
	config.Log.Info("Task started for RegistryRefreshTask")
	assets, err := LoadRegistryAssets(path, update)
	if err != nil {
		config.Log.Error("Error in RegistryRefreshTask, keeping the previous asset map", err)
		return
	}
	apply(assets)
	config.Log.Info("Task ended for RegistryRefreshTask")
}

// ScheduleRegistryRefresh pulls the registry and reloads the asset map every hours hours.
func ScheduleRegistryRefresh(scheduler *gocron.Scheduler, hours int, path string, apply func(chainregistry.AssetMap)) (*gocron.Job, error) {
	return scheduler.Every(hours).Hours().Do(RegistryRefreshTask, path, true, apply)
}
