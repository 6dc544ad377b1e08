package chainregistry

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/epicexcelsior/awaken-long-tail-chains/config"
	"github.com/go-git/go-git/v5"
)

const (
	ChainRegistryGitRepo = "https://github.com/cosmos/chain-registry.git"
)

func UpdateChainRegistryOnDisk(chainRegistryLocation string) error {
	_, err := os.Stat(chainRegistryLocation)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	if os.IsNotExist(err) {
		err = os.MkdirAll(chainRegistryLocation, 0o755)
		if err != nil {
			return err
		}
	}

	// git clone repo
	_, err = git.PlainClone(chainRegistryLocation, false, &git.CloneOptions{
		URL:   ChainRegistryGitRepo,
		Depth: 1,
	})

	// Check if already cloned
	if err != nil && !errors.Is(err, git.ErrRepositoryAlreadyExists) {
		return err
	} else if errors.Is(err, git.ErrRepositoryAlreadyExists) {
		// Pull if already cloned
		r, err := git.PlainOpen(chainRegistryLocation)
		if err != nil {
			return err
		}

		w, err := r.Worktree()
		if err != nil {
			return err
		}

		err = w.Pull(&git.PullOptions{})
		// Ignore up-to-date error
		if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
			return err
		}
	}

	return nil
}

// GetAssetMapOnDisk reads every <chain>/assetlist.json below the registry checkout.
func GetAssetMapOnDisk(chainRegistryLocation string, chainRegBlacklist map[string]bool) (AssetMap, error) {
	chainRegEntries, err := os.ReadDir(chainRegistryLocation)
	if err != nil {
		return nil, err
	}
	assetMap := make(AssetMap)
	for _, entry := range chainRegEntries {
		if !entry.IsDir() || chainRegBlacklist[entry.Name()] {
			continue
		}
		path := filepath.Join(chainRegistryLocation, entry.Name(), "assetlist.json")

		// check if file exists
		_, err := os.Stat(path)
		if err != nil && os.IsNotExist(err) {
			config.Log.Debugf("Chain registry asset list for %s does not exist. Skipping...", entry.Name())
			continue
		} else if err != nil {
			return nil, err
		}

		currAssets, err := readAssetList(path)
		if err != nil {
			return nil, err
		}

		for _, asset := range currAssets.Assets {
			asset.ChainName = currAssets.ChainName
			if prevEntry, ok := assetMap[asset.Base]; ok {
				config.Log.Debugf("Duplicate asset found for %s in %s. Keeping entry for %s", asset.Base, currAssets.ChainName, prevEntry.ChainName)
				continue
			}
			assetMap[asset.Base] = asset
		}
	}

	return assetMap, nil
}

func readAssetList(path string) (*AssetList, error) {
	jsonFile, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer jsonFile.Close()

	currAssets := &AssetList{}
	err = json.NewDecoder(jsonFile).Decode(currAssets)
	if err != nil {
		return nil, err
	}
	return currAssets, nil
}
