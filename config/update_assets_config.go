package config

import (
	"errors"

	"github.com/epicexcelsior/awaken-long-tail-chains/util"
)

type UpdateAssetsConfig struct {
	Log      log
	Registry Registry
}

func (conf *UpdateAssetsConfig) Validate() error {
	if util.StrNotSet(conf.Registry.Path) {
		return errors.New("registry path must be set")
	}
	return nil
}
