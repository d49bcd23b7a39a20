package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/creamdog/gonfig"

	"github.com/CumulusFS/cumulus-daemon/core/env"
	"github.com/CumulusFS/cumulus-daemon/log"
)

// jsonConfig implements Config backed by a cumulus.json file in the
// working folder. Used by packaged installs where flags are not practical.
type jsonConfig struct {
	cfg gonfig.Gonfig
}

// NewJson loads the config from cumulus.json in the working folder. Returns
// ErrConfigNotLoaded when the file is missing or unreadable so callers can
// fall back to another config source.
func NewJson(env env.CumulusEnv) (Config, error) {
	wd := env.WorkingFolder()
	f, err := os.Open(filepath.Join(wd, JsonConfigFileName))
	if err != nil {
		return nil, ErrConfigNotLoaded
	}
	defer f.Close()

	cfg, err := gonfig.FromJson(f)
	if err != nil {
		return nil, ErrConfigNotLoaded
	}

	return jsonConfig{cfg: cfg}, nil
}

func (c jsonConfig) GetString(key string, defaultValue interface{}) string {
	v, err := c.cfg.GetString(key, defaultValue)
	if err != nil {
		log.Error(fmt.Sprintf("error getting key %s from config", key), err)
		return ""
	}

	return v
}

func (c jsonConfig) GetInt(key string, defaultValue interface{}) int {
	v, err := c.cfg.GetInt(key, defaultValue)
	if err != nil {
		log.Error(fmt.Sprintf("error getting key %s from config", key), err)
		return 0
	}

	return v
}
