package config

import (
	"os"

	"github.com/CumulusFS/cumulus-daemon/core/env"
)

type mapConfig struct {
	configStr map[string]string
	configInt map[string]int
}

// NewMap builds the daemon config from parsed flags, falling back to env
// values in dev mode.
func NewMap(flags *Flags) Config {
	configStr := make(map[string]string)
	configInt := make(map[string]int)

	// default values
	configStr[CumulusServerAddr] = ":9576"
	configStr[CumulusStorePath] = "~/.cumulus"
	configStr[CumulusNativeServiceURL] = "http://127.0.0.1:9577"
	configStr[CumulusDriveName] = "Cumulus"
	configInt[CumulusCacheSizeGib] = 10

	if flags.DevMode {
		if v := os.Getenv(env.ServerAddr); v != "" {
			configStr[CumulusServerAddr] = v
		}
		if v := os.Getenv(env.NativeServiceURL); v != "" {
			configStr[CumulusNativeServiceURL] = v
		}
		if v := os.Getenv(env.StorePath); v != "" {
			configStr[CumulusStorePath] = v
		}
	} else {
		if flags.ServerAddr != "" {
			configStr[CumulusServerAddr] = flags.ServerAddr
		}
		if flags.NativeServiceURL != "" {
			configStr[CumulusNativeServiceURL] = flags.NativeServiceURL
		}
		if flags.StorePath != "" {
			configStr[CumulusStorePath] = flags.StorePath
		}
	}

	c := mapConfig{
		configStr: configStr,
		configInt: configInt,
	}

	return c
}

func (m mapConfig) GetString(key string, defaultValue interface{}) string {
	if val, exists := m.configStr[key]; exists {
		return val
	}

	if stringValue, ok := defaultValue.(string); ok {
		return stringValue
	}

	return ""
}

func (m mapConfig) GetInt(key string, defaultValue interface{}) int {
	if val, exists := m.configInt[key]; exists {
		return val
	}

	if intVal, ok := defaultValue.(int); ok {
		return intVal
	}

	return 0
}
