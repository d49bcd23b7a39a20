package config

import (
	"errors"
)

const (
	JsonConfigFileName = "cumulus.json"

	CumulusServerAddr       = "cumulus/serverAddr"
	CumulusStorePath        = "cumulus/storePath"
	CumulusNativeServiceURL = "cumulus/nativeServiceUrl"
	CumulusDriveName        = "cumulus/driveName"
	CumulusMountPoint       = "cumulus/defaultMountPoint"
	CumulusCacheSizeGib     = "cumulus/defaultCacheSizeGib"
)

var (
	ErrConfigNotLoaded = errors.New("config file was not loaded correctly or it does not exist")
)

// Config used to fetch config information
type Config interface {
	GetString(key string, defaultValue interface{}) string
	GetInt(key string, defaultValue interface{}) int
}

// Flags carries the command line options the daemon was started with.
type Flags struct {
	ServerAddr       string
	NativeServiceURL string
	StorePath        string
	DevMode          bool
}
