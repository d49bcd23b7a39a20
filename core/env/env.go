package env

import (
	syslog "log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	CumulusWorkingDir = "CUMULUS_APP_DIR"
	LogLevel          = "LOG_LEVEL"
	ServerAddr        = "CUMULUS_SERVER_ADDR"
	NativeServiceURL  = "CUMULUS_NATIVE_SERVICE_URL"
	StorePath         = "CUMULUS_STORE_PATH"
)

type CumulusEnv interface {
	CurrentFolder() (string, error)
	WorkingFolder() string
	LogLevel() string
}

type cumulusEnv struct {
}

func New() CumulusEnv {
	err := godotenv.Load()
	if err != nil {
		syslog.Println("Error loading .env file. Using defaults")
	}

	return cumulusEnv{}
}

func (s cumulusEnv) CurrentFolder() (string, error) {
	path, err := os.Executable()
	if err != nil {
		return "", err
	}

	return filepath.Dir(path), nil
}

func (s cumulusEnv) WorkingFolder() string {
	var wd = os.Getenv(CumulusWorkingDir)
	// use default
	if wd == "" {
		cf, err := s.CurrentFolder()
		if err != nil {
			syslog.Fatal("unable to get working folder", err)
			panic(err)
		}
		wd = cf
	}

	return wd
}

func (s cumulusEnv) LogLevel() string {
	var ll = os.Getenv(LogLevel)

	if ll == "" {
		return "info"
	}

	return ll
}
