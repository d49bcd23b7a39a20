package config

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fixedEnv pins the working folder to a test directory.
type fixedEnv struct {
	dir string
}

func (e fixedEnv) CurrentFolder() (string, error) { return e.dir, nil }
func (e fixedEnv) WorkingFolder() string          { return e.dir }
func (e fixedEnv) LogLevel() string               { return "info" }

func TestNewJson_ReadsValuesFromFile(t *testing.T) {
	dir := t.TempDir()
	raw := []byte(`{"cumulus": {"serverAddr": ":7000", "defaultCacheSizeGib": 50}}`)
	err := ioutil.WriteFile(filepath.Join(dir, JsonConfigFileName), raw, 0644)
	assert.NoError(t, err)

	cfg, err := NewJson(fixedEnv{dir: dir})
	assert.NoError(t, err)

	assert.Equal(t, ":7000", cfg.GetString(CumulusServerAddr, ""))
	assert.Equal(t, 50, cfg.GetInt(CumulusCacheSizeGib, 0))
}

func TestNewJson_MissingKeyFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	raw := []byte(`{"cumulus": {"serverAddr": ":7000"}}`)
	err := ioutil.WriteFile(filepath.Join(dir, JsonConfigFileName), raw, 0644)
	assert.NoError(t, err)

	cfg, err := NewJson(fixedEnv{dir: dir})
	assert.NoError(t, err)

	assert.Equal(t, "Cumulus", cfg.GetString(CumulusDriveName, "Cumulus"))
}

func TestNewJson_MissingFileReturnsErrConfigNotLoaded(t *testing.T) {
	cfg, err := NewJson(fixedEnv{dir: t.TempDir()})
	assert.Equal(t, ErrConfigNotLoaded, err)
	assert.Nil(t, cfg)
}
