package drive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestConfigStore() (*memStore, *ConfigStore) {
	st := newMemStore()
	return st, NewConfigStore(st, testConfig{})
}

func TestConfigStore_DefaultsWhenNeverPersisted(t *testing.T) {
	_, cs := newTestConfigStore()

	dc, err := cs.Get()
	assert.NoError(t, err)
	assert.False(t, dc.Enabled)
	assert.NotEmpty(t, dc.MountPoint, "mount point must never be empty")
	assert.Equal(t, DefaultCacheStepGib, dc.CacheSizeLimitGib)
}

func TestConfigStore_UpdateIsAMerge(t *testing.T) {
	_, cs := newTestConfigStore()

	enabled := true
	_, err := cs.Update(ConfigUpdate{Enabled: &enabled})
	assert.NoError(t, err)

	target := "/mnt/cumulus"
	dc, err := cs.Update(ConfigUpdate{MountPoint: &target})
	assert.NoError(t, err)

	// the earlier enabled write survives a partial update
	assert.True(t, dc.Enabled)
	assert.Equal(t, "/mnt/cumulus", dc.MountPoint)
	assert.Equal(t, DefaultCacheStepGib, dc.CacheSizeLimitGib)
}

func TestConfigStore_UpdateIsDurable(t *testing.T) {
	st, cs := newTestConfigStore()

	size := 25
	_, err := cs.Update(ConfigUpdate{CacheSizeLimitGib: &size})
	assert.NoError(t, err)

	// a fresh store over the same backing data reads the same record
	reopened := NewConfigStore(st, testConfig{})
	dc, err := reopened.Get()
	assert.NoError(t, err)
	assert.Equal(t, 25, dc.CacheSizeLimitGib)
}
