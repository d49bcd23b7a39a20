package drive

import (
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"github.com/CumulusFS/cumulus-daemon/config"
	"github.com/CumulusFS/cumulus-daemon/core/store"
)

// store key for the declared drive configuration record
const declaredConfigKey = "drive/declaredConfig"

// DeclaredConfig is the persisted desired state of the virtual drive. It is
// user intent, not observed reality; see StatusCache for the latter. Only
// the Controller writes it, and only after the native side confirmed the
// corresponding operation.
type DeclaredConfig struct {
	Enabled           bool   `json:"enabled"`
	MountPoint        string `json:"mountPoint"`
	CacheSizeLimitGib int    `json:"cacheSizeLimitGib"`
}

// ConfigUpdate is a partial merge over DeclaredConfig. Nil fields are left
// untouched.
type ConfigUpdate struct {
	Enabled           *bool
	MountPoint        *string
	CacheSizeLimitGib *int
}

// ConfigStore persists the DeclaredConfig record. Updates are merges over
// the stored record, never full replacements, and are durable before Update
// returns.
type ConfigStore struct {
	st  store.Store
	cfg config.Config
	mu  sync.Mutex
}

func NewConfigStore(st store.Store, cfg config.Config) *ConfigStore {
	return &ConfigStore{
		st:  st,
		cfg: cfg,
	}
}

// Get returns the stored record, or platform defaults if nothing was ever
// persisted. The mount point is never empty.
func (s *ConfigStore) Get() (DeclaredConfig, error) {
	raw, err := s.st.Get([]byte(declaredConfigKey))
	if err == store.ErrKeyNotFound {
		return s.defaults(), nil
	}
	if err != nil {
		return DeclaredConfig{}, errors.Wrap(err, "failed to read drive config")
	}

	var dc DeclaredConfig
	if err := json.Unmarshal(raw, &dc); err != nil {
		return DeclaredConfig{}, errors.Wrap(err, "corrupt drive config record")
	}

	if dc.MountPoint == "" {
		dc.MountPoint = defaultMountPoint(s.cfg)
	}
	if dc.CacheSizeLimitGib <= 0 {
		dc.CacheSizeLimitGib = s.cfg.GetInt(config.CumulusCacheSizeGib, DefaultCacheStepGib)
	}

	return dc, nil
}

// Update merges u into the stored record and persists the result. Returns
// the record as persisted.
func (s *ConfigStore) Update(u ConfigUpdate) (DeclaredConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dc, err := s.Get()
	if err != nil {
		return DeclaredConfig{}, err
	}

	if u.Enabled != nil {
		dc.Enabled = *u.Enabled
	}
	if u.MountPoint != nil {
		dc.MountPoint = *u.MountPoint
	}
	if u.CacheSizeLimitGib != nil {
		dc.CacheSizeLimitGib = *u.CacheSizeLimitGib
	}

	raw, err := json.Marshal(dc)
	if err != nil {
		return DeclaredConfig{}, err
	}
	if err := s.st.Set([]byte(declaredConfigKey), raw); err != nil {
		return DeclaredConfig{}, errors.Wrap(err, "failed to persist drive config")
	}

	return dc, nil
}

func (s *ConfigStore) defaults() DeclaredConfig {
	return DeclaredConfig{
		Enabled:           false,
		MountPoint:        defaultMountPoint(s.cfg),
		CacheSizeLimitGib: s.cfg.GetInt(config.CumulusCacheSizeGib, DefaultCacheStepGib),
	}
}
