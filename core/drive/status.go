package drive

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/CumulusFS/cumulus-daemon/core/mount"
)

// StatusCache holds short-lived snapshots of the native side's observed
// state: mounted-state, available mount targets, used cache bytes and the
// available cache budget. Each snapshot is refreshed independently and
// replaced wholesale; a value is "unknown" until its first successful
// refresh. Reads may run concurrently with an in-flight mutation and are
// eventually-consistent, never transactional.
type StatusCache struct {
	svc   mount.Service
	store *ConfigStore

	mu           sync.RWMutex
	mounted      bool
	mountedKnown bool
	targets      []string
	targetsKnown bool
	usedBytes    int64
	usedKnown    bool
	budgetBytes  int64
	budgetKnown  bool
}

func NewStatusCache(svc mount.Service, store *ConfigStore) *StatusCache {
	return &StatusCache{
		svc:   svc,
		store: store,
	}
}

// Mounted reports the last observed mounted state and whether it is known
// yet. The drive counts as mounted only when the native helper reports the
// mount both present and active.
func (s *StatusCache) Mounted() (bool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mounted, s.mountedKnown
}

// Targets reports the last enumerated mount targets. The configured mount
// point is always part of the list, even when availability filtering on the
// native side would exclude it.
func (s *StatusCache) Targets() ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.targets))
	copy(out, s.targets)
	return out, s.targetsKnown
}

func (s *StatusCache) UsedCacheBytes() (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usedBytes, s.usedKnown
}

func (s *StatusCache) AvailableCacheBudgetBytes() (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.budgetBytes, s.budgetKnown
}

// RefreshMountState queries both mount signals and replaces the cached
// mounted-state atomically.
func (s *StatusCache) RefreshMountState(ctx context.Context) error {
	present, err := s.svc.QueryMountPresence(ctx)
	if err != nil {
		return err
	}
	active, err := s.svc.QueryMountActive(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.mounted = present && active
	s.mountedKnown = true
	s.mu.Unlock()
	return nil
}

// RefreshTargets re-enumerates the selectable mount targets.
func (s *StatusCache) RefreshTargets(ctx context.Context) error {
	targets, err := s.svc.EnumerateMountTargets(ctx)
	if err != nil {
		return err
	}

	dc, err := s.store.Get()
	if err != nil {
		return err
	}

	found := false
	for _, t := range targets {
		if t == dc.MountPoint {
			found = true
			break
		}
	}
	if !found {
		targets = append(targets, dc.MountPoint)
	}

	s.mu.Lock()
	s.targets = targets
	s.targetsKnown = true
	s.mu.Unlock()
	return nil
}

func (s *StatusCache) RefreshCacheUsage(ctx context.Context) error {
	used, err := s.svc.QueryUsedCacheBytes(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.usedBytes = used
	s.usedKnown = true
	s.mu.Unlock()
	return nil
}

func (s *StatusCache) RefreshCacheBudget(ctx context.Context) error {
	budget, err := s.svc.QueryAvailableCacheBudgetBytes(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.budgetBytes = budget
	s.budgetKnown = true
	s.mu.Unlock()
	return nil
}

// RefreshAll refreshes all four snapshots. The queries are independent and
// run concurrently; the first error is returned but does not prevent the
// other snapshots from updating.
func (s *StatusCache) RefreshAll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.RefreshMountState(ctx) })
	g.Go(func() error { return s.RefreshTargets(ctx) })
	g.Go(func() error { return s.RefreshCacheUsage(ctx) })
	g.Go(func() error { return s.RefreshCacheBudget(ctx) })
	return g.Wait()
}
