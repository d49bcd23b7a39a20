package mount

import (
	"context"
)

// MountOptions carries the declared settings the native helper needs to
// establish the mount.
type MountOptions struct {
	MountPoint        string `json:"mountPoint"`
	DriveName         string `json:"driveName"`
	CacheSizeLimitGib int    `json:"cacheSizeLimitGib"`
}

// Service is the boundary to the out-of-process native mount helper. It
// performs the actual virtual-filesystem work; the daemon only drives it and
// interprets results. Every call is fallible and may take as long as
// the underlying OS operation; callers pass a context for deadlines.
//
// The helper reports two independent mount signals: a mount point being
// present and the filesystem behind it being active. "Mounted" is their
// conjunction, computed by callers.
type Service interface {
	// QueryMountPresence reports whether a mount point is registered
	// with the OS.
	QueryMountPresence(ctx context.Context) (bool, error)

	// QueryMountActive reports whether the virtual filesystem behind the
	// mount point is serving.
	QueryMountActive(ctx context.Context) (bool, error)

	// EnumerateMountTargets lists the selectable mount targets. Only
	// meaningful on drive-letter platforms; returns an empty list
	// elsewhere.
	EnumerateMountTargets(ctx context.Context) ([]string, error)

	// QueryUsedCacheBytes reports the current on-disk cache usage.
	QueryUsedCacheBytes(ctx context.Context) (int64, error)

	// QueryAvailableCacheBudgetBytes reports the storage-derived ceiling
	// for the local cache, independent of the user's chosen limit.
	QueryAvailableCacheBudgetBytes(ctx context.Context) (int64, error)

	// StartOrRestartMount establishes the mount with the given options.
	// Idempotent: an existing mount is torn down and re-established.
	StartOrRestartMount(ctx context.Context, opts MountOptions) error

	// StopMount tears the mount down.
	StopMount(ctx context.Context) error

	// PurgeCache deletes the local cache contents. The mount must be
	// stopped first; that sequencing is the caller's responsibility.
	PurgeCache(ctx context.Context) error

	// ValidateMountPath reports whether path is usable as a mount point.
	// Only invoked on platforms that mount to a filesystem path.
	ValidateMountPath(ctx context.Context, path string) (bool, error)
}
