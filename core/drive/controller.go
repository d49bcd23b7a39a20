package drive

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/CumulusFS/cumulus-daemon/config"
	"github.com/CumulusFS/cumulus-daemon/core/mount"
	"github.com/CumulusFS/cumulus-daemon/log"
)

var DefaultDriveName = "Cumulus"

const bytesPerGib = int64(1) << 30

var (
	// ErrInvalidMountPoint is returned when the configured or requested
	// mount point cannot be used. No mutating native call was issued.
	ErrInvalidMountPoint = errors.New("mount point is not usable")

	// ErrInvalidCacheSize is returned when a requested cache size is not
	// one of the currently selectable tiers.
	ErrInvalidCacheSize = errors.New("cache size is not a selectable tier")

	// ErrMountNotUp is returned when the native helper reported a
	// successful mount start but the drive did not actually come up.
	ErrMountNotUp = errors.New("mount did not come up after start")

	// ErrConfirmationDeclined is returned when the user declined the
	// confirmation dialog. The transition was aborted before the guard
	// was taken and no state changed.
	ErrConfirmationDeclined = errors.New("confirmation declined")
)

// ConfirmRequest describes a confirmation dialog presented by an external
// collaborator before a destructive transition proceeds.
type ConfirmRequest struct {
	Title         string
	ContinueLabel string
	Description   string
	Destructive   bool
}

// Confirmer is the confirmation-dialog boundary. A false result is a normal
// abort, not an error.
type Confirmer interface {
	Confirm(ctx context.Context, req ConfirmRequest) (bool, error)
}

// AutoConfirm accepts every confirmation request. Used for startup
// reconciliation where no user is present to decline.
var AutoConfirm Confirmer = autoConfirm{}

type autoConfirm struct{}

func (autoConfirm) Confirm(ctx context.Context, req ConfirmRequest) (bool, error) {
	return true, nil
}

// TargetPicker is the directory/drive-letter picker boundary. The second
// return value is false when the user cancelled.
type TargetPicker interface {
	PickTarget(ctx context.Context, available []string) (string, bool, error)
}

// Explorer opens a path in the platform file browser.
type Explorer interface {
	Open(path string) error
}

// Controller reconciles the declared drive configuration with the native
// mount helper. All mutating transitions run under a single-flight guard:
// while one is in flight, further transition requests are dropped as silent
// no-ops, never queued. The declared config is only rewritten after the
// native side confirmed the operation; on failure the drive is declared
// disabled rather than left in a guessed state.
type Controller struct {
	cfg      config.Config
	svc      mount.Service
	store    *ConfigStore
	status   *StatusCache
	explorer Explorer

	// single-flight guard over mutating transitions
	inFlight int32
}

func NewController(
	cfg config.Config,
	svc mount.Service,
	store *ConfigStore,
	status *StatusCache,
	explorer Explorer,
) *Controller {
	return &Controller{
		cfg:      cfg,
		svc:      svc,
		store:    store,
		status:   status,
		explorer: explorer,
	}
}

func (c *Controller) tryAcquire() bool {
	return atomic.CompareAndSwapInt32(&c.inFlight, 0, 1)
}

func (c *Controller) release() {
	atomic.StoreInt32(&c.inFlight, 0)
}

// Status exposes the observed-state cache for the presentation layer.
func (c *Controller) Status() *StatusCache {
	return c.status
}

// Config exposes the declared-state store for the presentation layer.
// Reads only; writes stay with the controller.
func (c *Controller) Config() *ConfigStore {
	return c.store
}

// DriveLetterPlatform reports whether mount targets are drive letters here
// rather than filesystem paths, so the presentation layer can pick the
// right selection affordance.
func (c *Controller) DriveLetterPlatform() bool {
	return driveLetterPlatform
}

// ShouldMount checks the persisted declared config to determine whether the
// drive was enabled before the last shutdown.
func (c *Controller) ShouldMount() bool {
	dc, err := c.store.Get()
	if err != nil {
		log.Error("failed to read persisted drive config", err)
		return false
	}
	return dc.Enabled
}

// Toggle enables or disables the drive. Disabling asks for confirmation
// first; a declined dialog aborts with ErrConfirmationDeclined, no state
// change and without taking the guard. Enabling re-verifies the mount after the native call, since a
// successful return alone does not prove the mount came up.
func (c *Controller) Toggle(ctx context.Context, enable bool, confirm Confirmer) error {
	if !enable {
		ok, err := confirm.Confirm(ctx, ConfirmRequest{
			Title:         "Disconnect drive",
			ContinueLabel: "Disconnect",
			Description:   "Files will not be available at the mount point until you reconnect.",
			Destructive:   true,
		})
		if err != nil {
			return err
		}
		if !ok {
			return ErrConfirmationDeclined
		}
	}

	if !c.tryAcquire() {
		log.Debug("drive operation already in flight, dropping toggle")
		return nil
	}
	defer c.release()
	defer c.refreshMountAndTargets(ctx)

	dc, err := c.store.Get()
	if err != nil {
		return err
	}

	if enable {
		if err := c.validateMountPoint(ctx, dc.MountPoint); err != nil {
			return err
		}
		if err := c.startAndVerify(ctx, dc); err != nil {
			return c.fail("failed to connect drive", err)
		}
	} else {
		if err := c.svc.StopMount(ctx); err != nil {
			return c.fail("failed to disconnect drive", err)
		}
	}

	if _, err := c.store.Update(ConfigUpdate{Enabled: &enable}); err != nil {
		return c.fail("failed to persist drive state", err)
	}

	log.Info("drive toggled", "enabled:"+boolTag(enable))
	return nil
}

// SetMountPoint lets the user pick a new mount target and applies it. When
// the drive is currently mounted it is restarted on the new target before
// the choice is persisted.
func (c *Controller) SetMountPoint(ctx context.Context, picker TargetPicker) error {
	if !c.tryAcquire() {
		log.Debug("drive operation already in flight, dropping mount point change")
		return nil
	}
	defer c.release()
	defer c.refreshMountAndTargets(ctx)

	available, _ := c.status.Targets()
	target, ok, err := picker.PickTarget(ctx, available)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if err := c.validateMountPoint(ctx, target); err != nil {
		return err
	}

	dc, err := c.store.Get()
	if err != nil {
		return err
	}

	mounted, err := c.queryMounted(ctx)
	if err != nil {
		return c.fail("failed to change mount point", err)
	}
	if mounted {
		next := dc
		next.MountPoint = target
		if err := c.startAndVerify(ctx, next); err != nil {
			return c.fail("failed to remount drive at new mount point", err)
		}
	}

	if _, err := c.store.Update(ConfigUpdate{MountPoint: &target}); err != nil {
		return c.fail("failed to persist mount point", err)
	}

	log.Info("mount point changed", "target:"+target)
	return nil
}

// SetCacheSize applies a new local cache size limit. The size must be one
// of the tiers generated from the last observed cache budget; anything else
// is rejected before any native call.
func (c *Controller) SetCacheSize(ctx context.Context, sizeGib int) error {
	budgetBytes, known := c.status.AvailableCacheBudgetBytes()
	budgetGib := 0
	if known {
		budgetGib = int(budgetBytes / bytesPerGib)
	}
	if !stepSetContains(GenerateCacheSteps(budgetGib), sizeGib) {
		return errors.Wrapf(ErrInvalidCacheSize, "%d GiB", sizeGib)
	}

	if !c.tryAcquire() {
		log.Debug("drive operation already in flight, dropping cache size change")
		return nil
	}
	defer c.release()
	defer func() {
		c.refreshMountAndTargets(ctx)
		c.refreshCache(ctx)
	}()

	dc, err := c.store.Get()
	if err != nil {
		return err
	}

	if err := c.validateMountPoint(ctx, dc.MountPoint); err != nil {
		return err
	}

	mounted, err := c.queryMounted(ctx)
	if err != nil {
		return c.fail("failed to change cache size", err)
	}
	if mounted {
		next := dc
		next.CacheSizeLimitGib = sizeGib
		if err := c.startAndVerify(ctx, next); err != nil {
			return c.fail("failed to apply cache size limit", err)
		}
	}

	if _, err := c.store.Update(ConfigUpdate{CacheSizeLimitGib: &sizeGib}); err != nil {
		return c.fail("failed to persist cache size limit", err)
	}

	return nil
}

// PurgeCache stops the mount, deletes the local cache and, if the drive was
// mounted when the operation began, restores the mount afterwards.
func (c *Controller) PurgeCache(ctx context.Context, confirm Confirmer) error {
	ok, err := confirm.Confirm(ctx, ConfirmRequest{
		Title:         "Clear local cache",
		ContinueLabel: "Clear cache",
		Description:   "Locally cached file contents will be deleted. Files stay available from their remote copy.",
		Destructive:   true,
	})
	if err != nil {
		return err
	}
	if !ok {
		return ErrConfirmationDeclined
	}

	if !c.tryAcquire() {
		log.Debug("drive operation already in flight, dropping cache purge")
		return nil
	}
	defer c.release()
	defer func() {
		c.refreshMountAndTargets(ctx)
		c.refreshCache(ctx)
	}()

	dc, err := c.store.Get()
	if err != nil {
		return err
	}

	wasMounted, err := c.queryMounted(ctx)
	if err != nil {
		return c.fail("failed to clear cache", err)
	}

	if err := c.svc.StopMount(ctx); err != nil {
		return c.fail("failed to stop drive before clearing cache", err)
	}
	if err := c.svc.PurgeCache(ctx); err != nil {
		// the mount is now stopped with no restart attempted
		return c.fail("failed to clear cache", err)
	}
	if wasMounted {
		if err := c.startAndVerify(ctx, dc); err != nil {
			return c.fail("failed to restore drive after clearing cache", err)
		}
	}

	log.Info("local cache cleared")
	return nil
}

// Browse opens the mount point in the platform file browser. Not a
// mutating transition: it is gated on the drive being enabled and mounted,
// no-ops otherwise and never touches the declared config.
func (c *Controller) Browse(ctx context.Context) error {
	dc, err := c.store.Get()
	if err != nil {
		return err
	}
	mounted, _ := c.status.Mounted()
	if !dc.Enabled || !mounted {
		return nil
	}

	if err := c.explorer.Open(dc.MountPoint); err != nil {
		return errors.Wrap(err, "failed to open mount point")
	}
	return nil
}

// RefreshStatus re-queries all observed state. Read-only, so it bypasses
// the single-flight guard; external notifiers (device arrival) use this
// entry point.
func (c *Controller) RefreshStatus(ctx context.Context) error {
	return c.status.RefreshAll(ctx)
}

// Listen consumes refresh requests from the notifier until the context is
// cancelled or the notifier is closed.
func (c *Controller) Listen(ctx context.Context, notifier *RefreshNotifier) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-notifier.C():
			if !ok {
				return nil
			}
			if err := c.RefreshStatus(ctx); err != nil {
				log.Error("failed to refresh drive status on external signal", err)
			}
		}
	}
}

// Shutdown stops the mount if the drive is enabled. The declared config is
// left untouched so the drive reconnects on the next daemon start.
func (c *Controller) Shutdown() error {
	dc, err := c.store.Get()
	if err != nil {
		return err
	}
	if !dc.Enabled {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return c.svc.StopMount(ctx)
}

// startAndVerify issues the mount start and re-checks both mount signals.
// The native call returning success is not trusted on its own.
func (c *Controller) startAndVerify(ctx context.Context, dc DeclaredConfig) error {
	if err := c.svc.StartOrRestartMount(ctx, c.mountOptions(dc)); err != nil {
		return err
	}
	mounted, err := c.queryMounted(ctx)
	if err != nil {
		return err
	}
	if !mounted {
		return ErrMountNotUp
	}
	return nil
}

func (c *Controller) queryMounted(ctx context.Context) (bool, error) {
	present, err := c.svc.QueryMountPresence(ctx)
	if err != nil {
		return false, err
	}
	active, err := c.svc.QueryMountActive(ctx)
	if err != nil {
		return false, err
	}
	return present && active, nil
}

func (c *Controller) mountOptions(dc DeclaredConfig) mount.MountOptions {
	return mount.MountOptions{
		MountPoint:        dc.MountPoint,
		DriveName:         c.cfg.GetString(config.CumulusDriveName, DefaultDriveName),
		CacheSizeLimitGib: dc.CacheSizeLimitGib,
	}
}

// fail finalizes a mutating-transition failure: the mount is in an unknown
// state, so the drive is declared disabled rather than guessing.
func (c *Controller) fail(op string, err error) error {
	disabled := false
	if _, uerr := c.store.Update(ConfigUpdate{Enabled: &disabled}); uerr != nil {
		log.Error("failed to roll back declared drive config", uerr)
	}
	return errors.Wrap(err, op)
}

func (c *Controller) refreshMountAndTargets(ctx context.Context) {
	if err := c.status.RefreshMountState(ctx); err != nil {
		log.Error("failed to refresh mount state", err)
	}
	if err := c.status.RefreshTargets(ctx); err != nil {
		log.Error("failed to refresh mount targets", err)
	}
}

func (c *Controller) refreshCache(ctx context.Context) {
	if err := c.status.RefreshCacheUsage(ctx); err != nil {
		log.Error("failed to refresh cache usage", err)
	}
	if err := c.status.RefreshCacheBudget(ctx); err != nil {
		log.Error("failed to refresh cache budget", err)
	}
}

func boolTag(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
