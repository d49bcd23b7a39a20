//+build !windows

package drive

import (
	"context"
	"runtime"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"

	"github.com/CumulusFS/cumulus-daemon/config"
)

// On these platforms the drive mounts to an arbitrary filesystem path.
const driveLetterPlatform = false

func defaultMountPoint(cfg config.Config) string {
	mountPath := cfg.GetString(config.CumulusMountPoint, "~/"+DefaultDriveName)
	if home, err := homedir.Dir(); err == nil {
		mountPath = strings.TrimRight(
			strings.Replace(mountPath, "~", home, 1),
			"/",
		)
	}
	return mountPath
}

// validateMountPoint asks the native helper whether the path is usable.
func (c *Controller) validateMountPoint(ctx context.Context, target string) error {
	usable, err := c.svc.ValidateMountPath(ctx, target)
	if err != nil {
		return errors.Wrap(err, "mount point validation failed")
	}
	if !usable {
		return errors.Wrap(ErrInvalidMountPoint, target)
	}
	return nil
}

func explorerCommand() string {
	if runtime.GOOS == "darwin" {
		return "open"
	}
	return "xdg-open"
}
