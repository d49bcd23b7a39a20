package drive

import (
	"context"

	"github.com/pkg/errors"

	"github.com/CumulusFS/cumulus-daemon/config"
)

// On windows the drive mounts to a letter, not a path.
const driveLetterPlatform = true

func defaultMountPoint(cfg config.Config) string {
	return cfg.GetString(config.CumulusMountPoint, "X:")
}

// validateMountPoint checks the drive letter token shape. Availability is
// the native helper's concern at mount time; no native call is made here.
func (c *Controller) validateMountPoint(ctx context.Context, target string) error {
	if !isDriveLetter(target) {
		return errors.Wrap(ErrInvalidMountPoint, target)
	}
	return nil
}

func isDriveLetter(target string) bool {
	if len(target) == 0 || len(target) > 2 {
		return false
	}
	ch := target[0]
	if !(ch >= 'A' && ch <= 'Z') && !(ch >= 'a' && ch <= 'z') {
		return false
	}
	return len(target) == 1 || target[1] == ':'
}

func explorerCommand() string {
	return "explorer"
}
