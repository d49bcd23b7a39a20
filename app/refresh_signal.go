//+build !windows

package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/CumulusFS/cumulus-daemon/core/drive"
	"github.com/CumulusFS/cumulus-daemon/log"
)

// watchRefreshSignals forwards SIGUSR1 to the drive refresh notifier.
// Platform glue (udev rules, launchd device-arrival handlers) signals the
// daemon when storage state may have changed behind its back.
func watchRefreshSignals(ctx context.Context, notifier *drive.RefreshNotifier) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGUSR1)

	go func() {
		defer signal.Stop(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ch:
				log.Debug("refresh signal received")
				notifier.Notify()
			}
		}
	}()
}
