package app

import (
	"context"

	"github.com/CumulusFS/cumulus-daemon/core/drive"
)

// watchRefreshSignals is a no-op on windows; device-arrival notifications
// reach the daemon through the control API's refresh endpoint instead.
func watchRefreshSignals(ctx context.Context, notifier *drive.RefreshNotifier) {
}
