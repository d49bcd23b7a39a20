package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-collections/collections/stack"
	"golang.org/x/sync/errgroup"

	"github.com/CumulusFS/cumulus-daemon/api"
	"github.com/CumulusFS/cumulus-daemon/config"
	"github.com/CumulusFS/cumulus-daemon/core"
	"github.com/CumulusFS/cumulus-daemon/core/drive"
	"github.com/CumulusFS/cumulus-daemon/core/env"
	"github.com/CumulusFS/cumulus-daemon/core/mount"
	"github.com/CumulusFS/cumulus-daemon/core/store"
	"github.com/CumulusFS/cumulus-daemon/log"
)

// App wires and manages the daemon components. Components registered with
// Run/RunAsync are shut down in reverse start order.
type App struct {
	eg             *errgroup.Group
	components     *stack.Stack
	cfg            config.Config
	env            env.CumulusEnv
	isShuttingDown bool
}

type componentMap struct {
	name      string
	component core.Component
}

func New(cfg config.Config, env env.CumulusEnv) *App {
	return &App{
		components:     stack.New(),
		cfg:            cfg,
		env:            env,
		isShuttingDown: false,
	}
}

// Start is the entry point for the daemon. It blocks until interrupted or a
// component fails.
func (a *App) Start(ctx context.Context) error {
	a.eg, ctx = errgroup.WithContext(ctx)

	// setup to detect interruption
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	// declared-state persistence
	appStore := store.New(
		store.WithPath(a.cfg.GetString(config.CumulusStorePath, "")),
	)
	if err := appStore.Open(); err != nil {
		return err
	}
	a.Run("Store", appStore)

	// boundary to the out-of-process mount helper
	nativeService := mount.NewRestService(
		a.cfg.GetString(config.CumulusNativeServiceURL, ""),
	)

	configStore := drive.NewConfigStore(appStore, a.cfg)
	statusCache := drive.NewStatusCache(nativeService, configStore)

	driveController := drive.NewController(
		a.cfg,
		nativeService,
		configStore,
		statusCache,
		drive.NewExplorer(),
	)

	// external refresh signals (device arrival) feed the controller via
	// the notifier; the controller never blocks the publisher
	notifier := drive.NewRefreshNotifier()
	watchRefreshSignals(ctx, notifier)
	a.eg.Go(func() error {
		return driveController.Listen(ctx, notifier)
	})

	// take an initial snapshot so the first status read is not blind
	if err := driveController.RefreshStatus(ctx); err != nil {
		log.Error("initial drive status refresh failed", err)
	}

	// reconnect the drive if it was enabled before the last shutdown
	if driveController.ShouldMount() {
		log.Info("reconnecting drive from persisted config")
		if err := driveController.Toggle(ctx, true, drive.AutoConfirm); err != nil {
			log.Error("failed to reconnect drive", err)
		}
	}
	a.Run("DriveController", driveController)

	// control API
	srv := api.New(
		a.cfg,
		driveController,
		api.WithAddr(a.cfg.GetString(config.CumulusServerAddr, "")),
	)
	a.RunAsync("ControlAPI", srv, func() error {
		return srv.Start(ctx)
	})

	log.Info("Daemon ready")

	// wait for interruption or done signal
	select {
	case <-interrupt:
		log.Debug("Got interrupt signal")
	case <-ctx.Done():
		log.Debug("Got context done signal")
	}

	notifier.Close()
	return a.Shutdown()
}

// Run registers this component to be cleaned up on Shutdown
func (a *App) Run(name string, component core.Component) {
	log.Debug("Starting Component", "name:"+name)
	a.components.Push(&componentMap{
		name:      name,
		component: component,
	})
}

// RunAsync performs the same function as Run() but also accepts a function
// to initialize the component async. Blocks until the component is ready.
func (a *App) RunAsync(name string, component core.AsyncComponent, fn func() error) {
	log.Debug("Starting Async Component", "name:"+name)
	if a.eg == nil {
		log.Warn("App.RunAsync() should be called after App.Start()")
		return
	}

	a.eg.Go(func() error {
		return fn()
	})

	<-component.WaitForReady()
	a.components.Push(&componentMap{
		name:      name,
		component: component,
	})
}

// Shutdown performs a graceful shutdown of all components added through
// Run() or RunAsync().
func (a *App) Shutdown() error {
	log.Info("Daemon shutdown started")
	a.isShuttingDown = true

	for a.components.Len() > 0 {
		m, ok := a.components.Pop().(*componentMap)
		if ok {
			log.Debug("Shutting down Component", fmt.Sprintf("name:%s", m.name))
			if err := m.component.Shutdown(); err != nil {
				log.Error(fmt.Sprintf("Error shutting down %s", m.name), err)
			}
		}
	}

	err := a.eg.Wait()
	log.Info("Shutdown complete")
	return err
}
