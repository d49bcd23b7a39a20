package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/CumulusFS/cumulus-daemon/config"
	"github.com/CumulusFS/cumulus-daemon/core/drive"
	"github.com/CumulusFS/cumulus-daemon/log"
)

const DefaultAddr = ":9576"

type serverOptions struct {
	addr string
}

var defaultServerOptions = serverOptions{
	addr: DefaultAddr,
}

type ServerOption func(o *serverOptions)

// WithAddr sets the listen address for the control API.
func WithAddr(addr string) ServerOption {
	return func(o *serverOptions) {
		if addr != "" {
			o.addr = addr
		}
	}
}

// Server is the HTTP control surface over the drive controller. It is the
// presentation layer's only way to trigger transitions.
type Server struct {
	opts    *serverOptions
	cfg     config.Config
	ctrl    *drive.Controller
	router  *gin.Engine
	srv     *http.Server
	readyCh chan bool
}

func New(cfg config.Config, ctrl *drive.Controller, opts ...ServerOption) *Server {
	o := defaultServerOptions
	for _, opt := range opts {
		opt(&o)
	}

	s := &Server{
		opts:    &o,
		cfg:     cfg,
		ctrl:    ctrl,
		readyCh: make(chan bool, 1),
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", s.health)

	v1 := router.Group("/v1")
	{
		v1.GET("/drive", s.getDrive)
		v1.GET("/drive/cache/steps", s.getCacheSteps)
		v1.POST("/drive/toggle", s.toggleDrive)
		v1.POST("/drive/mountpoint", s.setMountPoint)
		v1.POST("/drive/cachesize", s.setCacheSize)
		v1.POST("/drive/cache/purge", s.purgeCache)
		v1.POST("/drive/browse", s.browseDrive)
		v1.POST("/drive/refresh", s.refreshDrive)
	}

	s.router = router
	return s
}

// Start serves the control API. Blocks until the server stops.
func (s *Server) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:    s.opts.addr,
		Handler: s.router,
	}

	s.readyCh <- true
	log.Info("control api started", "addr:"+s.opts.addr)

	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) WaitForReady() chan bool {
	return s.readyCh
}

func (s *Server) Shutdown() error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
