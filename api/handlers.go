package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/CumulusFS/cumulus-daemon/config"
	"github.com/CumulusFS/cumulus-daemon/core/drive"
)

// requestConfirmer satisfies the confirmation-dialog boundary with the
// caller's explicit acknowledgement carried in the request body. The dialog
// itself is rendered by whoever is driving this API.
type requestConfirmer bool

func (r requestConfirmer) Confirm(ctx context.Context, req drive.ConfirmRequest) (bool, error) {
	return bool(r), nil
}

// requestPicker satisfies the target-picker boundary with a target already
// chosen by the caller. A cancelled picker never produces a request, so the
// target is always set.
type requestPicker string

func (r requestPicker) PickTarget(ctx context.Context, available []string) (string, bool, error) {
	return string(r), true, nil
}

type driveResponse struct {
	Enabled             bool     `json:"enabled"`
	MountPoint          string   `json:"mountPoint"`
	CacheSizeLimitGib   int      `json:"cacheSizeLimitGib"`
	DriveName           string   `json:"driveName"`
	DriveLetterPlatform bool     `json:"driveLetterPlatform"`
	Mounted             *bool    `json:"mounted"`
	Targets             []string `json:"availableMountTargets"`
	UsedCacheBytes      *int64   `json:"usedCacheBytes"`
	CacheBudgetBytes    *int64   `json:"availableCacheBudgetBytes"`
}

type toggleRequest struct {
	Enabled   bool `json:"enabled"`
	Confirmed bool `json:"confirmed"`
}

type mountPointRequest struct {
	MountPoint string `json:"mountPoint"`
}

type cacheSizeRequest struct {
	SizeGib int `json:"sizeGib"`
}

type purgeRequest struct {
	Confirmed bool `json:"confirmed"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) getDrive(c *gin.Context) {
	span, _ := opentracing.StartSpanFromContext(c.Request.Context(), "GetDrive")
	defer span.Finish()

	s.renderDrive(c)
}

func (s *Server) getCacheSteps(c *gin.Context) {
	span, _ := opentracing.StartSpanFromContext(c.Request.Context(), "GetCacheSteps")
	defer span.Finish()

	budgetBytes, known := s.ctrl.Status().AvailableCacheBudgetBytes()
	budgetGib := 0
	if known {
		budgetGib = int(budgetBytes / (1 << 30))
	}

	c.JSON(http.StatusOK, gin.H{"steps": drive.GenerateCacheSteps(budgetGib)})
}

func (s *Server) toggleDrive(c *gin.Context) {
	span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "ToggleDrive")
	defer span.Finish()

	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.ctrl.Toggle(ctx, req.Enabled, requestConfirmer(req.Confirmed)); err != nil {
		if errors.Cause(err) == drive.ErrConfirmationDeclined {
			c.Status(http.StatusNoContent)
			return
		}
		s.renderError(c, err)
		return
	}

	s.renderDrive(c)
}

func (s *Server) setMountPoint(c *gin.Context) {
	span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "SetMountPoint")
	defer span.Finish()

	var req mountPointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.MountPoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mountPoint is required"})
		return
	}

	if err := s.ctrl.SetMountPoint(ctx, requestPicker(req.MountPoint)); err != nil {
		s.renderError(c, err)
		return
	}

	s.renderDrive(c)
}

func (s *Server) setCacheSize(c *gin.Context) {
	span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "SetCacheSize")
	defer span.Finish()

	var req cacheSizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.ctrl.SetCacheSize(ctx, req.SizeGib); err != nil {
		s.renderError(c, err)
		return
	}

	s.renderDrive(c)
}

func (s *Server) purgeCache(c *gin.Context) {
	span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "PurgeCache")
	defer span.Finish()

	var req purgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.ctrl.PurgeCache(ctx, requestConfirmer(req.Confirmed)); err != nil {
		if errors.Cause(err) == drive.ErrConfirmationDeclined {
			c.Status(http.StatusNoContent)
			return
		}
		s.renderError(c, err)
		return
	}

	s.renderDrive(c)
}

func (s *Server) browseDrive(c *gin.Context) {
	span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "BrowseDrive")
	defer span.Finish()

	if err := s.ctrl.Browse(ctx); err != nil {
		s.renderError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) refreshDrive(c *gin.Context) {
	span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "RefreshDrive")
	defer span.Finish()

	if err := s.ctrl.RefreshStatus(ctx); err != nil {
		s.renderError(c, err)
		return
	}

	s.renderDrive(c)
}

func (s *Server) renderDrive(c *gin.Context) {
	dc, err := s.ctrl.Config().Get()
	if err != nil {
		s.renderError(c, err)
		return
	}

	resp := driveResponse{
		Enabled:             dc.Enabled,
		MountPoint:          dc.MountPoint,
		CacheSizeLimitGib:   dc.CacheSizeLimitGib,
		DriveName:           s.cfg.GetString(config.CumulusDriveName, drive.DefaultDriveName),
		DriveLetterPlatform: s.ctrl.DriveLetterPlatform(),
	}

	status := s.ctrl.Status()
	if mounted, known := status.Mounted(); known {
		resp.Mounted = &mounted
	}
	if targets, known := status.Targets(); known {
		resp.Targets = targets
	}
	if used, known := status.UsedCacheBytes(); known {
		resp.UsedCacheBytes = &used
	}
	if budget, known := status.AvailableCacheBudgetBytes(); known {
		resp.CacheBudgetBytes = &budget
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) renderError(c *gin.Context, err error) {
	switch errors.Cause(err) {
	case drive.ErrInvalidMountPoint, drive.ErrInvalidCacheSize:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
