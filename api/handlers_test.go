package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CumulusFS/cumulus-daemon/config"
	"github.com/CumulusFS/cumulus-daemon/core/drive"
	"github.com/CumulusFS/cumulus-daemon/core/mount"
	"github.com/CumulusFS/cumulus-daemon/core/store"
)

// idleService answers every native-helper query with the drive down and
// accepts every mutation.
type idleService struct{}

func (idleService) QueryMountPresence(ctx context.Context) (bool, error) { return false, nil }

func (idleService) QueryMountActive(ctx context.Context) (bool, error) { return false, nil }

func (idleService) EnumerateMountTargets(ctx context.Context) ([]string, error) { return nil, nil }

func (idleService) QueryUsedCacheBytes(ctx context.Context) (int64, error) { return 0, nil }

func (idleService) QueryAvailableCacheBudgetBytes(ctx context.Context) (int64, error) {
	return 0, nil
}

func (idleService) StartOrRestartMount(ctx context.Context, opts mount.MountOptions) error {
	return nil
}

func (idleService) StopMount(ctx context.Context) error { return nil }

func (idleService) PurgeCache(ctx context.Context) error { return nil }

func (idleService) ValidateMountPath(ctx context.Context, path string) (bool, error) {
	return true, nil
}

func newTestServer(t *testing.T) (*Server, *drive.ConfigStore) {
	st := store.New(store.WithPath(t.TempDir()))
	if err := st.Open(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	cfg := config.NewMap(&config.Flags{})
	cs := drive.NewConfigStore(st, cfg)
	sc := drive.NewStatusCache(idleService{}, cs)
	ctrl := drive.NewController(cfg, idleService{}, cs, sc, drive.NewExplorer())

	return New(cfg, ctrl), cs
}

func postJSON(srv *Server, path string, body interface{}) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	return w
}

func TestToggleDrive_DeclinedConfirmationReturnsNoContent(t *testing.T) {
	srv, cs := newTestServer(t)

	enabled := true
	_, err := cs.Update(drive.ConfigUpdate{Enabled: &enabled})
	assert.NoError(t, err)

	w := postJSON(srv, "/v1/drive/toggle", map[string]interface{}{
		"enabled":   false,
		"confirmed": false,
	})

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	dc, err := cs.Get()
	assert.NoError(t, err)
	assert.True(t, dc.Enabled, "a declined disable must not change the declared config")
}

func TestToggleDrive_ConfirmedDisableReturnsDriveState(t *testing.T) {
	srv, cs := newTestServer(t)

	enabled := true
	_, err := cs.Update(drive.ConfigUpdate{Enabled: &enabled})
	assert.NoError(t, err)

	w := postJSON(srv, "/v1/drive/toggle", map[string]interface{}{
		"enabled":   false,
		"confirmed": true,
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp driveResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Enabled)
}

func TestPurgeCache_DeclinedConfirmationReturnsNoContent(t *testing.T) {
	srv, cs := newTestServer(t)

	enabled := true
	_, err := cs.Update(drive.ConfigUpdate{Enabled: &enabled})
	assert.NoError(t, err)

	w := postJSON(srv, "/v1/drive/cache/purge", map[string]interface{}{
		"confirmed": false,
	})

	assert.Equal(t, http.StatusNoContent, w.Code)

	dc, err := cs.Get()
	assert.NoError(t, err)
	assert.True(t, dc.Enabled)
}
