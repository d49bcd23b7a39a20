package mount

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// restService talks to the native mount helper over its local JSON API.
type restService struct {
	baseURL string
	client  *http.Client
}

// NewRestService returns a Service backed by the native helper listening at
// baseURL (e.g. http://127.0.0.1:9577).
func NewRestService(baseURL string) Service {
	return &restService{
		baseURL: baseURL,
		client: &http.Client{
			// mount and purge operations can legitimately take a while
			Timeout: 2 * time.Minute,
		},
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type boolResponse struct {
	Value bool `json:"value"`
}

type bytesResponse struct {
	Bytes int64 `json:"bytes"`
}

type targetsResponse struct {
	Targets []string `json:"targets"`
}

type validatePathRequest struct {
	Path string `json:"path"`
}

func (s *restService) do(ctx context.Context, method, path string, reqBody, respBody interface{}) error {
	var body *bytes.Buffer = bytes.NewBuffer(nil)
	if reqBody != nil {
		encoded, err := json.Marshal(reqBody)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "native mount service unreachable")
	}
	defer resp.Body.Close()

	raw, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		// failures carry a human-readable message in the body
		var errResp errorResponse
		if err := json.Unmarshal(raw, &errResp); err == nil && errResp.Error != "" {
			return errors.New(errResp.Error)
		}
		return errors.Errorf("native mount service returned status %d", resp.StatusCode)
	}

	if respBody != nil {
		if err := json.Unmarshal(raw, respBody); err != nil {
			return errors.Wrap(err, "malformed native mount service response")
		}
	}

	return nil
}

func (s *restService) QueryMountPresence(ctx context.Context) (bool, error) {
	var resp boolResponse
	if err := s.do(ctx, http.MethodGet, "/v1/mount/present", nil, &resp); err != nil {
		return false, err
	}
	return resp.Value, nil
}

func (s *restService) QueryMountActive(ctx context.Context) (bool, error) {
	var resp boolResponse
	if err := s.do(ctx, http.MethodGet, "/v1/mount/active", nil, &resp); err != nil {
		return false, err
	}
	return resp.Value, nil
}

func (s *restService) EnumerateMountTargets(ctx context.Context) ([]string, error) {
	var resp targetsResponse
	if err := s.do(ctx, http.MethodGet, "/v1/mount/targets", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Targets, nil
}

func (s *restService) QueryUsedCacheBytes(ctx context.Context) (int64, error) {
	var resp bytesResponse
	if err := s.do(ctx, http.MethodGet, "/v1/cache/used", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Bytes, nil
}

func (s *restService) QueryAvailableCacheBudgetBytes(ctx context.Context) (int64, error) {
	var resp bytesResponse
	if err := s.do(ctx, http.MethodGet, "/v1/cache/budget", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Bytes, nil
}

func (s *restService) StartOrRestartMount(ctx context.Context, opts MountOptions) error {
	return s.do(ctx, http.MethodPost, "/v1/mount/start", opts, nil)
}

func (s *restService) StopMount(ctx context.Context) error {
	return s.do(ctx, http.MethodPost, "/v1/mount/stop", nil, nil)
}

func (s *restService) PurgeCache(ctx context.Context) error {
	return s.do(ctx, http.MethodPost, "/v1/cache/purge", nil, nil)
}

func (s *restService) ValidateMountPath(ctx context.Context, path string) (bool, error) {
	var resp boolResponse
	if err := s.do(ctx, http.MethodPost, "/v1/mount/validate", validatePathRequest{Path: path}, &resp); err != nil {
		return false, err
	}
	return resp.Value, nil
}
