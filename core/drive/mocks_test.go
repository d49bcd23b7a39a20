package drive

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/CumulusFS/cumulus-daemon/core/mount"
	"github.com/CumulusFS/cumulus-daemon/core/store"
)

// testConfig is a map backed config.Config for tests.
type testConfig struct {
	str map[string]string
	num map[string]int
}

func (c testConfig) GetString(key string, defaultValue interface{}) string {
	if v, ok := c.str[key]; ok {
		return v
	}
	if s, ok := defaultValue.(string); ok {
		return s
	}
	return ""
}

func (c testConfig) GetInt(key string, defaultValue interface{}) int {
	if v, ok := c.num[key]; ok {
		return v
	}
	if n, ok := defaultValue.(int); ok {
		return n
	}
	return 0
}

// memStore is an in-memory store.Store.
type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (s *memStore) Open() error     { return nil }
func (s *memStore) Close() error    { return nil }
func (s *memStore) IsOpen() bool    { return true }
func (s *memStore) Shutdown() error { return nil }

func (s *memStore) Set(key []byte, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[string(key)] = append([]byte{}, value...)
	return nil
}

func (s *memStore) SetString(key string, value string) error {
	return s.Set([]byte(key), []byte(value))
}

func (s *memStore) Get(key []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[string(key)]
	if !ok {
		return nil, store.ErrKeyNotFound
	}
	return append([]byte{}, v...), nil
}

type mockService struct {
	mock.Mock
}

func (m *mockService) QueryMountPresence(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *mockService) QueryMountActive(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *mockService) EnumerateMountTargets(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	var targets []string
	if args.Get(0) != nil {
		targets = args.Get(0).([]string)
	}
	return targets, args.Error(1)
}

func (m *mockService) QueryUsedCacheBytes(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockService) QueryAvailableCacheBudgetBytes(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockService) StartOrRestartMount(ctx context.Context, opts mount.MountOptions) error {
	args := m.Called(ctx, opts)
	return args.Error(0)
}

func (m *mockService) StopMount(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockService) PurgeCache(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockService) ValidateMountPath(ctx context.Context, path string) (bool, error) {
	args := m.Called(ctx, path)
	return args.Bool(0), args.Error(1)
}

type mockConfirmer struct {
	mock.Mock
}

func (m *mockConfirmer) Confirm(ctx context.Context, req ConfirmRequest) (bool, error) {
	args := m.Called(ctx, req)
	return args.Bool(0), args.Error(1)
}

type mockPicker struct {
	mock.Mock
}

func (m *mockPicker) PickTarget(ctx context.Context, available []string) (string, bool, error) {
	args := m.Called(ctx, available)
	return args.String(0), args.Bool(1), args.Error(2)
}

type mockExplorer struct {
	mock.Mock
}

func (m *mockExplorer) Open(path string) error {
	args := m.Called(path)
	return args.Error(0)
}
