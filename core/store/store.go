package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	badger "github.com/dgraph-io/badger/v2"
	homedir "github.com/mitchellh/go-homedir"
)

const DefaultRootDir = "~/.cumulus"
const badgerDirName = "db"

// ErrKeyNotFound is returned by Get when the key has never been set.
var ErrKeyNotFound = errors.New("store: key not found")

// ErrNotOpen is returned when the store is used before Open or after Close.
var ErrNotOpen = errors.New("store: not open")

// Store is the key-value persistence boundary used by the rest of the
// daemon. Backed by badger; mocked in tests.
type Store interface {
	Open() error
	Close() error
	IsOpen() bool
	Set(key []byte, value []byte) error
	SetString(key string, value string) error
	Get(key []byte) ([]byte, error)
	// Shutdown satisfies the app component contract; same as Close.
	Shutdown() error
}

type badgerStore struct {
	rootDir string
	db      *badger.DB
	mu      sync.Mutex
	isOpen  bool
}

type Option func(*badgerStore)

// WithPath overrides the default root directory. A ~ prefix is expanded to
// the user home directory.
func WithPath(path string) Option {
	return func(s *badgerStore) {
		if path != "" {
			s.rootDir = path
		}
	}
}

func New(opts ...Option) Store {
	s := &badgerStore{
		rootDir: DefaultRootDir,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *badgerStore) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isOpen {
		return nil
	}

	rootDir := s.rootDir
	if home, err := homedir.Dir(); err == nil {
		rootDir = strings.Replace(rootDir, "~", home, 1)
	}
	dbDir := filepath.Join(rootDir, badgerDirName)

	if err := os.MkdirAll(dbDir, os.ModePerm); err != nil {
		return err
	}

	db, err := badger.Open(badger.DefaultOptions(dbDir))
	if err != nil {
		return err
	}

	s.db = db
	s.isOpen = true
	return nil
}

func (s *badgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isOpen {
		return nil
	}
	s.isOpen = false
	return s.db.Close()
}

func (s *badgerStore) Shutdown() error {
	return s.Close()
}

func (s *badgerStore) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isOpen
}

// Set stores a key/value pair in the db.
func (s *badgerStore) Set(key []byte, value []byte) error {
	if !s.IsOpen() {
		return ErrNotOpen
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(key, value))
	})
}

func (s *badgerStore) SetString(key string, value string) error {
	return s.Set([]byte(key), []byte(value))
}

// Get retrieves the stored value for key. Returns ErrKeyNotFound if the key
// was never set.
func (s *badgerStore) Get(key []byte) ([]byte, error) {
	if !s.IsOpen() {
		return nil, ErrNotOpen
	}

	var valCopy []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			valCopy = append([]byte{}, val...)
			return nil
		})
	})

	if err == badger.ErrKeyNotFound {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}

	return valCopy, nil
}
