package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"factorio/wiki/internal/domain"

	"github.com/gofrs/flock"
	log "github.com/sirupsen/logrus"
)

// ErrCorruptCache is returned when the cache file exists but does not hold a
// valid item list.
var ErrCorruptCache = errors.New("corrupt item cache")

// ErrLocked is returned when another process holds the cache lock.
var ErrLocked = errors.New("item cache is locked by another process")

type ItemStore interface {
	// Load reads the cached catalog. A missing cache reports false with no error.
	Load() (domain.Catalog, bool, error)
	// Save overwrites the cache with catalog.
	Save(catalog domain.Catalog) error
	Exists() bool
	// Lock takes the exclusive build lock and returns its release func.
	Lock() (func(), error)
}

type fileItemStore struct {
	path   string
	lock   *flock.Flock
	logger log.FieldLogger
}

func NewFileItemStore(path string, logger log.FieldLogger) ItemStore {
	return &fileItemStore{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logger,
	}
}

func (s *fileItemStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

func (s *fileItemStore) Load() (domain.Catalog, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read item cache: %w", err)
	}

	var catalog domain.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, false, fmt.Errorf("%w: %s: %v", ErrCorruptCache, s.path, err)
	}
	if catalog == nil {
		return nil, false, fmt.Errorf("%w: %s: expected a JSON array", ErrCorruptCache, s.path)
	}
	for i, item := range catalog {
		if item == nil || item.Name == "" {
			return nil, false, fmt.Errorf("%w: %s: entry %d has no name", ErrCorruptCache, s.path, i)
		}
	}

	s.logger.Debugf("Loaded %d items from %s", len(catalog), s.path)
	return catalog, true, nil
}

func (s *fileItemStore) Save(catalog domain.Catalog) error {
	if catalog == nil {
		catalog = domain.Catalog{}
	}

	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode item cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set cache permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write item cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close item cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace item cache: %w", err)
	}

	s.logger.Infof("💾 Saved %d items to %s", len(catalog), s.path)
	return nil
}

func (s *fileItemStore) Lock() (func(), error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	ok, err := s.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire cache lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}

	return func() {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Warnf("⚠️ Failed to release cache lock: %v", err)
		}
	}, nil
}
