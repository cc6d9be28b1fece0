package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/models"
)

type badgerCache struct {
	db  *badger.DB
	ttl time.Duration
}

// New opens (or creates) a badger store under dir.
func New(dir string, ttl time.Duration) (Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	return open(opts, ttl)
}

// NewInMemory keeps entries in memory only.
func NewInMemory(ttl time.Duration) (Cache, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts, ttl)
}

func open(opts badger.Options, ttl time.Duration) (Cache, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &badgerCache{db: db, ttl: ttl}, nil
}

func (c *badgerCache) Get(key string) (*models.Transcript, bool, error) {
	var t models.Transcript
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &t)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return &t, true, nil
}

func (c *badgerCache) Put(key string, t *models.Transcript) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}

	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), data)
		if c.ttl > 0 {
			entry = entry.WithTTL(c.ttl)
		}
		return txn.SetEntry(entry)
	})
}

func (c *badgerCache) Close() error {
	return c.db.Close()
}
