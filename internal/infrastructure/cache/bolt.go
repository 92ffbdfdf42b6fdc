package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/MarcoRizz95/ComparatorePrezzi-Supermercati/internal/domain"
)

const bucketName = "cache"

// boltEnvelope wraps a stored value with its expiry.
type boltEnvelope struct {
	Value     json.RawMessage `json:"value"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// BoltCache is a bbolt-backed TTL cache. Geocoding results are stable for
// months, so keeping them across restarts saves a slow external round trip on
// every first query of a session.
type BoltCache struct {
	db *bbolt.DB
}

// NewBoltCache opens (or creates) the cache file.
func NewBoltCache(path string) (*BoltCache, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache bucket: %w", err)
	}
	return &BoltCache{db: db}, nil
}

// Get retrieves a value; expired entries are deleted lazily and count as
// misses.
func (c *BoltCache) Get(ctx context.Context, key string) (interface{}, error) {
	var envelope boltEnvelope
	err := c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketName)).Get([]byte(key))
		if data == nil {
			return domain.ErrCacheMiss
		}
		return json.Unmarshal(data, &envelope)
	})
	if err != nil {
		return nil, err
	}

	if time.Now().After(envelope.ExpiresAt) {
		_ = c.Delete(ctx, key)
		return nil, domain.ErrCacheMiss
	}

	var value interface{}
	if err := json.Unmarshal(envelope.Value, &value); err != nil {
		return nil, err
	}
	return value, nil
}

// Set stores a value with the given TTL.
func (c *BoltCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	data, err := json.Marshal(boltEnvelope{Value: raw, ExpiresAt: time.Now().Add(ttl)})
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(key), data)
	})
}

// Delete removes a key.
func (c *BoltCache) Delete(ctx context.Context, key string) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Delete([]byte(key))
	})
}

// Exists reports whether a key is present and unexpired.
func (c *BoltCache) Exists(ctx context.Context, key string) (bool, error) {
	_, err := c.Get(ctx, key)
	if err == domain.ErrCacheMiss {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Close closes the underlying database.
func (c *BoltCache) Close() error {
	return c.db.Close()
}
