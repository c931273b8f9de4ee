package boltdb

import (
	"fmt"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	bolt "go.etcd.io/bbolt"

	"github.com/0xPolygon/edge-vault/vault/storage"
)

var bucket = []byte{'v'}

// Factory creates a boltdb storage
func Factory(config map[string]interface{}, logger hclog.Logger) (storage.Storage, error) {
	path, ok := config["path"]
	if !ok {
		return nil, fmt.Errorf("path not found")
	}

	pathStr, ok := path.(string)
	if !ok {
		return nil, fmt.Errorf("path is not a string")
	}

	return NewBoltDBStorage(filepath.Join(pathStr, "db"), logger)
}

// NewBoltDBStorage creates the new storage reference with boltdb
func NewBoltDBStorage(path string, logger hclog.Logger) (storage.Storage, error) {
	db, err := bolt.Open(path, 0660, &bolt.Options{})
	if err != nil {
		return nil, err
	}

	// the bucket carrying all vault records must exist before any reads
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)

		return err
	})
	if err != nil {
		return nil, err
	}

	kv := &boltDBKV{db}

	return storage.NewKeyValueStorage(logger.Named("boltdb"), kv), nil
}

// boltDBKV is the boltdb implementation of the kv storage
type boltDBKV struct {
	db *bolt.DB
}

func (b *boltDBKV) Set(p []byte, v []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put(p, v)
	})
}

func (b *boltDBKV) Get(p []byte) ([]byte, bool, error) {
	var (
		data  []byte
		found bool
	)

	err := b.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucket).Get(p); v != nil {
			// v is only valid for the lifetime of the tx, therefore copying
			data = make([]byte, len(v))
			copy(data, v)
			found = true
		}

		return nil
	})

	return data, found, err
}

// Batch starts a boltdb write batch, committed in a single update transaction
func (b *boltDBKV) Batch() storage.KVBatch {
	return &boltDBBatch{db: b.db}
}

func (b *boltDBKV) Close() error {
	return b.db.Close()
}

type boltDBBatch struct {
	db    *bolt.DB
	pairs []kvPair
}

type kvPair struct {
	key   []byte
	value []byte
}

func (b *boltDBBatch) Set(p []byte, v []byte) {
	b.pairs = append(b.pairs, kvPair{key: p, value: v})
}

func (b *boltDBBatch) Write() error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucket)
		for _, pair := range b.pairs {
			if err := bkt.Put(pair.key, pair.value); err != nil {
				return err
			}
		}

		return nil
	})
}
