package memory

import (
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/0xPolygon/edge-vault/helper/hex"
	"github.com/0xPolygon/edge-vault/vault/storage"
)

// Factory creates an in-memory storage. The configuration is ignored,
// nothing is kept across restarts.
func Factory(config map[string]interface{}, logger hclog.Logger) (storage.Storage, error) {
	return NewMemoryStorage(logger)
}

// NewMemoryStorage creates the new storage reference with inmemory
func NewMemoryStorage(logger hclog.Logger) (storage.Storage, error) {
	db := &memoryKV{db: map[string][]byte{}}

	return storage.NewKeyValueStorage(logger, db), nil
}

// memoryKV is an in memory implementation of the kv storage
type memoryKV struct {
	lock sync.RWMutex
	db   map[string][]byte
}

func (m *memoryKV) Set(p []byte, v []byte) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.db[hex.EncodeToHex(p)] = v

	return nil
}

func (m *memoryKV) Get(p []byte) ([]byte, bool, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	v, ok := m.db[hex.EncodeToHex(p)]
	if !ok {
		return nil, false, nil
	}

	return v, true, nil
}

func (m *memoryKV) Batch() storage.KVBatch {
	return &memoryBatch{kv: m}
}

func (m *memoryKV) Close() error {
	return nil
}

type memoryBatch struct {
	kv    *memoryKV
	pairs []kvPair
}

type kvPair struct {
	key   []byte
	value []byte
}

func (b *memoryBatch) Set(p []byte, v []byte) {
	b.pairs = append(b.pairs, kvPair{key: p, value: v})
}

func (b *memoryBatch) Write() error {
	b.kv.lock.Lock()
	defer b.kv.lock.Unlock()

	for _, pair := range b.pairs {
		b.kv.db[hex.EncodeToHex(pair.key)] = pair.value
	}

	return nil
}
