package storage

import (
	"encoding/binary"

	"github.com/hashicorp/go-hclog"
)

// prefix

var (
	// STATE is the prefix for the vault state record
	STATE = []byte("s")

	// MESSAGE is the prefix for sequenced message records
	MESSAGE = []byte("m")

	// EVENT is the prefix for event log records
	EVENT = []byte("e")

	// META is the prefix for bookkeeping counters
	META = []byte("o")
)

// sub-prefix

var (
	EMPTY = []byte("empty")
	COUNT = []byte("count")
)

// KV is a key value storage interface
type KV interface {
	Close() error
	Set(p []byte, v []byte) error
	Get(p []byte) ([]byte, bool, error)

	// Batch starts a key value write batch
	Batch() KVBatch
}

// KVBatch is a set of key value writes applied atomically
type KVBatch interface {
	Set(p []byte, v []byte)
	Write() error
}

// KeyValueStorage is a generic storage for kv databases
type KeyValueStorage struct {
	logger hclog.Logger
	db     KV
}

// NewKeyValueStorage creates a vault storage on top of a kv database
func NewKeyValueStorage(logger hclog.Logger, db KV) Storage {
	return &KeyValueStorage{logger: logger, db: db}
}

func encodeUint(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b[:], n)

	return b[:]
}

func decodeUint(b []byte) uint64 {
	return binary.BigEndian.Uint64(b[:])
}

// ReadState returns the latest vault state record
func (s *KeyValueStorage) ReadState() ([]byte, bool, error) {
	return s.get(STATE, EMPTY)
}

// ReadMessage returns the sequenced message record with the given ordinal
func (s *KeyValueStorage) ReadMessage(ordinal uint64) ([]byte, bool, error) {
	return s.get(MESSAGE, encodeUint(ordinal))
}

// ReadEvent returns the event log record with the given index
func (s *KeyValueStorage) ReadEvent(index uint64) ([]byte, bool, error) {
	return s.get(EVENT, encodeUint(index))
}

// ReadEventCount returns the number of records in the event log
func (s *KeyValueStorage) ReadEventCount() (uint64, error) {
	data, ok, err := s.get(META, COUNT)
	if err != nil {
		return 0, err
	}

	if !ok || len(data) != 8 {
		return 0, nil
	}

	return decodeUint(data), nil
}

// NewBatch starts a write batch that is committed atomically
func (s *KeyValueStorage) NewBatch() Batch {
	return &keyValueBatch{batch: s.db.Batch()}
}

// Close closes the connection with the db
func (s *KeyValueStorage) Close() error {
	return s.db.Close()
}

// Prefix, Key
func (s *KeyValueStorage) get(prefix []byte, key []byte) ([]byte, bool, error) {
	fullKey := append(append([]byte{}, prefix...), key...)

	return s.db.Get(fullKey)
}

// keyValueBatch maps the vault records onto a kv write batch
type keyValueBatch struct {
	batch KVBatch
}

func (b *keyValueBatch) WriteState(data []byte) {
	b.set(STATE, EMPTY, data)
}

func (b *keyValueBatch) WriteMessage(ordinal uint64, record []byte) {
	b.set(MESSAGE, encodeUint(ordinal), record)
}

func (b *keyValueBatch) WriteEvent(index uint64, record []byte) {
	b.set(EVENT, encodeUint(index), record)
}

func (b *keyValueBatch) WriteEventCount(count uint64) {
	b.set(META, COUNT, encodeUint(count))
}

func (b *keyValueBatch) Write() error {
	return b.batch.Write()
}

func (b *keyValueBatch) set(prefix []byte, key []byte, value []byte) {
	fullKey := append(append([]byte{}, prefix...), key...)
	b.batch.Set(fullKey, value)
}
