package storage

import (
	"github.com/hashicorp/go-hclog"
)

// Storage is the durable vault state storage
type Storage interface {
	// ReadState returns the latest vault state record
	ReadState() ([]byte, bool, error)

	// ReadMessage returns the sequenced message record with the given ordinal
	ReadMessage(ordinal uint64) ([]byte, bool, error)

	// ReadEvent returns the event log record with the given index
	ReadEvent(index uint64) ([]byte, bool, error)

	// ReadEventCount returns the number of records in the event log
	ReadEventCount() (uint64, error)

	// NewBatch starts a write batch that is committed atomically
	NewBatch() Batch

	// Close closes the underlying database
	Close() error
}

// Batch accumulates state writes that become durable together
type Batch interface {
	WriteState(data []byte)
	WriteMessage(ordinal uint64, record []byte)
	WriteEvent(index uint64, record []byte)
	WriteEventCount(count uint64)

	// Write flushes the accumulated data to disk
	Write() error
}

// Factory is a factory method to create a vault storage
type Factory func(config map[string]interface{}, logger hclog.Logger) (Storage, error)
