package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type PlaceholderStorage func(t *testing.T) (Storage, func())

// TestStorage tests a set of tests on a storage
func TestStorage(t *testing.T, m PlaceholderStorage) {
	t.Helper()

	t.Run("testState", func(t *testing.T) {
		testState(t, m)
	})
	t.Run("testMessages", func(t *testing.T) {
		testMessages(t, m)
	})
	t.Run("testEventLog", func(t *testing.T) {
		testEventLog(t, m)
	})
	t.Run("testBatchIsAtomicUnit", func(t *testing.T) {
		testBatchIsAtomicUnit(t, m)
	})
}

func testState(t *testing.T, m PlaceholderStorage) {
	t.Helper()

	s, closeFn := m(t)
	defer closeFn()

	// no state record on a fresh storage
	_, ok, err := s.ReadState()
	require.NoError(t, err)
	assert.False(t, ok)

	batch := s.NewBatch()
	batch.WriteState([]byte("state record v1"))
	require.NoError(t, batch.Write())

	data, ok, err := s.ReadState()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("state record v1"), data)

	// overwrite replaces the record
	batch = s.NewBatch()
	batch.WriteState([]byte("state record v2"))
	require.NoError(t, batch.Write())

	data, ok, err = s.ReadState()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("state record v2"), data)
}

func testMessages(t *testing.T, m PlaceholderStorage) {
	t.Helper()

	s, closeFn := m(t)
	defer closeFn()

	_, ok, err := s.ReadMessage(0)
	require.NoError(t, err)
	assert.False(t, ok)

	records := [][]byte{
		[]byte("message zero"),
		[]byte("message one"),
		[]byte("message two"),
	}

	for i, record := range records {
		batch := s.NewBatch()
		batch.WriteMessage(uint64(i), record)
		require.NoError(t, batch.Write())
	}

	for i, expected := range records {
		data, ok, err := s.ReadMessage(uint64(i))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, expected, data)
	}

	_, ok, err = s.ReadMessage(uint64(len(records)))
	require.NoError(t, err)
	assert.False(t, ok)
}

func testEventLog(t *testing.T, m PlaceholderStorage) {
	t.Helper()

	s, closeFn := m(t)
	defer closeFn()

	count, err := s.ReadEventCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	for i := 0; i < 3; i++ {
		batch := s.NewBatch()
		batch.WriteEvent(uint64(i), []byte{byte(i)})
		batch.WriteEventCount(uint64(i + 1))
		require.NoError(t, batch.Write())
	}

	count, err = s.ReadEventCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)

	for i := 0; i < 3; i++ {
		data, ok, err := s.ReadEvent(uint64(i))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []byte{byte(i)}, data)
	}
}

func testBatchIsAtomicUnit(t *testing.T, m PlaceholderStorage) {
	t.Helper()

	s, closeFn := m(t)
	defer closeFn()

	// nothing is visible before the batch is written
	batch := s.NewBatch()
	batch.WriteState([]byte("pending"))
	batch.WriteMessage(7, []byte("pending message"))
	batch.WriteEventCount(1)

	_, ok, err := s.ReadState()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, batch.Write())

	// all writes land together
	data, ok, err := s.ReadState()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("pending"), data)

	data, ok, err = s.ReadMessage(7)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("pending message"), data)

	count, err := s.ReadEventCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}
