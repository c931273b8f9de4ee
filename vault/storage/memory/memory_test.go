package memory

import (
	"testing"

	"github.com/hashicorp/go-hclog"

	"github.com/0xPolygon/edge-vault/vault/storage"
)

func newStorage(t *testing.T) (storage.Storage, func()) {
	t.Helper()

	s, err := NewMemoryStorage(hclog.NewNullLogger())
	if err != nil {
		t.Fatal(err)
	}

	return s, func() {}
}

func TestStorage(t *testing.T) {
	storage.TestStorage(t, newStorage)
}
