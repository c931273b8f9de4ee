package server

import (
	"github.com/0xPolygon/edge-vault/secrets"
	"github.com/0xPolygon/edge-vault/secrets/awsssm"
	"github.com/0xPolygon/edge-vault/secrets/gcpssm"
	"github.com/0xPolygon/edge-vault/secrets/hashicorpvault"
	"github.com/0xPolygon/edge-vault/secrets/local"
	"github.com/0xPolygon/edge-vault/vault/storage"
	"github.com/0xPolygon/edge-vault/vault/storage/boltdb"
	"github.com/0xPolygon/edge-vault/vault/storage/leveldb"
	"github.com/0xPolygon/edge-vault/vault/storage/memory"
)

type StorageType string

const (
	LevelDBStorage StorageType = "leveldb"
	BoltDBStorage  StorageType = "boltdb"
	MemoryStorage  StorageType = "memory"
)

// storageBackends defines the storage factories the vault state can be
// persisted with
var storageBackends = map[StorageType]storage.Factory{
	LevelDBStorage: leveldb.Factory,
	BoltDBStorage:  boltdb.Factory,
	MemoryStorage:  memory.Factory,
}

// secretsManagerBackends defines the SecretManager factories for different
// secret management solutions
var secretsManagerBackends = map[secrets.SecretsManagerType]secrets.SecretsManagerFactory{
	secrets.Local:          local.SecretsManagerFactory,
	secrets.HashicorpVault: hashicorpvault.SecretsManagerFactory,
	secrets.AWSSSM:         awsssm.SecretsManagerFactory,
	secrets.GCPSSM:         gcpssm.SecretsManagerFactory,
}

func StorageSupported(value string) bool {
	_, ok := storageBackends[StorageType(value)]

	return ok
}
