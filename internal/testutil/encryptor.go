package testutil

import (
	"biome/internal/biome"
	"biome/internal/encryption"
)

// NewTestEncryptor creates a deterministic encryptor for testing.
func NewTestEncryptor() biome.Encryptor {
	return encryption.NewTestEncryptor()
}
