package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// SourceKeyPrefix namespaces record-set entries.
const SourceKeyPrefix = "source:"

// Hash computes a SHA-256 hash of the input data as 64 hex characters.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// SourceKey returns the cache key for records fetched from dsn.
// The DSN is hashed so passwords never appear in keys.
func SourceKey(dsn string) string {
	return SourceKeyPrefix + Hash([]byte(dsn))
}
