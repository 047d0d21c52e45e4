package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Key returns the cache key for a computation named prefix with the given
// parameters, as prefix:sha256(json(parts)). Parts must encode every input
// that changes the result; a differential histogram is keyed by its sample
// count, worker count, delta, key and seed, since the per-worker generator
// streams depend on all of them.
func Key(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}

// Hash returns the hex SHA-256 digest of data. [FileCache] uses its first
// two characters as the entry's subdirectory.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
