package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching. The engine uses it for embedding
// reuse only: access-control decisions are computed fresh per request and
// are never stored here.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a stable cache key from an input string.
func Key(input string) string {
	hash := sha256.Sum256([]byte(input))
	return "claimscope:v1:" + hex.EncodeToString(hash[:])
}
