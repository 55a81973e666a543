// Package cache stores rendered diagrams so that replaying an unchanged
// circuit does not pay for another Graphviz run.
//
// Entries are keyed by [ArtifactKey], a hash of the output format, the render
// options and the DOT source. Two scopes that produce the same DOT share an
// entry regardless of how they were built.
//
//	c, _ := cache.NewFileCache(dir)
//	key := cache.ArtifactKey("svg", dot, 0)
//	if data, ok, _ := c.Get(ctx, key); ok {
//		return data
//	}
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the stored value and whether it was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ArtifactKey returns the key of a rendered diagram.
func ArtifactKey(format, dot string, scale float64) string {
	return hashKey("artifact", format, scale, Hash([]byte(dot)))
}

func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
