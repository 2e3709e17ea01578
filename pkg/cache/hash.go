package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hasher accumulates a SHA-256 over length-prefixed fields.
type hasher struct {
	hash.Hash
}

func newHasher() *hasher {
	return &hasher{Hash: sha256.New()}
}

func (h *hasher) writeString(s string) {
	fmt.Fprintf(h, "%d:%s;", len(s), s)
}

func (h *hasher) sum() string {
	return hex.EncodeToString(h.Sum(nil))
}
