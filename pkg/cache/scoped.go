package cache

// ScopedKeyer wraps a Keyer with a prefix so several datasets can share one
// cache backend without colliding.
//
// Example usage:
//
//	// Keep the karate-club study apart from the food-web study
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "study:karate:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// RecordKey generates a prefixed record key.
func (k *ScopedKeyer) RecordKey(name, artifactHash string, opts RecordKeyOpts) string {
	return k.prefix + k.inner.RecordKey(name, artifactHash, opts)
}
