package cache

import (
	"io"
	"os"
	"sort"
)

// RecordKeyOpts are the analysis options that change a record.
type RecordKeyOpts struct {
	Alphabet    int    `json:"alphabet"`
	MaxTermBits int    `json:"max_term_bits"`
	NodeLimit   int    `json:"node_limit"`
	Verify      bool   `json:"verify"`
	Oracle      string `json:"oracle"`
}

// Keyer derives cache keys.
type Keyer interface {
	// RecordKey returns the key of the record computed for a network whose
	// artifacts hash to artifactHash.
	RecordKey(name, artifactHash string, opts RecordKeyOpts) string
}

// DefaultKeyer produces keys of the form "record:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// RecordKey implements Keyer.
func (DefaultKeyer) RecordKey(name, artifactHash string, opts RecordKeyOpts) string {
	return hashKey("record", name, artifactHash, opts)
}

// HashFiles hashes the contents of the given files in path order. A missing
// file contributes its path only, so creating it later changes the hash.
func HashFiles(paths ...string) (string, error) {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	h := newHasher()
	for _, p := range sorted {
		h.writeString(p)
		f, err := os.Open(p)
		if os.IsNotExist(err) {
			h.writeString("<missing>")
			continue
		}
		if err != nil {
			return "", err
		}
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", err
		}
	}
	return h.sum(), nil
}
