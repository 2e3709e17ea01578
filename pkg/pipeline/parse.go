package pipeline

import (
	"strings"

	"github.com/matzehuels/symlump/pkg/cache"
	"github.com/matzehuels/symlump/pkg/errors"
	"github.com/matzehuels/symlump/pkg/netio"
	"github.com/matzehuels/symlump/pkg/perm"
)

// Source is one network to analyze. Artifacts come either from files
// (GeneratorsPath, StatsPath) or inline (Generators, Stats); inline content
// wins when both are set.
type Source struct {
	Name string `json:"name"`

	GeneratorsPath string `json:"-"`
	StatsPath      string `json:"-"`

	Generators string       `json:"generators,omitempty"`
	Format     netio.Format `json:"format,omitempty"` // inline generators only; default cycle notation
	Stats      string       `json:"stats,omitempty"`
}

// SourceFromNetwork converts a discovered network.
func SourceFromNetwork(nw netio.Network) Source {
	return Source{Name: nw.Name, GeneratorsPath: nw.GeneratorsPath, StatsPath: nw.StatsPath}
}

// Sources converts discovered networks.
func Sources(networks []netio.Network) []Source {
	out := make([]Source, len(networks))
	for i, nw := range networks {
		out[i] = SourceFromNetwork(nw)
	}
	return out
}

func (s Source) inlineStats() bool      { return s.Stats != "" }
func (s Source) inlineGenerators() bool { return s.Generators != "" || s.GeneratorsPath == "" }

// LoadStats reads the network's statistics.
func (s Source) LoadStats() (netio.Stats, error) {
	if s.inlineStats() {
		return netio.ReadStats(strings.NewReader(s.Stats))
	}
	if s.StatsPath == "" {
		return netio.Stats{}, errors.New(errors.ErrCodeFileNotFound, "no statistics for %s", s.Name)
	}
	return netio.ImportStats(s.StatsPath)
}

// LoadGenerators reads the network's generators over n points.
func (s Source) LoadGenerators(n int) (perm.GeneratorSet, error) {
	if s.inlineGenerators() {
		format := s.Format
		if format == "" {
			format = netio.FormatCycles
		}
		return netio.ReadGenerators(strings.NewReader(s.Generators), n, format)
	}
	return netio.ImportGenerators(s.GeneratorsPath, n)
}

// Hash identifies the artifacts' content for the record cache.
func (s Source) Hash() (string, error) {
	var parts []string
	if s.inlineGenerators() {
		parts = append(parts, "gens:"+string(s.Format)+":"+cache.Hash([]byte(s.Generators)))
	} else {
		h, err := cache.HashFiles(s.GeneratorsPath)
		if err != nil {
			return "", err
		}
		parts = append(parts, "gens:"+h)
	}
	if s.inlineStats() {
		parts = append(parts, "stats:"+cache.Hash([]byte(s.Stats)))
	} else if s.StatsPath != "" {
		h, err := cache.HashFiles(s.StatsPath)
		if err != nil {
			return "", err
		}
		parts = append(parts, "stats:"+h)
	}
	return cache.Hash([]byte(strings.Join(parts, "\n"))), nil
}
