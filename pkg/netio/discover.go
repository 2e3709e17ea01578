package netio

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/matzehuels/symlump/pkg/errors"
)

// StatsExt is the extension of statistics logs.
const StatsExt = ".log"

// Network locates the artifacts of one network.
type Network struct {
	Name           string // file stem, used as graph_name
	GeneratorsPath string
	StatsPath      string // may not exist; reading it reports FILE_NOT_FOUND
}

// NewNetwork locates the artifacts for a generator file. The statistics log
// is the file with the same stem and a .log extension in statsDir, or next
// to the generator file when statsDir is empty.
func NewNetwork(generatorsPath, statsDir string) Network {
	dir, base := filepath.Split(generatorsPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if statsDir == "" {
		statsDir = dir
	}
	return Network{
		Name:           name,
		GeneratorsPath: generatorsPath,
		StatsPath:      filepath.Join(statsDir, name+StatsExt),
	}
}

// Discover lists the networks in dir, one per stem that has a generator
// file, sorted by name. When a stem has generator files in several formats,
// the first of .gen, .gaut, .gap, .txt wins. Statistics logs are looked up in
// statsDir, or in dir when statsDir is empty.
func Discover(dir, statsDir string) ([]Network, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "input directory %s", dir)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read input directory %s", dir)
	}

	files := make(map[string]bool)
	for _, e := range entries {
		if e.Type().IsRegular() {
			files[e.Name()] = true
		}
	}

	var networks []Network
	claimed := make(map[string]bool)
	for _, ge := range generatorExts {
		for name := range files {
			if !strings.EqualFold(filepath.Ext(name), ge.ext) {
				continue
			}
			stem := strings.TrimSuffix(name, filepath.Ext(name))
			if claimed[stem] {
				continue
			}
			claimed[stem] = true
			networks = append(networks, NewNetwork(filepath.Join(dir, name), statsDir))
		}
	}

	sort.Slice(networks, func(i, j int) bool { return networks[i].Name < networks[j].Name })
	return networks, nil
}
