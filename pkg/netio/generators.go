package netio

import (
	"bytes"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/symlump/pkg/errors"
	"github.com/matzehuels/symlump/pkg/perm"
)

// Format identifies a generator file format.
type Format string

const (
	FormatCycles    Format = "cycles"     // .gen, .txt
	FormatSaucy     Format = "saucy"      // .gaut
	FormatGAPScript Format = "gap-script" // .gap
)

// generatorExts lists generator extensions in discovery preference order.
var generatorExts = []struct {
	ext    string
	format Format
}{
	{".gen", FormatCycles},
	{".gaut", FormatSaucy},
	{".gap", FormatGAPScript},
	{".txt", FormatCycles},
}

// GeneratorExtensions lists the generator file extensions in discovery
// preference order.
func GeneratorExtensions() []string {
	exts := make([]string, len(generatorExts))
	for i, e := range generatorExts {
		exts[i] = e.ext
	}
	return exts
}

// FormatFromPath returns the generator format implied by the extension of path.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range generatorExts {
		if e.ext == ext {
			return e.format, nil
		}
	}
	return "", errors.New(errors.ErrCodeUnsupported, "unknown generator format %q", ext)
}

// ReadGenerators parses generators in the given format over n points.
//
// For FormatGAPScript the domain size is read from the script's "N:=" line;
// n may be 0 to accept it, otherwise it must agree.
func ReadGenerators(r io.Reader, n int, format Format) (perm.GeneratorSet, error) {
	switch format {
	case FormatCycles:
		return perm.ParseGenerators(r, n, perm.GAP)
	case FormatSaucy:
		return perm.ParseGenerators(r, n, perm.Saucy)
	case FormatGAPScript:
		return readGAPScript(r, n)
	default:
		return perm.GeneratorSet{}, errors.New(errors.ErrCodeUnsupported, "unknown generator format %q", format)
	}
}

// ImportGenerators reads the generator file at path over n points.
func ImportGenerators(path string, n int) (perm.GeneratorSet, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return perm.GeneratorSet{}, err
	}
	f, err := open(path)
	if err != nil {
		return perm.GeneratorSet{}, err
	}
	defer f.Close()

	gens, err := ReadGenerators(f, n, format)
	if err != nil {
		return perm.GeneratorSet{}, errors.Wrap(errors.GetCode(err), err, "generators %s", path)
	}
	return gens, nil
}

var (
	gapNPattern = regexp.MustCompile(`N\s*:=\s*([^;]+);`)
	gapZPattern = regexp.MustCompile(`(?s)z\s*:=\s*\[(.*?)\]\s*;`)
)

func readGAPScript(r io.Reader, n int) (perm.GeneratorSet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return perm.GeneratorSet{}, errors.Wrap(errors.ErrCodeParse, err, "read GAP script")
	}

	m := gapNPattern.FindSubmatch(data)
	if m == nil {
		return perm.GeneratorSet{}, errors.New(errors.ErrCodeParse, "GAP script has no N:= assignment")
	}
	scriptN, err := strconv.Atoi(string(bytes.TrimSpace(m[1])))
	if err != nil {
		return perm.GeneratorSet{}, errors.Wrap(errors.ErrCodeParse, err, "N:= value %q", m[1])
	}
	if n > 0 && n != scriptN {
		return perm.GeneratorSet{}, errors.New(errors.ErrCodeParse, "GAP script declares N=%d, statistics report %d vertices", scriptN, n)
	}

	z := gapZPattern.FindSubmatch(data)
	if z == nil {
		return perm.GeneratorSet{}, errors.New(errors.ErrCodeParse, "GAP script has no z:=[...] generator list")
	}
	items := splitTopLevel(string(z[1]))
	return perm.ParseGenerators(strings.NewReader(strings.Join(items, "\n")), scriptN, perm.GAP)
}

// splitTopLevel splits a GAP list body on commas that are not inside a cycle.
func splitTopLevel(s string) []string {
	var items []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				items = append(items, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if last := strings.TrimSpace(s[start:]); last != "" {
		items = append(items, last)
	}
	return items
}
