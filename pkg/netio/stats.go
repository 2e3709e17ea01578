package netio

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/matzehuels/symlump/pkg/errors"
)

// Log keys with a typed field in Stats.
const (
	keyVertices       = "vertices"
	keyEdges          = "edges"
	keyTotalSupport   = "total support"
	keyAverageSupport = "average support"
)

// Stats is the typed content of a statistics log.
type Stats struct {
	Vertices int // N, the number of nodes
	Edges    int // M, the number of edges

	// Support statistics of the generators. Nil when the log omits them.
	TotalSupport   *float64
	AverageSupport *float64

	// Extra holds the remaining diagnostics (levels, nodes, generators,
	// bad nodes, cpu time, ...) as raw strings.
	Extra map[string]string
}

// ReadStats parses a statistics log from r.
//
// ReadStats returns a PARSE_ERROR if "vertices" or "edges" is missing or not
// an integer, if vertices is less than 1, or if a support value is not a
// number.
func ReadStats(r io.Reader) (Stats, error) {
	s := Stats{Extra: make(map[string]string)}
	seen := make(map[string]bool)

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		key, value, ok := strings.Cut(sc.Text(), "=")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		seen[key] = true

		var err error
		switch key {
		case keyVertices:
			s.Vertices, err = parseInt(value)
		case keyEdges:
			s.Edges, err = parseInt(value)
		case keyTotalSupport:
			s.TotalSupport, err = parseFloat(value)
		case keyAverageSupport:
			s.AverageSupport, err = parseFloat(value)
		default:
			s.Extra[key] = value
		}
		if err != nil {
			return Stats{}, errors.Wrap(errors.ErrCodeParse, err, "line %d: %s", line, key)
		}
	}
	if err := sc.Err(); err != nil {
		return Stats{}, errors.Wrap(errors.ErrCodeParse, err, "read stats")
	}

	for _, k := range []string{keyVertices, keyEdges} {
		if !seen[k] {
			return Stats{}, errors.New(errors.ErrCodeParse, "missing required key %q", k)
		}
	}
	if s.Vertices < 1 {
		return Stats{}, errors.New(errors.ErrCodeParse, "vertices must be at least 1, got %d", s.Vertices)
	}
	return s, nil
}

// ImportStats reads the statistics log at path.
func ImportStats(path string) (Stats, error) {
	f, err := open(path)
	if err != nil {
		return Stats{}, err
	}
	defer f.Close()

	s, err := ReadStats(f)
	if err != nil {
		return Stats{}, errors.Wrap(errors.GetCode(err), err, "stats %s", path)
	}
	return s, nil
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(s)
}

func parseFloat(s string) (*float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// open opens path, reporting a missing file as FILE_NOT_FOUND.
func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	return f, nil
}
