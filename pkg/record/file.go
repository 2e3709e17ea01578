package record

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/matzehuels/symlump/pkg/errors"
)

// Output layout under a FileStore directory.
const (
	RowDir     = "rowdat"
	ColoursDir = "orbit_colours"
	SummaryCSV = "lumps_out.csv"
)

// FileStore writes records as JSON files under an output directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the output directory layout under dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := errors.ValidatePath(dir); err != nil {
		return nil, err
	}
	for _, sub := range []string{RowDir, ColoursDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "create %s", sub)
		}
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the output directory.
func (s *FileStore) Dir() string { return s.dir }

// Put writes rowdat/<name>.json and orbit_colours/<name>.txt, replacing any
// earlier files. Each file is written to a temporary name and renamed.
func (s *FileStore) Put(_ context.Context, r *Record) error {
	if err := errors.ValidateGraphName(r.GraphName); err != nil {
		return err
	}
	data, err := Marshal(r)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "encode record %s", r.GraphName)
	}
	if err := writeAtomic(s.rowPath(r.GraphName), data); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write record %s", r.GraphName)
	}
	if err := writeAtomic(s.coloursPath(r.GraphName), []byte(FormatOrbits(r.Orbits))); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write orbit colours %s", r.GraphName)
	}
	return nil
}

// Get reads rowdat/<name>.json.
func (s *FileStore) Get(_ context.Context, name string) (*Record, error) {
	if err := errors.ValidateGraphName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.rowPath(name))
	if os.IsNotExist(err) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "read record %s", name)
	}
	r, err := Unmarshal(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "decode record %s", name)
	}
	return r, nil
}

// List reads every record in rowdat/, sorted by graph name. Files that do
// not decode are skipped.
func (s *FileStore) List(ctx context.Context) ([]*Record, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, RowDir))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list records")
	}
	var out []*Record
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".json")
		if !ok || e.IsDir() {
			continue
		}
		r, err := s.Get(ctx, name)
		if err != nil {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GraphName < out[j].GraphName })
	return out, nil
}

// WriteSummary rewrites lumps_out.csv from every record in the store.
func (s *FileStore) WriteSummary(ctx context.Context) (string, error) {
	records, err := s.List(ctx)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, SummaryCSV)
	var b strings.Builder
	if err := WriteCSV(&b, records); err != nil {
		return "", errors.Wrap(errors.ErrCodeStorage, err, "encode %s", SummaryCSV)
	}
	if err := writeAtomic(path, []byte(b.String())); err != nil {
		return "", errors.Wrap(errors.ErrCodeStorage, err, "write %s", SummaryCSV)
	}
	return path, nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) rowPath(name string) string {
	return filepath.Join(s.dir, RowDir, name+".json")
}

func (s *FileStore) coloursPath(name string) string {
	return filepath.Join(s.dir, ColoursDir, name+".txt")
}

// FormatOrbits writes one orbit per line as 1-indexed, comma-separated
// vertex labels, the same labels the generator files use.
func FormatOrbits(orbits [][]int) string {
	var b strings.Builder
	for _, o := range orbits {
		for i, v := range o {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Itoa(v + 1))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
