package record

import (
	"context"
	"sort"
	"sync"

	"github.com/matzehuels/symlump/pkg/errors"
)

// Store persists records by graph name.
//
// Put must be safe for concurrent use with distinct graph names and must
// replace any earlier record of the same name. Failures are STORAGE_ERROR.
type Store interface {
	Put(ctx context.Context, r *Record) error

	// Get returns the record for name, or a FILE_NOT_FOUND error.
	Get(ctx context.Context, name string) (*Record, error)

	Close() error
}

func notFound(name string) error {
	return errors.New(errors.ErrCodeFileNotFound, "no record for %q", name)
}

// MemoryStore keeps records in a map.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

func (s *MemoryStore) Put(_ context.Context, r *Record) error {
	cp := *r
	s.mu.Lock()
	s.records[r.GraphName] = &cp
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, name string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[name]
	if !ok {
		return nil, notFound(name)
	}
	cp := *r
	return &cp, nil
}

// List returns all records sorted by graph name.
func (s *MemoryStore) List() []*Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Record, 0, len(s.records))
	for _, r := range s.records {
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GraphName < out[j].GraphName })
	return out
}

func (s *MemoryStore) Close() error { return nil }

type multi []Store

// Multi returns a Store that writes to every store in order and reads from
// the first. Close closes all of them.
func Multi(stores ...Store) Store {
	return multi(stores)
}

func (m multi) Put(ctx context.Context, r *Record) error {
	for _, s := range m {
		if err := s.Put(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (m multi) Get(ctx context.Context, name string) (*Record, error) {
	if len(m) == 0 {
		return nil, notFound(name)
	}
	return m[0].Get(ctx, name)
}

func (m multi) Close() error {
	var first error
	for _, s := range m {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
