package group

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/matzehuels/symlump/pkg/perm"
)

// limited serialises access to an oracle through a weighted semaphore.
type limited struct {
	oracle Oracle
	sem    *semaphore.Weighted
}

// Limit returns an Oracle that allows at most n concurrent calls to o.
// Waiting for a slot counts against the caller's deadline, so a queued
// network times out the same way a slow one does. n <= 0 means 1.
func Limit(o Oracle, n int64) Oracle {
	if n <= 0 {
		n = 1
	}
	return &limited{oracle: o, sem: semaphore.NewWeighted(n)}
}

// Name returns the name of the wrapped oracle.
func (l *limited) Name() string { return Name(l.oracle) }

// Analyze implements Oracle.
func (l *limited) Analyze(ctx context.Context, gens perm.GeneratorSet) (*Group, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer l.sem.Release(1)
	return l.oracle.Analyze(ctx, gens)
}
