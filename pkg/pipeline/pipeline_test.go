package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/matzehuels/symlump/pkg/cache"
	"github.com/matzehuels/symlump/pkg/errors"
	"github.com/matzehuels/symlump/pkg/group"
	"github.com/matzehuels/symlump/pkg/netio"
	"github.com/matzehuels/symlump/pkg/perm"
	"github.com/matzehuels/symlump/pkg/record"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

// countingOracle wraps the closure oracle and counts calls.
type countingOracle struct {
	calls atomic.Int32
	inner group.Oracle
}

func (c *countingOracle) Analyze(ctx context.Context, gens perm.GeneratorSet) (*group.Group, error) {
	c.calls.Add(1)
	return c.inner.Analyze(ctx, gens)
}

func newRunner(oracle group.Oracle, store record.Store, c cache.Cache) *Runner {
	return NewRunner(oracle, store, c, nil, quietLogger())
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	require.NoError(t, opts.ValidateAndSetDefaults())
	assert.Equal(t, DefaultWorkers(), opts.Workers)
	assert.Equal(t, DefaultTimeout, opts.Timeout)
	assert.Equal(t, 100_000_000, opts.NodeLimit)
	assert.Equal(t, 2, opts.Alphabet)
	assert.Equal(t, DefaultVerifyMaxNodes, opts.VerifyMaxNodes)

	// Idempotent
	opts.Workers = 3
	require.NoError(t, opts.ValidateAndSetDefaults())
	assert.Equal(t, 3, opts.Workers)
}

func TestOptionsRejectNegative(t *testing.T) {
	for _, opts := range []Options{
		{Workers: -1},
		{Alphabet: -2},
		{Timeout: -time.Second},
	} {
		err := opts.ValidateAndSetDefaults()
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "options %+v: %v", opts, err)
	}
}

func TestAnalyzeFromFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"net.gen": "(1,2)\n",
		"net.log": "vertices = 4\nedges = 5\ntotal support = 2\naverage support = 2\n",
	})
	store := record.NewMemoryStore()
	r := newRunner(group.NewClosure(0), store, nil)

	src := SourceFromNetwork(netio.NewNetwork(filepath.Join(dir, "net.gen"), ""))
	rec, err := r.Analyze(context.Background(), src, Options{RunID: "run-1"})
	require.NoError(t, err)

	assert.Equal(t, "net", rec.GraphName)
	assert.Equal(t, 4, rec.NNodes)
	assert.Equal(t, 5, rec.MEdges)
	assert.Equal(t, "2", rec.AutGrpOrder)
	assert.Equal(t, "12", rec.Rho.String())
	assert.Equal(t, "3", rec.Delta.String())
	assert.Equal(t, [][]int{{0, 1}}, rec.Orbits)
	assert.Equal(t, 2, rec.Classes)
	assert.Equal(t, 1, rec.Generators)
	assert.Equal(t, "closure", rec.Oracle)
	assert.Equal(t, "run-1", rec.RunID)
	require.NotNil(t, rec.TotSupport)
	assert.Equal(t, 2.0, *rec.TotSupport)

	stored, err := store.Get(context.Background(), "net")
	require.NoError(t, err)
	assert.Equal(t, rec.Rho.String(), stored.Rho.String())
}

func TestAnalyzeInlineTrivial(t *testing.T) {
	r := newRunner(group.NewClosure(0), record.NewMemoryStore(), nil)
	rec, err := r.Analyze(context.Background(), Source{
		Name:  "lonely",
		Stats: "vertices = 10\nedges = 100\n",
	}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "1", rec.AutGrpOrder)
	assert.Equal(t, "1024", rec.Rho.String())
	assert.Equal(t, "7", rec.Delta.String())
	assert.Empty(t, rec.Orbits)
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  Source
		code errors.Code
	}{
		{"bad name", Source{Name: "../x", Stats: "vertices = 2\nedges = 1\n"}, errors.ErrCodeInvalidInput},
		{"node limit", Source{Name: "huge", Stats: "vertices = 100000000\nedges = 1\n"}, errors.ErrCodeDegenerateInput},
		{"missing stats", Source{Name: "nostats", Generators: "(1,2)"}, errors.ErrCodeFileNotFound},
		{"bad generators", Source{Name: "bad", Generators: "(1,9)", Stats: "vertices = 4\nedges = 1\n"}, errors.ErrCodeParse},
		{"bad stats", Source{Name: "bad", Generators: "(1,2)", Stats: "edges = 1\n"}, errors.ErrCodeParse},
	}
	r := newRunner(group.NewClosure(0), record.NewMemoryStore(), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Analyze(context.Background(), tt.src, Options{})
			assert.True(t, errors.Is(err, tt.code), "got %v, want %s", err, tt.code)
		})
	}
}

func TestAnalyzeTimeout(t *testing.T) {
	blocking := group.OracleFunc(func(ctx context.Context, _ perm.GeneratorSet) (*group.Group, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	r := newRunner(blocking, record.NewMemoryStore(), nil)

	_, err := r.Analyze(context.Background(), Source{
		Name:       "slow",
		Generators: "(1,2)",
		Stats:      "vertices = 2\nedges = 1\n",
	}, Options{Timeout: 20 * time.Millisecond})
	assert.True(t, errors.Is(err, errors.ErrCodeTimeout), "got %v", err)
	assert.False(t, errors.Fatal(err))
}

func TestAnalyzeVerify(t *testing.T) {
	src := Source{Name: "v", Generators: "(1,2)\n(3,4)", Stats: "vertices = 5\nedges = 4\n"}

	r := newRunner(group.NewClosure(0), record.NewMemoryStore(), nil)
	rec, err := r.Analyze(context.Background(), src, Options{Verify: true})
	require.NoError(t, err)
	assert.True(t, rec.Verified)

	// An oracle that answers the trivial group passes validation but
	// disagrees with brute force.
	liar := group.OracleFunc(func(_ context.Context, gens perm.GeneratorSet) (*group.Group, error) {
		return group.Trivial(gens.N), nil
	})
	r = newRunner(liar, record.NewMemoryStore(), nil)
	_, err = r.Analyze(context.Background(), src, Options{Verify: true})
	assert.True(t, errors.Is(err, errors.ErrCodeConsistency), "got %v", err)

	rec, err = r.Analyze(context.Background(), src, Options{})
	require.NoError(t, err)
	assert.False(t, rec.Verified)
}

func TestAnalyzeVerifySkipsIntractableAlphabet(t *testing.T) {
	src := Source{Name: "wide", Generators: "(1,2)", Stats: "vertices = 10\nedges = 9\n"}
	r := newRunner(group.NewClosure(0), record.NewMemoryStore(), nil)

	// 6^10 labelings exceed the enumeration cap, so the record is written
	// without the cross-check instead of the network being skipped.
	rec, err := r.Analyze(context.Background(), src, Options{Alphabet: 6, Verify: true})
	require.NoError(t, err)
	assert.False(t, rec.Verified)
	assert.Equal(t, "35271936", rec.Rho.String())

	rec, err = r.Analyze(context.Background(), src, Options{Alphabet: 3, Verify: true, Refresh: true})
	require.NoError(t, err)
	assert.True(t, rec.Verified)
}

func TestAnalyzeCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	oracle := &countingOracle{inner: group.NewClosure(0)}
	r := newRunner(oracle, record.NewMemoryStore(), c)
	defer r.Close()

	src := Source{Name: "c", Generators: "(1,2,3)", Stats: "vertices = 3\nedges = 3\n"}
	ctx := context.Background()

	first, cached, err := r.AnalyzeWithCacheInfo(ctx, src, Options{RunID: "a"})
	require.NoError(t, err)
	assert.False(t, cached)

	second, cached, err := r.AnalyzeWithCacheInfo(ctx, src, Options{RunID: "b"})
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, first.Rho.String(), second.Rho.String())
	assert.Equal(t, "b", second.RunID)
	assert.Equal(t, int32(1), oracle.calls.Load())

	// Different alphabet, different key
	_, cached, err = r.AnalyzeWithCacheInfo(ctx, src, Options{Alphabet: 3})
	require.NoError(t, err)
	assert.False(t, cached)

	_, cached, err = r.AnalyzeWithCacheInfo(ctx, src, Options{Refresh: true})
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, int32(3), oracle.calls.Load())
}

type failingStore struct{ record.MemoryStore }

func (*failingStore) Put(context.Context, *record.Record) error {
	return io.ErrShortWrite
}

func TestAnalyzeStorageFailure(t *testing.T) {
	r := newRunner(group.NewClosure(0), &failingStore{}, nil)
	_, err := r.Analyze(context.Background(), Source{Name: "s", Stats: "vertices = 1\nedges = 0\n"}, Options{})
	assert.True(t, errors.Is(err, errors.ErrCodeStorage), "got %v", err)
	assert.True(t, errors.Fatal(err))
}

// recordingHooks counts pipeline events.
type recordingHooks struct {
	mu        sync.Mutex
	started   int
	completed map[string]error
	batchErr  error
	batches   int
}

func (h *recordingHooks) OnBatchStart(context.Context, string, int) {}

func (h *recordingHooks) OnNetworkStart(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started++
}

func (h *recordingHooks) OnNetworkComplete(_ context.Context, name string, _ time.Duration, _ bool, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.completed[name] = err
}

func (h *recordingHooks) OnBatchComplete(_ context.Context, _ string, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.batches++
	h.batchErr = err
}

func TestRunSkipsPerNetworkFailures(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"good.gen":    "(1,2)\n",
		"good.log":    "vertices = 4\nedges = 5\n",
		"orphan.gaut": "(0 1)\n",
		"broken.gen":  "(1,",
		"broken.log":  "vertices = 4\nedges = 5\n",
		"gapped.gap":  "N:=3;;\nz:=[(1,2,3)];;\n",
		"gapped.log":  "vertices = 3\nedges = 3\n",
	})
	networks, err := netio.Discover(dir, "")
	require.NoError(t, err)
	require.Len(t, networks, 4)

	store := record.NewMemoryStore()
	hooks := &recordingHooks{completed: make(map[string]error)}
	r := newRunner(group.NewClosure(0), store, nil)
	r.Hooks = hooks

	summary, err := r.Run(context.Background(), Sources(networks), Options{Workers: 2})
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 2, summary.SkippedTotal())
	assert.Equal(t, 1, summary.Skipped[errors.ErrCodeFileNotFound])
	assert.Equal(t, 1, summary.Skipped[errors.ErrCodeParse])
	require.Len(t, summary.Failures, 2)
	assert.Equal(t, "broken", summary.Failures[0].Name)
	assert.Equal(t, "orphan", summary.Failures[1].Name)
	assert.NotEmpty(t, summary.RunID)

	assert.Len(t, store.List(), 2)
	for _, rec := range store.List() {
		assert.Equal(t, summary.RunID, rec.RunID)
	}
	assert.Equal(t, 4, hooks.started)
	assert.Len(t, hooks.completed, 4)
	assert.Equal(t, 1, hooks.batches)
	assert.NoError(t, hooks.batchErr)
}

func TestRunAbortsOnFatal(t *testing.T) {
	down := group.OracleFunc(func(context.Context, perm.GeneratorSet) (*group.Group, error) {
		return nil, errors.New(errors.ErrCodeOracleUnavailable, "gap not installed")
	})
	sources := make([]Source, 20)
	for i := range sources {
		sources[i] = Source{
			Name:       "n" + string(rune('a'+i)),
			Generators: "(1,2)",
			Stats:      "vertices = 2\nedges = 1\n",
		}
	}

	hooks := &recordingHooks{completed: make(map[string]error)}
	r := newRunner(down, record.NewMemoryStore(), nil)
	r.Hooks = hooks

	summary, err := r.Run(context.Background(), sources, Options{Workers: 1})
	assert.True(t, errors.Is(err, errors.ErrCodeOracleUnavailable), "got %v", err)
	require.NotNil(t, summary)
	assert.Zero(t, summary.Succeeded)
	assert.Less(t, hooks.started, len(sources))
	assert.Error(t, hooks.batchErr)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newRunner(group.NewClosure(0), record.NewMemoryStore(), nil)
	_, err := r.Run(ctx, []Source{{Name: "a", Stats: "vertices = 1\nedges = 0\n"}}, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSourceHash(t *testing.T) {
	a := Source{Name: "x", Generators: "(1,2)", Stats: "vertices = 2\nedges = 1\n"}
	b := a
	b.Stats = "vertices = 2\nedges = 2\n"

	ha, err := a.Hash()
	require.NoError(t, err)
	hb, err := b.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, ha, hb)

	again, err := a.Hash()
	require.NoError(t, err)
	assert.Equal(t, ha, again)
}

func TestRunExampleNetworks(t *testing.T) {
	networks, err := netio.Discover(filepath.Join("..", "..", "examples", "networks"), "")
	require.NoError(t, err)
	require.Len(t, networks, 3)

	store := record.NewMemoryStore()
	r := newRunner(group.NewClosure(0), store, nil)
	summary, err := r.Run(context.Background(), Sources(networks), Options{Verify: true})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Succeeded)

	tests := []struct {
		name       string
		order, rho string
		delta      string
		classes    int
	}{
		{"path", "2", "6", "1", 2},
		{"square", "8", "6", "3", 5},
		{"star", "24", "10", "3", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := store.Get(context.Background(), tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.order, rec.AutGrpOrder)
			assert.Equal(t, tt.rho, rec.Rho.String())
			assert.Equal(t, tt.delta, rec.Delta.String())
			assert.Equal(t, tt.classes, rec.Classes)
			assert.True(t, rec.Verified)
		})
	}
}
