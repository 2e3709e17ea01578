package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/symlump/pkg/cache"
	"github.com/matzehuels/symlump/pkg/errors"
	"github.com/matzehuels/symlump/pkg/group"
	"github.com/matzehuels/symlump/pkg/metric"
	"github.com/matzehuels/symlump/pkg/observability"
	"github.com/matzehuels/symlump/pkg/perm"
	"github.com/matzehuels/symlump/pkg/polya"
	"github.com/matzehuels/symlump/pkg/record"
)

// cacheKeyType labels record cache events in metrics.
const cacheKeyType = "record"

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so limits, caching and error handling agree.
//
// The Runner holds no per-network state. Multiple goroutines can safely use
// the same Runner with different sources.
type Runner struct {
	Oracle group.Oracle
	Store  record.Store
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	Hooks  observability.PipelineHooks

	now func() time.Time
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer uses
// DefaultKeyer, and a nil logger uses log.Default(). Hooks default to the
// globally registered pipeline hooks.
func NewRunner(oracle group.Oracle, store record.Store, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Oracle: oracle,
		Store:  store,
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		Hooks:  observability.Pipeline(),
		now:    time.Now,
	}
}

// Analyze runs the complete pipeline for one network and writes its record.
func (r *Runner) Analyze(ctx context.Context, src Source, opts Options) (*record.Record, error) {
	rec, _, err := r.AnalyzeWithCacheInfo(ctx, src, opts)
	return rec, err
}

// AnalyzeWithCacheInfo is Analyze that also reports whether the record came
// from the cache.
func (r *Runner) AnalyzeWithCacheInfo(ctx context.Context, src Source, opts Options) (*record.Record, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	if err := errors.ValidateGraphName(src.Name); err != nil {
		return nil, false, err
	}
	if r.Oracle == nil {
		return nil, false, errors.New(errors.ErrCodeOracleUnavailable, "no group oracle configured")
	}
	logger := r.Logger.With("network", src.Name)

	// Stage 1: Load statistics and check the domain before touching the
	// generators, so oversized networks are refused cheaply.
	stats, err := src.LoadStats()
	if err != nil {
		return nil, false, err
	}
	if err := polya.CheckDomain(stats.Vertices, opts.NodeLimit); err != nil {
		return nil, false, err
	}

	// Stage 2: Cache lookup
	oracleName := group.Name(r.Oracle)
	key, err := r.recordKey(src, opts, oracleName)
	if err != nil {
		return nil, false, err
	}
	if !opts.Refresh {
		if rec, ok := r.cached(ctx, key, logger); ok {
			rec.RunID = opts.RunID
			if err := r.put(ctx, rec); err != nil {
				return nil, false, err
			}
			return rec, true, nil
		}
	}

	// Stage 3: Load generators
	gens, err := src.LoadGenerators(stats.Vertices)
	if err != nil {
		return nil, false, err
	}

	// Stage 4: Group order and conjugacy classes
	g, err := r.analyzeGroup(ctx, gens, opts.Timeout, oracleName)
	if err != nil {
		return nil, false, err
	}
	logger.Debug("group analyzed", "order", g.Order, "classes", len(g.Classes))

	// Stage 5: Orbit count
	rho, err := polya.Count(g, stats.Vertices, opts.Alphabet, polya.Limits{MaxTermBits: opts.MaxTermBits})
	if err != nil {
		return nil, false, err
	}
	verified := false
	if opts.Verify && !rho.IsInf() && polya.BruteForceTractable(stats.Vertices, opts.Alphabet, opts.VerifyMaxNodes) {
		want, err := polya.BruteForce(gens, opts.Alphabet, opts.VerifyMaxNodes)
		if err != nil {
			return nil, false, err
		}
		if !want.Equal(rho) {
			return nil, false, errors.New(errors.ErrCodeConsistency,
				"orbit count %s disagrees with brute force %s", rho, want)
		}
		verified = true
	}

	// Stage 6: Record
	rec := &record.Record{
		GraphName:   src.Name,
		NNodes:      stats.Vertices,
		MEdges:      stats.Edges,
		AutGrpOrder: g.Order.String(),
		Rho:         rho,
		AvgSupport:  stats.AverageSupport,
		TotSupport:  stats.TotalSupport,
		Orbits:      gens.Orbits(),
		Delta:       metric.Delta(stats.Vertices, stats.Edges, rho),
		Classes:     len(g.Classes),
		Generators:  gens.Len(),
		Alphabet:    opts.Alphabet,
		Oracle:      oracleName,
		Verified:    verified,
		ComputedAt:  r.now().UTC(),
		RunID:       opts.RunID,
	}
	if err := r.put(ctx, rec); err != nil {
		return nil, false, err
	}
	r.store(ctx, key, rec, logger)

	logger.Info("record written", "order", rec.AutGrpOrder, "rho", rec.Rho, "delta", rec.Delta)
	return rec, false, nil
}

// analyzeGroup runs the oracle under the per-network deadline.
func (r *Runner) analyzeGroup(ctx context.Context, gens perm.GeneratorSet, timeout time.Duration, oracleName string) (*group.Group, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	hooks := observability.Oracle()
	hooks.OnOracleStart(ctx, oracleName, gens.Len())
	start := time.Now()
	g, err := group.Analyze(ctx, r.Oracle, gens)
	hooks.OnOracleComplete(ctx, oracleName, time.Since(start), err)
	return g, err
}

func (r *Runner) recordKey(src Source, opts Options, oracleName string) (string, error) {
	hash, err := src.Hash()
	if err != nil {
		return "", err
	}
	return r.Keyer.RecordKey(src.Name, hash, opts.RecordKeyOpts(oracleName)), nil
}

// cached returns the record stored under key. Backend failures and corrupt
// entries count as misses.
func (r *Runner) cached(ctx context.Context, key string, logger *log.Logger) (*record.Record, bool) {
	hooks := observability.Cache()
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		logger.Debug("cache read failed", "error", err)
	}
	if err != nil || !hit {
		hooks.OnCacheMiss(ctx, cacheKeyType)
		return nil, false
	}
	rec, err := record.Unmarshal(data)
	if err != nil {
		logger.Debug("discarding corrupt cache entry", "error", err)
		hooks.OnCacheMiss(ctx, cacheKeyType)
		return nil, false
	}
	hooks.OnCacheHit(ctx, cacheKeyType)
	logger.Debug("record cache hit")
	return rec, true
}

func (r *Runner) store(ctx context.Context, key string, rec *record.Record, logger *log.Logger) {
	data, err := record.Marshal(rec)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLRecord); err != nil {
		logger.Warn("cache write failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
}

func (r *Runner) put(ctx context.Context, rec *record.Record) error {
	if r.Store == nil {
		return nil
	}
	if err := r.Store.Put(ctx, rec); err != nil {
		if errors.GetCode(err) == errors.ErrCodeStorage {
			return err
		}
		return errors.Wrap(errors.ErrCodeStorage, err, "write record %s", rec.GraphName)
	}
	return nil
}

// Close releases the cache and the store.
func (r *Runner) Close() error {
	var first error
	if r.Cache != nil {
		first = r.Cache.Close()
	}
	if r.Store != nil {
		if err := r.Store.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
