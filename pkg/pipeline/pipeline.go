// Package pipeline turns network artifacts into reduction records.
//
// This package implements the complete load → group → count → record
// pipeline that the CLI, the HTTP API and batch runs share. By centralizing
// this logic, every entry point applies the same limits, caching and error
// classification.
//
// # Architecture
//
// Analysing one network runs these stages:
//
//  1. Load: read the statistics log and the generator file
//  2. Check: refuse networks at or above the node limit
//  3. Group: ask the oracle for the group order and conjugacy classes,
//     under a hard per-network deadline
//  4. Count: Pólya orbit count, optionally cross-checked by brute force
//  5. Record: delta, orbit partition, write to the store and the cache
//
// [Runner.Run] applies this to a batch over a bounded worker pool. Errors
// scoped to one network (PARSE_ERROR, FILE_NOT_FOUND, CONSISTENCY_ERROR,
// DEGENERATE_INPUT, GROUP_TOO_LARGE, TIMEOUT) skip it and are counted in the
// [Summary]; ORACLE_UNAVAILABLE, STORAGE_ERROR and cancellation abort the
// batch.
//
// # Usage
//
//	runner := pipeline.NewRunner(group.NewClosure(0), store, cache, nil, logger)
//	networks, _ := netio.Discover("data/saucy", "")
//	summary, err := runner.Run(ctx, pipeline.Sources(networks), pipeline.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(summary.Succeeded, "records written")
package pipeline

import (
	"runtime"
	"time"

	"github.com/matzehuels/symlump/pkg/cache"
	"github.com/matzehuels/symlump/pkg/errors"
	"github.com/matzehuels/symlump/pkg/polya"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Config
// =============================================================================

const (
	// DefaultTimeout is the wall-time budget of one network.
	DefaultTimeout = 120 * time.Second

	// DefaultVerifyMaxNodes is the largest network cross-checked by brute force.
	DefaultVerifyMaxNodes = polya.DefaultBruteForceMaxNodes
)

// DefaultWorkers is the default batch concurrency.
func DefaultWorkers() int {
	return runtime.NumCPU()
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures analysis. The zero value is valid after
// ValidateAndSetDefaults. JSON tags allow API requests to carry options.
type Options struct {
	Workers        int           `json:"workers,omitempty"`
	Timeout        time.Duration `json:"timeout,omitempty"`
	NodeLimit      int           `json:"node_limit,omitempty"`
	Alphabet       int           `json:"alphabet,omitempty"`
	MaxTermBits    int           `json:"max_term_bits,omitempty"`
	Verify         bool          `json:"verify,omitempty"`
	VerifyMaxNodes int           `json:"verify_max_nodes,omitempty"`
	Refresh        bool          `json:"refresh,omitempty"` // ignore cached records

	// RunID tags every record of a batch. Run assigns one when empty.
	RunID string `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults rejects negative settings and fills in defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	for name, v := range map[string]int{
		"workers":          o.Workers,
		"node_limit":       o.NodeLimit,
		"alphabet":         o.Alphabet,
		"max_term_bits":    o.MaxTermBits,
		"verify_max_nodes": o.VerifyMaxNodes,
	} {
		if v < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "%s must not be negative, got %d", name, v)
		}
	}
	if o.Timeout < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "timeout must not be negative, got %s", o.Timeout)
	}

	if o.Workers == 0 {
		o.Workers = DefaultWorkers()
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	if o.NodeLimit == 0 {
		o.NodeLimit = polya.DefaultNodeLimit
	}
	if o.Alphabet == 0 {
		o.Alphabet = polya.DefaultAlphabet
	}
	if o.MaxTermBits == 0 {
		o.MaxTermBits = polya.DefaultMaxTermBits
	}
	if o.VerifyMaxNodes == 0 {
		o.VerifyMaxNodes = DefaultVerifyMaxNodes
	}
	o.validated = true
	return nil
}

// RecordKeyOpts returns the options that enter a record's cache key.
func (o *Options) RecordKeyOpts(oracle string) cache.RecordKeyOpts {
	return cache.RecordKeyOpts{
		Alphabet:    o.Alphabet,
		MaxTermBits: o.MaxTermBits,
		NodeLimit:   o.NodeLimit,
		Verify:      o.Verify,
		Oracle:      oracle,
	}
}

// =============================================================================
// Summary - Batch Outcome
// =============================================================================

// Failure describes one skipped network.
type Failure struct {
	Name    string        `json:"name"`
	Code    errors.Code   `json:"code"`
	Message string        `json:"message"`
	Elapsed time.Duration `json:"elapsed"`
}

// Summary is the outcome of a batch.
type Summary struct {
	RunID     string              `json:"run_id"`
	Total     int                 `json:"total"`
	Succeeded int                 `json:"succeeded"` // records written, cached included
	Cached    int                 `json:"cached"`
	Skipped   map[errors.Code]int `json:"skipped"`
	Failures  []Failure           `json:"failures,omitempty"`
	Duration  time.Duration       `json:"duration"`
}

// SkippedTotal returns the number of skipped networks.
func (s *Summary) SkippedTotal() int {
	n := 0
	for _, c := range s.Skipped {
		n += c
	}
	return n
}
