// Package observability provides hooks for metrics and progress reporting.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup to
// receive events about network analysis, oracle calls, cache lookups and API
// requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// [PrometheusHooks] implements every interface on top of a Prometheus
// registry; the terminal progress view implements [PipelineHooks] alone.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    prom := observability.NewPrometheusHooks()
//	    observability.SetPipelineHooks(prom)
//	    observability.SetOracleHooks(prom)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnNetworkStart(ctx, name)
//	// ... analyze ...
//	observability.Pipeline().OnNetworkComplete(ctx, name, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives per-network events from a batch.
type PipelineHooks interface {
	// OnBatchStart is called once with the number of networks queued.
	OnBatchStart(ctx context.Context, runID string, networks int)

	// OnNetworkStart is called when a worker picks up a network.
	OnNetworkStart(ctx context.Context, name string)

	// OnNetworkComplete is called once per network. A nil err means a record
	// was written; cached reports that it came from the record cache.
	OnNetworkComplete(ctx context.Context, name string, duration time.Duration, cached bool, err error)

	// OnBatchComplete is called after the last network.
	OnBatchComplete(ctx context.Context, runID string, duration time.Duration, err error)
}

// =============================================================================
// Oracle Hooks
// =============================================================================

// OracleHooks receives events from group oracle calls.
type OracleHooks interface {
	OnOracleStart(ctx context.Context, oracle string, generators int)
	OnOracleComplete(ctx context.Context, oracle string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// API Hooks
// =============================================================================

// APIHooks receives events from the HTTP API.
type APIHooks interface {
	// OnResponse records a served request. route is the matched pattern, not
	// the raw path, so label cardinality stays bounded.
	OnResponse(ctx context.Context, method, route string, status int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnBatchStart(context.Context, string, int)                             {}
func (NoopPipelineHooks) OnNetworkStart(context.Context, string)                                {}
func (NoopPipelineHooks) OnNetworkComplete(context.Context, string, time.Duration, bool, error) {}
func (NoopPipelineHooks) OnBatchComplete(context.Context, string, time.Duration, error)         {}

// NoopOracleHooks is a no-op implementation of OracleHooks.
type NoopOracleHooks struct{}

func (NoopOracleHooks) OnOracleStart(context.Context, string, int)                        {}
func (NoopOracleHooks) OnOracleComplete(context.Context, string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopAPIHooks is a no-op implementation of APIHooks.
type NoopAPIHooks struct{}

func (NoopAPIHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Fan-out
// =============================================================================

// MultiPipelineHooks forwards every event to each of hooks in order.
type MultiPipelineHooks []PipelineHooks

func (m MultiPipelineHooks) OnBatchStart(ctx context.Context, runID string, networks int) {
	for _, h := range m {
		h.OnBatchStart(ctx, runID, networks)
	}
}

func (m MultiPipelineHooks) OnNetworkStart(ctx context.Context, name string) {
	for _, h := range m {
		h.OnNetworkStart(ctx, name)
	}
}

func (m MultiPipelineHooks) OnNetworkComplete(ctx context.Context, name string, d time.Duration, cached bool, err error) {
	for _, h := range m {
		h.OnNetworkComplete(ctx, name, d, cached, err)
	}
}

func (m MultiPipelineHooks) OnBatchComplete(ctx context.Context, runID string, d time.Duration, err error) {
	for _, h := range m {
		h.OnBatchComplete(ctx, runID, d, err)
	}
}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	oracleHooks   OracleHooks   = NoopOracleHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	apiHooks      APIHooks      = NoopAPIHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any batch runs.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetOracleHooks registers custom oracle hooks.
func SetOracleHooks(h OracleHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		oracleHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetAPIHooks registers custom API hooks.
func SetAPIHooks(h APIHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		apiHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Oracle returns the registered oracle hooks.
func Oracle() OracleHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return oracleHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// API returns the registered API hooks.
func API() APIHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return apiHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	oracleHooks = NoopOracleHooks{}
	cacheHooks = NoopCacheHooks{}
	apiHooks = NoopAPIHooks{}
}
