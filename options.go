package fhirtabulate

import "runtime"

// Option configures the cracking engine.
type Option func(*Options)

// Options holds all configuration for the cracking engine.
type Options struct {
	// FHIR version used for resource-type vocabulary lookups
	Version FHIRVersion

	// Filter is a FHIRPath expression; resources for which it does not
	// evaluate to a truthy collection are skipped during cracking.
	Filter string

	// Performance
	ParallelTables bool
	WorkerCount    int
	PathCacheSize  int
	EnablePooling  bool

	// Metrics collection
	EnableMetrics bool
}

// DefaultOptions returns the default configuration.
func DefaultOptions() *Options {
	return &Options{
		Version:        R4,
		ParallelTables: false,
		WorkerCount:    runtime.NumCPU(),
		PathCacheSize:  500,
		EnablePooling:  true,
		EnableMetrics:  true,
	}
}

// WithVersion sets the FHIR version used for vocabulary lookups.
func WithVersion(v FHIRVersion) Option {
	return func(o *Options) {
		if v.IsValid() {
			o.Version = v
		}
	}
}

// WithFilter sets a FHIRPath expression used to select resources.
// Resources for which the expression is not truthy are skipped.
func WithFilter(expr string) Option {
	return func(o *Options) {
		o.Filter = expr
	}
}

// WithParallelTables enables cracking design entries in parallel
// on a worker pool.
func WithParallelTables(enable bool) Option {
	return func(o *Options) {
		o.ParallelTables = enable
	}
}

// WithWorkerCount sets the number of workers for parallel cracking.
// Defaults to runtime.NumCPU().
func WithWorkerCount(count int) Option {
	return func(o *Options) {
		if count > 0 {
			o.WorkerCount = count
		}
	}
}

// WithPathCacheSize sets the size of the compiled-path LRU cache.
func WithPathCacheSize(size int) Option {
	return func(o *Options) {
		if size > 0 {
			o.PathCacheSize = size
		}
	}
}

// WithPooling enables or disables buffer pooling in the cell-assembly
// hot path.
func WithPooling(enable bool) Option {
	return func(o *Options) {
		o.EnablePooling = enable
	}
}

// WithMetrics enables or disables metrics collection.
func WithMetrics(enable bool) Option {
	return func(o *Options) {
		o.EnableMetrics = enable
	}
}

// FastOptions returns options tuned for large batch jobs.
func FastOptions() []Option {
	return []Option{
		WithParallelTables(true),
		WithPathCacheSize(2000),
		WithPooling(true),
	}
}
