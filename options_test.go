package fhirtabulate

import "testing"

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()

	if o.Version != R4 {
		t.Errorf("Version = %v; want R4", o.Version)
	}
	if o.ParallelTables {
		t.Error("ParallelTables = true; want false by default")
	}
	if o.WorkerCount <= 0 {
		t.Errorf("WorkerCount = %d; want > 0", o.WorkerCount)
	}
	if o.PathCacheSize != 500 {
		t.Errorf("PathCacheSize = %d; want 500", o.PathCacheSize)
	}
	if !o.EnablePooling || !o.EnableMetrics {
		t.Error("pooling and metrics should default to enabled")
	}
}

func TestOptions(t *testing.T) {
	o := DefaultOptions()
	for _, opt := range []Option{
		WithVersion(R5),
		WithFilter("gender = 'female'"),
		WithParallelTables(true),
		WithWorkerCount(8),
		WithPathCacheSize(1000),
		WithPooling(false),
		WithMetrics(false),
	} {
		opt(o)
	}

	if o.Version != R5 {
		t.Errorf("Version = %v; want R5", o.Version)
	}
	if o.Filter != "gender = 'female'" {
		t.Errorf("Filter = %q", o.Filter)
	}
	if !o.ParallelTables || o.WorkerCount != 8 || o.PathCacheSize != 1000 {
		t.Errorf("performance options not applied: %+v", o)
	}
	if o.EnablePooling || o.EnableMetrics {
		t.Error("pooling and metrics should be disabled")
	}
}

func TestOptions_InvalidValuesIgnored(t *testing.T) {
	o := DefaultOptions()

	WithVersion(FHIRVersion("DSTU2"))(o)
	WithWorkerCount(0)(o)
	WithPathCacheSize(-1)(o)

	if o.Version != R4 {
		t.Errorf("invalid version should be ignored; got %v", o.Version)
	}
	if o.WorkerCount <= 0 || o.PathCacheSize != 500 {
		t.Errorf("non-positive sizes should be ignored: %+v", o)
	}
}

func TestFastOptions(t *testing.T) {
	o := DefaultOptions()
	for _, opt := range FastOptions() {
		opt(o)
	}
	if !o.ParallelTables || o.PathCacheSize != 2000 || !o.EnablePooling {
		t.Errorf("FastOptions not applied: %+v", o)
	}
}
