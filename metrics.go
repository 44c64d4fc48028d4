package fhirtabulate

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks cracking performance using lock-free atomic operations.
// All methods are safe for concurrent use.
type Metrics struct {
	// Work counts
	tablesBuilt    atomic.Uint64
	resourcesTotal atomic.Uint64
	cellsBuilt     atomic.Uint64
	indexedCells   atomic.Uint64

	// Timing (stored as nanoseconds)
	crackTimeTotal atomic.Uint64
	crackTimeMin   atomic.Uint64
	crackTimeMax   atomic.Uint64

	// Path cache
	cacheHits   atomic.Uint64
	cacheMisses atomic.Uint64

	// Per-table timing
	tableTiming sync.Map // map[string]*tableMetrics
}

// tableMetrics tracks metrics for a single design entry.
type tableMetrics struct {
	cracks    atomic.Uint64
	totalTime atomic.Uint64 // nanoseconds
	rows      atomic.Uint64
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	m := &Metrics{}
	// Initialize min to max uint64 so first value becomes the minimum
	m.crackTimeMin.Store(^uint64(0))
	return m
}

// RecordCrack records a completed crack of one design entry.
func (m *Metrics) RecordCrack(table string, duration time.Duration, rows int) {
	m.tablesBuilt.Add(1)

	ns := uint64(duration.Nanoseconds())
	m.crackTimeTotal.Add(ns)

	// Update min (CAS loop)
	for {
		old := m.crackTimeMin.Load()
		if ns >= old || m.crackTimeMin.CompareAndSwap(old, ns) {
			break
		}
	}

	// Update max (CAS loop)
	for {
		old := m.crackTimeMax.Load()
		if ns <= old || m.crackTimeMax.CompareAndSwap(old, ns) {
			break
		}
	}

	tm := m.tableMetricsFor(table)
	tm.cracks.Add(1)
	tm.totalTime.Add(ns)
	tm.rows.Add(uint64(rows))
}

// RecordResource records one processed resource.
func (m *Metrics) RecordResource() {
	m.resourcesTotal.Add(1)
}

// RecordCell records one assembled cell, indexed or not.
func (m *Metrics) RecordCell(indexed bool) {
	m.cellsBuilt.Add(1)
	if indexed {
		m.indexedCells.Add(1)
	}
}

// RecordCacheHit records a compiled-path cache hit.
func (m *Metrics) RecordCacheHit() {
	m.cacheHits.Add(1)
}

// RecordCacheMiss records a compiled-path cache miss.
func (m *Metrics) RecordCacheMiss() {
	m.cacheMisses.Add(1)
}

func (m *Metrics) tableMetricsFor(table string) *tableMetrics {
	if v, ok := m.tableTiming.Load(table); ok {
		return v.(*tableMetrics)
	}
	v, _ := m.tableTiming.LoadOrStore(table, &tableMetrics{})
	return v.(*tableMetrics)
}

// Snapshot is a point-in-time copy of the metrics.
type Snapshot struct {
	TablesBuilt    uint64
	ResourcesTotal uint64
	CellsBuilt     uint64
	IndexedCells   uint64

	CrackTimeTotal time.Duration
	CrackTimeMin   time.Duration
	CrackTimeMax   time.Duration
	CrackTimeAvg   time.Duration

	CacheHits    uint64
	CacheMisses  uint64
	CacheHitRate float64

	Tables map[string]TableSnapshot
}

// TableSnapshot is a point-in-time copy of one design entry's metrics.
type TableSnapshot struct {
	Cracks    uint64
	TotalTime time.Duration
	Rows      uint64
}

// Snapshot returns a consistent-enough copy of the current metrics.
func (m *Metrics) Snapshot() Snapshot {
	s := Snapshot{
		TablesBuilt:    m.tablesBuilt.Load(),
		ResourcesTotal: m.resourcesTotal.Load(),
		CellsBuilt:     m.cellsBuilt.Load(),
		IndexedCells:   m.indexedCells.Load(),
		CrackTimeTotal: time.Duration(m.crackTimeTotal.Load()),
		CrackTimeMax:   time.Duration(m.crackTimeMax.Load()),
		CacheHits:      m.cacheHits.Load(),
		CacheMisses:    m.cacheMisses.Load(),
		Tables:         make(map[string]TableSnapshot),
	}

	if min := m.crackTimeMin.Load(); min != ^uint64(0) {
		s.CrackTimeMin = time.Duration(min)
	}
	if s.TablesBuilt > 0 {
		s.CrackTimeAvg = s.CrackTimeTotal / time.Duration(s.TablesBuilt)
	}
	if total := s.CacheHits + s.CacheMisses; total > 0 {
		s.CacheHitRate = float64(s.CacheHits) / float64(total)
	}

	m.tableTiming.Range(func(k, v any) bool {
		tm := v.(*tableMetrics)
		s.Tables[k.(string)] = TableSnapshot{
			Cracks:    tm.cracks.Load(),
			TotalTime: time.Duration(tm.totalTime.Load()),
			Rows:      tm.rows.Load(),
		}
		return true
	})

	return s
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.tablesBuilt.Store(0)
	m.resourcesTotal.Store(0)
	m.cellsBuilt.Store(0)
	m.indexedCells.Store(0)
	m.crackTimeTotal.Store(0)
	m.crackTimeMin.Store(^uint64(0))
	m.crackTimeMax.Store(0)
	m.cacheHits.Store(0)
	m.cacheMisses.Store(0)
	m.tableTiming.Range(func(k, _ any) bool {
		m.tableTiming.Delete(k)
		return true
	})
}
