// Package pool provides sync.Pool wrappers for the cell-assembly hot path.
package pool

import (
	"strconv"
	"sync"
)

// CellBuilder builds indexed cell strings such as "[1.2]Anna [2.1]Maria"
// on a reusable byte buffer.
type CellBuilder struct {
	buf []byte
}

var cellBuilderPool = sync.Pool{
	New: func() any {
		return &CellBuilder{
			buf: make([]byte, 0, 256),
		}
	},
}

// AcquireCellBuilder gets a CellBuilder from the pool.
// Call Release() when done to return it.
func AcquireCellBuilder() *CellBuilder {
	cb := cellBuilderPool.Get().(*CellBuilder)
	cb.Reset()
	return cb
}

// Release returns the CellBuilder to the pool.
func (b *CellBuilder) Release() {
	if b == nil {
		return
	}
	// Don't return oversized buffers to the pool
	if cap(b.buf) <= 4096 {
		cellBuilderPool.Put(b)
	}
}

// Reset clears the buffer without deallocating.
func (b *CellBuilder) Reset() {
	b.buf = b.buf[:0]
}

// Len returns the current length of the cell.
func (b *CellBuilder) Len() int {
	return len(b.buf)
}

// WriteString appends a string to the cell.
func (b *CellBuilder) WriteString(s string) {
	b.buf = append(b.buf, s...)
}

// WriteTrail appends an index trail wrapped in brackets: open, the
// dot-joined 1-based positions, close. An empty trail writes nothing.
func (b *CellBuilder) WriteTrail(trail []int, open, close string) {
	if len(trail) == 0 {
		return
	}
	b.buf = append(b.buf, open...)
	for i, n := range trail {
		if i > 0 {
			b.buf = append(b.buf, '.')
		}
		b.buf = strconv.AppendInt(b.buf, int64(n), 10)
	}
	b.buf = append(b.buf, close...)
}

// WriteValue appends one extracted value, prefixed with sep when the
// cell already has content and with the bracketed trail when one exists.
func (b *CellBuilder) WriteValue(trail []int, value, sep, open, close string) {
	if len(b.buf) > 0 {
		b.buf = append(b.buf, sep...)
	}
	b.WriteTrail(trail, open, close)
	b.buf = append(b.buf, value...)
}

// String returns the built cell as a string.
// This creates a single allocation for the final string.
func (b *CellBuilder) String() string {
	return string(b.buf)
}

// BuildCell assembles a cell using a callback, returning the builder to
// the pool afterwards.
func BuildCell(fn func(*CellBuilder)) string {
	cb := AcquireCellBuilder()
	defer cb.Release()
	fn(cb)
	return cb.String()
}
