// Package stream cracks large JSON bundles and NDJSON exports row by
// row, without holding the whole input in memory.
package stream

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/gofhir/tabulate/design"
	"github.com/gofhir/tabulate/extract"
	"github.com/gofhir/tabulate/pool"
	"github.com/gofhir/tabulate/table"
	"github.com/gofhir/tabulate/tree"
)

// RowResult is one cracked row from a bundle entry.
type RowResult struct {
	// Index is the position of the entry in the bundle
	Index int

	// FullURL is the fullUrl of the entry (if present)
	FullURL string

	// ResourceType is the type of resource in the entry
	ResourceType string

	// ResourceID is the id of the resource (if present)
	ResourceID string

	// Row holds one cell per description column, in column order.
	// Nil for entries whose resource type does not match.
	Row []string

	// Err is set if there was an error processing the entry
	Err error
}

// RowCracker cracks bundle entries in a streaming fashion against one
// table description.
type RowCracker struct {
	desc    *design.TableDescription
	columns []design.CompiledColumn

	// bufferSize is the channel buffer size
	bufferSize int

	// workerCount is the number of parallel workers
	workerCount int
}

// NewRowCracker creates a streaming cracker for one table description.
// Auto-discovery descriptions are rejected: a stream needs its column
// set fixed before the first row goes out.
func NewRowCracker(desc *design.TableDescription) (*RowCracker, error) {
	if desc == nil {
		return nil, fmt.Errorf("stream: table description is nil")
	}
	if desc.AutoColumns() {
		return nil, fmt.Errorf("stream: description for %s has no declared columns; streaming requires a fixed column set", desc.Resource())
	}
	return &RowCracker{
		desc:        desc,
		columns:     desc.Columns(),
		bufferSize:  100,
		workerCount: 4,
	}, nil
}

// WithBufferSize sets the channel buffer size.
func (s *RowCracker) WithBufferSize(size int) *RowCracker {
	if size > 0 {
		s.bufferSize = size
	}
	return s
}

// WithWorkerCount sets the number of parallel workers used by
// StreamParallel.
func (s *RowCracker) WithWorkerCount(count int) *RowCracker {
	if count > 0 {
		s.workerCount = count
	}
	return s
}

// Columns returns the output column names, in order.
func (s *RowCracker) Columns() []string {
	names := make([]string, len(s.columns))
	for i, col := range s.columns {
		names[i] = col.Name
	}
	return names
}

// Stream cracks a bundle from r, emitting one result per matching
// entry in bundle order. The channel closes when the bundle is
// exhausted or a bundle-level error (Index -1) has been emitted.
func (s *RowCracker) Stream(ctx context.Context, r io.Reader) <-chan *RowResult {
	results := make(chan *RowResult, s.bufferSize)

	go func() {
		defer close(results)

		decoder := json.NewDecoder(r)

		token, err := decoder.Token()
		if err != nil {
			results <- &RowResult{Index: -1, Err: fmt.Errorf("read bundle: %w", err)}
			return
		}
		if delim, ok := token.(json.Delim); !ok || delim != '{' {
			results <- &RowResult{Index: -1, Err: fmt.Errorf("expected object start, got %v", token)}
			return
		}

		// Walk bundle fields until "entry"; everything else is skipped.
		for decoder.More() {
			select {
			case <-ctx.Done():
				results <- &RowResult{Index: -1, Err: ctx.Err()}
				return
			default:
			}

			token, err := decoder.Token()
			if err != nil {
				results <- &RowResult{Index: -1, Err: fmt.Errorf("read field: %w", err)}
				return
			}
			fieldName, ok := token.(string)
			if !ok {
				continue
			}

			if fieldName == "entry" {
				s.streamEntries(ctx, decoder, results)
				return
			}

			var skip any
			if err := decoder.Decode(&skip); err != nil {
				results <- &RowResult{Index: -1, Err: fmt.Errorf("skip field %s: %w", fieldName, err)}
				return
			}
		}

		// No entry field found - empty bundle
	}()

	return results
}

// bundleEntry carries the raw resource bytes so document order inside
// the resource survives until cracking.
type bundleEntry struct {
	FullURL  string          `json:"fullUrl"`
	Resource json.RawMessage `json:"resource"`
}

func (s *RowCracker) streamEntries(ctx context.Context, decoder *json.Decoder, results chan<- *RowResult) {
	token, err := decoder.Token()
	if err != nil {
		results <- &RowResult{Index: -1, Err: fmt.Errorf("read entry array: %w", err)}
		return
	}
	if delim, ok := token.(json.Delim); !ok || delim != '[' {
		results <- &RowResult{Index: -1, Err: fmt.Errorf("expected array start, got %v", token)}
		return
	}

	index := 0
	for decoder.More() {
		select {
		case <-ctx.Done():
			results <- &RowResult{Index: index, Err: ctx.Err()}
			return
		default:
		}

		var entry bundleEntry
		if err := decoder.Decode(&entry); err != nil {
			results <- &RowResult{
				Index: index,
				Err:   fmt.Errorf("decode entry %d: %w", index, err),
			}
			index++
			continue
		}

		if result := s.crackEntry(entry, index); result != nil {
			results <- result
		}
		index++
	}
}

// crackEntry cracks one entry, or returns nil when its resource type
// does not match the description.
func (s *RowCracker) crackEntry(entry bundleEntry, index int) *RowResult {
	result := &RowResult{
		Index:   index,
		FullURL: entry.FullURL,
	}

	if len(entry.Resource) == 0 {
		return nil // entry without a resource (e.g. transaction response)
	}

	resource, err := tree.DecodeJSON(bytes.NewReader(entry.Resource))
	if err != nil {
		result.Err = fmt.Errorf("entry %d: %w", index, err)
		return result
	}

	result.ResourceType = resource.Type()
	if id := resource.Child("id"); id != nil {
		result.ResourceID = id.Text
	}
	if result.ResourceType != s.desc.Resource() {
		return nil
	}

	style := s.desc.Style()
	result.Row = make([]string, len(s.columns))
	for i, col := range s.columns {
		matches := extract.Extract(resource, col.Path)
		result.Row[i] = pool.BuildCell(func(b *pool.CellBuilder) {
			for _, m := range matches {
				b.WriteValue(m.Trail, m.Value, style.Sep, style.Brackets.Open, style.Brackets.Close)
			}
		})
	}
	return result
}

// StreamParallel cracks entries in parallel while preserving bundle
// order in the output. The whole bundle is decoded up front, so this
// trades memory for throughput on extraction-heavy descriptions.
func (s *RowCracker) StreamParallel(ctx context.Context, r io.Reader) <-chan *RowResult {
	results := make(chan *RowResult, s.bufferSize)

	go func() {
		defer close(results)

		var bundle struct {
			Entry []bundleEntry `json:"entry"`
		}
		if err := json.NewDecoder(r).Decode(&bundle); err != nil {
			results <- &RowResult{Index: -1, Err: fmt.Errorf("decode bundle: %w", err)}
			return
		}
		if len(bundle.Entry) == 0 {
			return
		}

		type workItem struct {
			index int
			entry bundleEntry
		}

		workChan := make(chan workItem, s.bufferSize)
		resultChan := make(chan *RowResult, s.bufferSize)

		var wg sync.WaitGroup
		for i := 0; i < s.workerCount; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for work := range workChan {
					select {
					case <-ctx.Done():
						return
					default:
					}
					result := s.crackEntry(work.entry, work.index)
					if result == nil {
						// Keep a placeholder so reordering can advance.
						result = &RowResult{Index: work.index}
					}
					resultChan <- result
				}
			}()
		}

		go func() {
			for i, e := range bundle.Entry {
				select {
				case workChan <- workItem{index: i, entry: e}:
				case <-ctx.Done():
				}
			}
			close(workChan)
			wg.Wait()
			close(resultChan)
		}()

		// Collect and reorder; placeholders (nil Row, no error) are
		// dropped at emission.
		pending := make(map[int]*RowResult)
		nextIndex := 0
		total := len(bundle.Entry)

		emit := func(r *RowResult) {
			if r.Row != nil || r.Err != nil {
				results <- r
			}
		}

		for result := range resultChan {
			pending[result.Index] = result
			for {
				r, ok := pending[nextIndex]
				if !ok {
					break
				}
				emit(r)
				delete(pending, nextIndex)
				nextIndex++
			}
			if nextIndex >= total {
				break
			}
		}
		for nextIndex < total {
			if r, ok := pending[nextIndex]; ok {
				emit(r)
				delete(pending, nextIndex)
			}
			nextIndex++
		}
	}()

	return results
}

// StreamNDJSON cracks newline-delimited JSON, one resource per line -
// the bulk-export format FHIR servers hand out for large datasets.
// Blank lines are skipped; the entry index counts non-blank lines.
func (s *RowCracker) StreamNDJSON(ctx context.Context, r io.Reader) <-chan *RowResult {
	results := make(chan *RowResult, s.bufferSize)

	go func() {
		defer close(results)

		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

		index := 0
		for scanner.Scan() {
			select {
			case <-ctx.Done():
				results <- &RowResult{Index: index, Err: ctx.Err()}
				return
			default:
			}

			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}

			entry := bundleEntry{Resource: append([]byte(nil), line...)}
			if result := s.crackEntry(entry, index); result != nil {
				results <- result
			}
			index++
		}
		if err := scanner.Err(); err != nil {
			results <- &RowResult{Index: -1, Err: fmt.Errorf("read ndjson: %w", err)}
		}
	}()

	return results
}

// Collect drains a result stream into a table. Processing errors are
// returned separately; erroring entries contribute no row.
func Collect(name string, s *RowCracker, results <-chan *RowResult) (*table.Table, []error) {
	tbl := table.New(name, s.Columns())

	var errs []error
	for result := range results {
		if result.Err != nil {
			errs = append(errs, result.Err)
			continue
		}
		if result.Row == nil {
			continue
		}
		if err := tbl.AppendRow(result.Row); err != nil {
			errs = append(errs, err)
		}
	}
	return tbl, errs
}
