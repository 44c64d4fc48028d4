package crack

import (
	"context"
	"fmt"
	"strings"
	"time"

	ft "github.com/gofhir/tabulate"
	"github.com/gofhir/tabulate/cache"
	"github.com/gofhir/tabulate/design"
	"github.com/gofhir/tabulate/extract"
	"github.com/gofhir/tabulate/pool"
	"github.com/gofhir/tabulate/table"
	"github.com/gofhir/tabulate/tree"
	"github.com/gofhir/tabulate/worker"
)

// Cracker flattens bundles of resource trees into tables.
// Safe for concurrent use.
type Cracker struct {
	opts      *ft.Options
	metrics   *ft.Metrics
	pathCache *cache.Cache[string, extract.Path]
	filter    *resourceFilter
}

// New creates a Cracker. A malformed FHIRPath filter expression fails
// here rather than mid-crack.
func New(opts ...ft.Option) (*Cracker, error) {
	o := ft.DefaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	c := &Cracker{
		opts:      o,
		pathCache: cache.New[string, extract.Path](o.PathCacheSize),
	}
	if o.EnableMetrics {
		c.metrics = ft.NewMetrics()
	}
	if o.Filter != "" {
		f, err := newResourceFilter(o.Filter)
		if err != nil {
			return nil, err
		}
		c.filter = f
	}
	return c, nil
}

// Metrics returns the collected metrics, or nil when disabled.
func (c *Cracker) Metrics() *ft.Metrics {
	return c.metrics
}

// Crack produces one table per design entry, in design order.
// Advisory conditions are collected on the result; the returned error
// is reserved for invalid input and context cancellation.
func (c *Cracker) Crack(ctx context.Context, bundles tree.Bundles, d *design.Design) (*Result, error) {
	if d == nil || d.Len() == 0 {
		return nil, fmt.Errorf("crack: design is empty")
	}

	if c.opts.ParallelTables && d.Len() > 1 {
		return c.crackParallel(ctx, bundles, d)
	}

	result := newResult()
	for _, e := range d.Entries() {
		tbl, issues, err := c.crackEntry(ctx, bundles, e.Name, e.Description)
		if err != nil {
			return nil, err
		}
		result.add(e.Name, tbl, issues)
	}
	return result, nil
}

// CrackTable cracks a single table description.
func (c *Cracker) CrackTable(ctx context.Context, bundles tree.Bundles, desc *design.TableDescription, name string) (*table.Table, []ft.Issue, error) {
	if desc == nil {
		return nil, nil, fmt.Errorf("crack: table description is nil")
	}
	if name == "" {
		name = desc.Resource()
	}
	return c.crackEntry(ctx, bundles, name, desc)
}

// crackParallel fans design entries out over a worker pool and
// reassembles the tables in design order.
func (c *Cracker) crackParallel(ctx context.Context, bundles tree.Bundles, d *design.Design) (*Result, error) {
	p := worker.NewPool(func(_ context.Context, job worker.Job) (*table.Table, []ft.Issue, error) {
		// The caller's ctx governs cancellation, not the pool's.
		return c.crackEntry(ctx, bundles, job.Name, job.Description)
	}, c.opts.WorkerCount)

	for _, e := range d.Entries() {
		p.Submit(ctx, worker.NewJob(e.Name, e.Description))
	}

	batch := p.CloseAndWait()

	byName := make(map[string]*worker.JobResult, len(batch.Results))
	for _, jr := range batch.Results {
		byName[jr.Name] = jr
	}

	result := newResult()
	for _, e := range d.Entries() {
		jr, ok := byName[e.Name]
		if !ok {
			return nil, fmt.Errorf("crack: no result for design entry %q", e.Name)
		}
		if jr.Err != nil {
			return nil, jr.Err
		}
		result.add(jr.Name, jr.Table, jr.Issues)
	}
	return result, nil
}

func (c *Cracker) crackEntry(ctx context.Context, bundles tree.Bundles, name string, desc *design.TableDescription) (*table.Table, []ft.Issue, error) {
	start := time.Now()
	style := desc.Style()

	// Construction-time warnings (unknown resource type) resurface with
	// the crack result so pipeline callers see them without having to
	// inspect every description.
	issues := desc.Issues()

	resources := bundles.ResourcesOfType(desc.Resource())
	if len(resources) == 0 {
		issues = append(issues, ft.Warning(ft.IssueTypeAbsentType).
			Diagnostics(fmt.Sprintf("no %s resources in the supplied bundles; table %q is empty", desc.Resource(), name)).
			At(name).
			Build())
	}

	if c.filter != nil {
		resources, issues = c.applyFilter(resources, name, issues)
	}

	cols := desc.Columns()
	if desc.AutoColumns() {
		var err error
		cols, err = c.discoverColumns(resources)
		if err != nil {
			return nil, nil, err
		}
	}

	colNames := make([]string, len(cols))
	for i, col := range cols {
		colNames[i] = col.Name
	}
	tbl := table.New(name, colNames)

	row := make([]string, len(cols))
	for _, res := range resources {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}

		for i, col := range cols {
			row[i] = c.buildCell(extract.Extract(res, col.Path), style)
		}
		if err := tbl.AppendRow(row); err != nil {
			return nil, nil, err
		}
		if c.metrics != nil {
			c.metrics.RecordResource()
		}
	}

	if style.RemoveEmptyColumns {
		tbl = dropEmptyColumns(tbl)
	}

	if c.metrics != nil {
		c.metrics.RecordCrack(name, time.Since(start), tbl.NumRows())
	}
	return tbl, issues, nil
}

// applyFilter keeps the resources the FHIRPath filter accepts. A
// resource the filter cannot evaluate is skipped with a warning.
func (c *Cracker) applyFilter(resources []*tree.Element, name string, issues []ft.Issue) ([]*tree.Element, []ft.Issue) {
	kept := resources[:0:0]
	for _, res := range resources {
		ok, err := c.filter.keep(res)
		if err != nil {
			issues = append(issues, ft.Warning(ft.IssueTypeProcessing).
				Diagnostics(err.Error()).
				At(name).
				Build())
			continue
		}
		if ok {
			kept = append(kept, res)
		}
	}
	return kept, issues
}

// buildCell joins the matches of one resource/column pair into a cell,
// prefixing each value with its bracketed trail when one exists.
func (c *Cracker) buildCell(matches []extract.Match, style design.Style) string {
	if len(matches) == 0 {
		return ""
	}

	indexed := false
	cell := assembleCell(matches, style, c.opts.EnablePooling)
	for _, m := range matches {
		if len(m.Trail) > 0 {
			indexed = true
			break
		}
	}
	if c.metrics != nil {
		c.metrics.RecordCell(indexed)
	}
	return cell
}

func assembleCell(matches []extract.Match, style design.Style, pooled bool) string {
	write := func(b *pool.CellBuilder) {
		for _, m := range matches {
			b.WriteValue(m.Trail, m.Value, style.Sep, style.Brackets.Open, style.Brackets.Close)
		}
	}

	if pooled {
		return pool.BuildCell(write)
	}
	b := &pool.CellBuilder{}
	write(b)
	return b.String()
}

// discoverColumns collects all leaf paths across the resources, in
// first-seen document order, for descriptions without declared columns.
func (c *Cracker) discoverColumns(resources []*tree.Element) ([]design.CompiledColumn, error) {
	var cols []design.CompiledColumn
	seen := make(map[string]struct{})

	for _, res := range resources {
		for _, pathStr := range extract.Discover(res) {
			if _, dup := seen[pathStr]; dup {
				continue
			}
			seen[pathStr] = struct{}{}

			hit := true
			p, err := c.pathCache.GetOrCompute(pathStr, func() (extract.Path, error) {
				hit = false
				return extract.Parse(pathStr)
			})
			if err != nil {
				return nil, fmt.Errorf("discovered path %q: %w", pathStr, err)
			}
			if c.metrics != nil {
				if hit {
					c.metrics.RecordCacheHit()
				} else {
					c.metrics.RecordCacheMiss()
				}
			}

			cols = append(cols, design.CompiledColumn{
				Name: strings.ReplaceAll(pathStr, "/", "."),
				Path: p,
			})
		}
	}
	return cols, nil
}

// dropEmptyColumns removes columns whose every cell is empty.
func dropEmptyColumns(t *table.Table) *table.Table {
	var empty []string
	for _, name := range t.Columns() {
		col, _ := t.Column(name)
		allEmpty := true
		for _, cell := range col {
			if cell != "" {
				allEmpty = false
				break
			}
		}
		if allEmpty {
			empty = append(empty, name)
		}
	}
	if len(empty) == 0 {
		return t
	}
	return t.DropColumns(empty...)
}
