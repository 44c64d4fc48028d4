package crack

import (
	ft "github.com/gofhir/tabulate"
	"github.com/gofhir/tabulate/table"
)

// Result holds one table per design entry, in design order, plus all
// advisory issues collected while cracking.
type Result struct {
	names  []string
	tables map[string]*table.Table

	// Issues are advisory conditions: unknown or absent resource types,
	// filtered resources, and similar. Never fatal.
	Issues []ft.Issue
}

func newResult() *Result {
	return &Result{tables: make(map[string]*table.Table)}
}

func (r *Result) add(name string, t *table.Table, issues []ft.Issue) {
	r.names = append(r.names, name)
	r.tables[name] = t
	r.Issues = append(r.Issues, issues...)
}

// Names returns the table names in design order.
func (r *Result) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Get returns the table with the given name, or nil.
func (r *Result) Get(name string) *table.Table {
	return r.tables[name]
}

// Tables returns all tables in design order.
func (r *Result) Tables() []*table.Table {
	out := make([]*table.Table, 0, len(r.names))
	for _, n := range r.names {
		out = append(out, r.tables[n])
	}
	return out
}

// Len returns the number of tables.
func (r *Result) Len() int {
	return len(r.names)
}
