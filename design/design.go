package design

import "fmt"

// Entry pairs an output table name with its description.
type Entry struct {
	Name        string
	Description *TableDescription
}

// Design is an ordered mapping from output-table name to table
// description. One result table is produced per entry.
type Design struct {
	entries []Entry
	byName  map[string]*TableDescription
}

// NewDesign builds a design from entries, enforcing unique non-empty
// table names.
func NewDesign(entries ...Entry) (*Design, error) {
	d := &Design{byName: make(map[string]*TableDescription, len(entries))}

	for _, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("design entry has no name")
		}
		if e.Description == nil {
			return nil, fmt.Errorf("design entry %q has no description", e.Name)
		}
		if _, dup := d.byName[e.Name]; dup {
			return nil, fmt.Errorf("duplicate design entry name %q", e.Name)
		}
		d.byName[e.Name] = e.Description
		d.entries = append(d.entries, e)
	}

	return d, nil
}

// Entries returns the design entries in declaration order.
func (d *Design) Entries() []Entry {
	out := make([]Entry, len(d.entries))
	copy(out, d.entries)
	return out
}

// Get returns the description for a table name, or nil.
func (d *Design) Get(name string) *TableDescription {
	return d.byName[name]
}

// Len returns the number of design entries.
func (d *Design) Len() int {
	return len(d.entries)
}
