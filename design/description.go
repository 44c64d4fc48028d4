package design

import (
	"fmt"
	"regexp"
	"strings"

	ft "github.com/gofhir/tabulate"
	"github.com/gofhir/tabulate/extract"
	"github.com/gofhir/tabulate/vocab"
)

// Column is one requested table column: a unique name and the
// extraction path producing its values.
type Column struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// CompiledColumn is a Column with its path compiled.
type CompiledColumn struct {
	Name string
	Path extract.Path
}

// bareTypeName matches a syntactically valid resource type selector.
var bareTypeName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)

// Option configures TableDescription construction.
type Option func(*config)

type config struct {
	style   Style
	version ft.FHIRVersion
}

// WithStyle sets the whole style at once.
func WithStyle(s Style) Option {
	return func(c *config) {
		c.style = s
	}
}

// WithSep sets the value separator.
func WithSep(sep string) Option {
	return func(c *config) {
		c.style.Sep = sep
	}
}

// WithBrackets sets the index bracket pair.
func WithBrackets(open, close string) Option {
	return func(c *config) {
		c.style.Brackets = Brackets{Open: open, Close: close}
	}
}

// WithRemoveEmptyColumns drops all-empty columns from cracked tables.
func WithRemoveEmptyColumns(remove bool) Option {
	return func(c *config) {
		c.style.RemoveEmptyColumns = remove
	}
}

// WithVersion sets the FHIR version used for vocabulary lookups.
func WithVersion(v ft.FHIRVersion) Option {
	return func(c *config) {
		if v.IsValid() {
			c.version = v
		}
	}
}

// TableDescription describes one target table. Immutable after
// construction; all validation happens in NewTableDescription.
type TableDescription struct {
	resource string
	columns  []CompiledColumn
	style    Style
	issues   []ft.Issue
}

// NewTableDescription builds and validates a table description.
//
// The resource selector must be a bare type name; its case is corrected
// against the known vocabulary and an unknown name produces a warning
// Issue, never an error. An empty column list requests auto-discovery
// of all leaf paths at crack time, with columns named after their path
// ("/" replaced by ".").
func NewTableDescription(resource string, cols []Column, opts ...Option) (*TableDescription, error) {
	cfg := &config{
		style:   DefaultStyle(),
		version: ft.R4,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.style.Validate(); err != nil {
		return nil, err
	}

	resource = strings.TrimSpace(resource)
	if !bareTypeName.MatchString(resource) {
		return nil, fmt.Errorf("resource selector %q is not a bare type name", resource)
	}

	td := &TableDescription{style: cfg.style}

	canonical, known := vocab.Normalize(cfg.version, resource)
	td.resource = canonical
	if !known {
		td.issues = append(td.issues, ft.Warning(ft.IssueTypeUnknownType).
			Diagnostics(fmt.Sprintf("resource type %q is not in the %s vocabulary; extraction proceeds regardless", resource, cfg.version)).
			At(resource).
			Build())
	}

	seen := make(map[string]struct{}, len(cols))
	for _, col := range cols {
		if col.Name == "" {
			return nil, fmt.Errorf("column for path %q has no name", col.Path)
		}
		if _, dup := seen[col.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", col.Name)
		}
		seen[col.Name] = struct{}{}

		p, err := extract.Parse(col.Path)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.Name, err)
		}
		td.columns = append(td.columns, CompiledColumn{Name: col.Name, Path: p})
	}

	return td, nil
}

// Resource returns the (case-corrected) resource type selector.
func (td *TableDescription) Resource() string {
	return td.resource
}

// Columns returns the compiled columns in declaration order.
// An empty result means auto-discovery.
func (td *TableDescription) Columns() []CompiledColumn {
	out := make([]CompiledColumn, len(td.columns))
	copy(out, td.columns)
	return out
}

// AutoColumns reports whether columns are discovered at crack time.
func (td *TableDescription) AutoColumns() bool {
	return len(td.columns) == 0
}

// Style returns the rendering style.
func (td *TableDescription) Style() Style {
	return td.style
}

// Issues returns advisory issues recorded during construction.
func (td *TableDescription) Issues() []ft.Issue {
	out := make([]ft.Issue, len(td.issues))
	copy(out, td.issues)
	return out
}
