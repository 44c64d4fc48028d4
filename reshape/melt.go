package reshape

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	ft "github.com/gofhir/tabulate"
	"github.com/gofhir/tabulate/design"
	"github.com/gofhir/tabulate/pool"
	"github.com/gofhir/tabulate/table"
)

// DefaultIDColumn is the name of the column Melt adds to record which
// input row each output row came from.
const DefaultIDColumn = "resource_identifier"

// MeltOption configures a melt.
type MeltOption func(*meltConfig)

type meltConfig struct {
	idColumn string
	keepAll  bool
}

// WithIDColumn renames the added provenance column.
func WithIDColumn(name string) MeltOption {
	return func(c *meltConfig) {
		if name != "" {
			c.idColumn = name
		}
	}
}

// WithKeepAll copies the non-melted columns verbatim into every
// derived row instead of dropping them.
func WithKeepAll(keep bool) MeltOption {
	return func(c *meltConfig) {
		c.keepAll = keep
	}
}

// Melt explodes indexed multi-valued cells into long format: for each
// input row, every distinct first-level index across the selected
// columns becomes one output row. A fragment whose trail starts with
// that index lands in the output cell with its leading index level
// stripped and any deeper nesting preserved.
//
// Rows with no index in any selected column carry no multiplicity and
// contribute zero output rows. When the whole table produces nothing a
// no-rows warning is reported alongside the empty result.
func Melt(t *table.Table, columns []string, style design.Style, opts ...MeltOption) (*table.Table, []ft.Issue, error) {
	if t == nil {
		return nil, nil, fmt.Errorf("reshape: table is nil")
	}
	if len(columns) == 0 {
		return nil, nil, fmt.Errorf("reshape: no columns selected for melt")
	}
	if err := style.Validate(); err != nil {
		return nil, nil, err
	}

	cfg := &meltConfig{idColumn: DefaultIDColumn}
	for _, opt := range opts {
		opt(cfg)
	}

	selected := make(map[string]struct{}, len(columns))
	for _, name := range columns {
		if !t.HasColumn(name) {
			return nil, nil, fmt.Errorf("reshape: table %q has no column %q", t.Name, name)
		}
		selected[name] = struct{}{}
	}
	if t.HasColumn(cfg.idColumn) {
		return nil, nil, fmt.Errorf("reshape: id column %q collides with an existing column", cfg.idColumn)
	}

	re, err := markerRegexp(style.Brackets)
	if err != nil {
		return nil, nil, err
	}

	// Output keeps the input column order; dropped columns simply
	// disappear, and the provenance column goes last.
	var outCols []string
	for _, name := range t.Columns() {
		if _, ok := selected[name]; ok || cfg.keepAll {
			outCols = append(outCols, name)
		}
	}
	outCols = append(outCols, cfg.idColumn)
	out := table.New(t.Name, outCols)

	for rowIdx := 0; rowIdx < t.NumRows(); rowIdx++ {
		frags := make(map[string][]fragment, len(selected))
		for name := range selected {
			cell, _ := t.Cell(rowIdx, name)
			frags[name] = parseFragments(cell, style.Sep, style.Brackets, re)
		}

		for _, k := range firstLevelIndices(frags) {
			// AppendRow copies, so the row buffer can be pooled.
			rowBuf := pool.AcquireStringSlice()
			row := *rowBuf
			for _, name := range outCols[:len(outCols)-1] {
				if _, ok := selected[name]; !ok {
					cell, _ := t.Cell(rowIdx, name)
					row = append(row, cell)
					continue
				}
				row = append(row, meltCell(frags[name], k, style))
			}
			row = append(row, strconv.Itoa(rowIdx+1))
			err := out.AppendRow(row)
			*rowBuf = row
			pool.ReleaseStringSlice(rowBuf)
			if err != nil {
				return nil, nil, err
			}
		}
	}

	var issues []ft.Issue
	if out.NumRows() == 0 {
		issues = append(issues, ft.Warning(ft.IssueTypeNoRows).
			Diagnostics(fmt.Sprintf("melt of %v produced no rows; the selected columns carry no indexed values", columns)).
			At(t.Name).
			Build())
	}
	return out, issues, nil
}

// firstLevelIndices returns the distinct leading trail components
// across all fragments of a row, ascending.
func firstLevelIndices(frags map[string][]fragment) []int {
	set := make(map[int]struct{})
	for _, fs := range frags {
		for _, f := range fs {
			if len(f.trail) > 0 {
				set[f.trail[0]] = struct{}{}
			}
		}
	}
	indices := make([]int, 0, len(set))
	for k := range set {
		indices = append(indices, k)
	}
	sort.Ints(indices)
	return indices
}

// meltCell rebuilds one output cell from the fragments whose trail
// starts with index k, stripping that leading level.
func meltCell(frags []fragment, k int, style design.Style) string {
	var sb strings.Builder
	for _, f := range frags {
		if len(f.trail) == 0 || f.trail[0] != k {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(style.Sep)
		}
		sb.WriteString(renderFragment(fragment{trail: f.trail[1:], value: f.value}, style.Brackets))
	}
	return sb.String()
}
