package reshape

import (
	"fmt"

	ft "github.com/gofhir/tabulate"
	"github.com/gofhir/tabulate/design"
	"github.com/gofhir/tabulate/table"
)

// RemoveIndices strips every bracketed index marker from the given
// columns, leaving only the separator-joined values. With no columns
// named, every column is processed.
//
// When the selected columns contain no marker at all the table comes
// back unchanged with a no-indices warning: the usual cause is a
// bracket pair that does not match the one used at crack time.
func RemoveIndices(t *table.Table, brackets design.Brackets, columns ...string) (*table.Table, []ft.Issue, error) {
	if t == nil {
		return nil, nil, fmt.Errorf("reshape: table is nil")
	}

	re, err := markerRegexp(brackets)
	if err != nil {
		return nil, nil, err
	}

	if len(columns) == 0 {
		columns = t.Columns()
	} else {
		for _, name := range columns {
			if !t.HasColumn(name) {
				return nil, nil, fmt.Errorf("reshape: table %q has no column %q", t.Name, name)
			}
		}
	}
	selected := make(map[string]struct{}, len(columns))
	for _, name := range columns {
		selected[name] = struct{}{}
	}

	out := table.New(t.Name, t.Columns())
	names := t.Columns()
	stripped := 0

	for rowIdx := 0; rowIdx < t.NumRows(); rowIdx++ {
		row := make([]string, len(names))
		for i, name := range names {
			cell, _ := t.Cell(rowIdx, name)
			if _, ok := selected[name]; ok {
				clean := re.ReplaceAllString(cell, "")
				if clean != cell {
					stripped++
				}
				cell = clean
			}
			row[i] = cell
		}
		if err := out.AppendRow(row); err != nil {
			return nil, nil, err
		}
	}

	var issues []ft.Issue
	if stripped == 0 {
		issues = append(issues, ft.Warning(ft.IssueTypeNoIndices).
			Diagnostics(fmt.Sprintf("no %s...%s index markers found in the selected columns; check the bracket configuration", brackets.Open, brackets.Close)).
			At(t.Name).
			Build())
	}
	return out, issues, nil
}
