package reshape

import (
	"fmt"
	"strings"

	"github.com/gofhir/tabulate/table"
)

// ColumnsByPrefix returns, in table order, every column whose name
// equals prefix or starts with prefix followed by the hierarchy
// separator ".". It fails when nothing matches, which usually means a
// typo in the prefix.
func ColumnsByPrefix(t *table.Table, prefix string) ([]string, error) {
	if t == nil {
		return nil, fmt.Errorf("reshape: table is nil")
	}
	if prefix == "" {
		return nil, fmt.Errorf("reshape: prefix is empty")
	}

	var matched []string
	for _, name := range t.Columns() {
		if name == prefix || strings.HasPrefix(name, prefix+".") {
			matched = append(matched, name)
		}
	}
	if len(matched) == 0 {
		return nil, fmt.Errorf("reshape: no column matches prefix %q", prefix)
	}
	return matched, nil
}
