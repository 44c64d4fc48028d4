package crack

import (
	"fmt"

	"github.com/gofhir/fhirpath"
	"github.com/gofhir/fhirpath/types"

	"github.com/gofhir/tabulate/tree"
)

// resourceFilter evaluates a FHIRPath expression against resources to
// decide whether they take part in cracking.
type resourceFilter struct {
	expr     string
	compiled *fhirpath.Expression
}

// newResourceFilter compiles the expression eagerly so that a bad
// filter fails at engine construction, not mid-crack.
func newResourceFilter(expr string) (*resourceFilter, error) {
	compiled, err := fhirpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", expr, err)
	}
	return &resourceFilter{expr: expr, compiled: compiled}, nil
}

// keep evaluates the filter for one resource using FHIRPath truthiness:
// an empty collection is false, a single boolean is its value, and any
// other non-empty collection is true.
func (f *resourceFilter) keep(resource *tree.Element) (bool, error) {
	raw, err := resource.FHIRJSON()
	if err != nil {
		return false, fmt.Errorf("filter %q: encode resource: %w", f.expr, err)
	}

	result, err := f.compiled.Evaluate(raw)
	if err != nil {
		return false, fmt.Errorf("filter %q: %w", f.expr, err)
	}

	return truthy(result), nil
}

func truthy(result types.Collection) bool {
	if len(result) == 0 {
		return false
	}
	if len(result) == 1 {
		if b, ok := result[0].(types.Boolean); ok {
			return b.Bool()
		}
	}
	return true
}
