package design

import (
	"fmt"
	"strings"

	"github.com/gofhir/fhir/r4"
)

// FromStructureDefinition derives a table description from an R4
// StructureDefinition: one column per leaf element of the snapshot (or
// differential when no snapshot is present), named after the dotted
// element path relative to the resource root.
//
// Choice elements ("value[x]") and elements profiled out with max "0"
// are skipped, as are branch elements that only exist to hold deeper
// leaves.
func FromStructureDefinition(sd *r4.StructureDefinition, opts ...Option) (*TableDescription, error) {
	if sd == nil {
		return nil, fmt.Errorf("structure definition is nil")
	}

	typeName := derefString(sd.Type)
	if typeName == "" {
		typeName = derefString(sd.Name)
	}
	if typeName == "" {
		return nil, fmt.Errorf("structure definition has neither type nor name")
	}

	var elements []r4.ElementDefinition
	switch {
	case sd.Snapshot != nil && len(sd.Snapshot.Element) > 0:
		elements = sd.Snapshot.Element
	case sd.Differential != nil && len(sd.Differential.Element) > 0:
		elements = sd.Differential.Element
	default:
		return nil, fmt.Errorf("structure definition %q has no elements", typeName)
	}

	var relative []string
	for i := range elements {
		ed := &elements[i]

		path := derefString(ed.Path)
		if path == "" || path == typeName {
			continue
		}
		if derefString(ed.Max) == "0" {
			continue
		}
		if strings.Contains(path, "[x]") {
			continue
		}
		if !strings.HasPrefix(path, typeName+".") {
			continue
		}
		relative = append(relative, path[len(typeName)+1:])
	}

	cols := make([]Column, 0, len(relative))
	seen := make(map[string]struct{}, len(relative))
	for _, rel := range relative {
		if isBranch(rel, relative) {
			continue
		}
		if _, dup := seen[rel]; dup {
			continue
		}
		seen[rel] = struct{}{}
		cols = append(cols, Column{
			Name: rel,
			Path: strings.ReplaceAll(rel, ".", "/"),
		})
	}

	if len(cols) == 0 {
		return nil, fmt.Errorf("structure definition %q yields no leaf columns", typeName)
	}

	return NewTableDescription(typeName, cols, opts...)
}

// isBranch reports whether path is a proper prefix of another element
// path, meaning it only holds deeper leaves.
func isBranch(path string, all []string) bool {
	prefix := path + "."
	for _, other := range all {
		if strings.HasPrefix(other, prefix) {
			return true
		}
	}
	return false
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
