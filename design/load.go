package design

import (
	"encoding/json"
	"fmt"
	"io"

	ft "github.com/gofhir/tabulate"
)

// fileDesign mirrors the JSON design config accepted by the CLI.
type fileDesign struct {
	Tables []fileTable `json:"tables"`
}

type fileTable struct {
	Name               string   `json:"name"`
	Resource           string   `json:"resource"`
	Columns            []Column `json:"columns,omitempty"`
	Sep                string   `json:"sep,omitempty"`
	Brackets           []string `json:"brackets,omitempty"`
	RemoveEmptyColumns bool     `json:"removeEmptyColumns,omitempty"`
	Version            string   `json:"version,omitempty"`
}

// ReadDesign parses a JSON design config:
//
//	{
//	  "tables": [
//	    {
//	      "name": "patients",
//	      "resource": "Patient",
//	      "columns": [
//	        {"name": "given", "path": "name/given"},
//	        {"name": "family", "path": "name/family"}
//	      ],
//	      "sep": " ",
//	      "brackets": ["[", "]"]
//	    }
//	  ]
//	}
//
// Omitting "columns" requests auto-discovery for that table. Style
// fields default to DefaultStyle.
func ReadDesign(r io.Reader) (*Design, error) {
	var f fileDesign
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("design config: %w", err)
	}
	if len(f.Tables) == 0 {
		return nil, fmt.Errorf("design config: no tables")
	}

	entries := make([]Entry, 0, len(f.Tables))
	for _, t := range f.Tables {
		var opts []Option
		if t.Sep != "" {
			opts = append(opts, WithSep(t.Sep))
		}
		switch len(t.Brackets) {
		case 0:
		case 2:
			opts = append(opts, WithBrackets(t.Brackets[0], t.Brackets[1]))
		default:
			return nil, fmt.Errorf("design config: table %q: brackets needs exactly [open, close]", t.Name)
		}
		if t.RemoveEmptyColumns {
			opts = append(opts, WithRemoveEmptyColumns(true))
		}
		if t.Version != "" {
			v := ft.FHIRVersion(t.Version)
			if !v.IsValid() {
				return nil, fmt.Errorf("design config: table %q: unsupported version %q", t.Name, t.Version)
			}
			opts = append(opts, WithVersion(v))
		}

		desc, err := NewTableDescription(t.Resource, t.Columns, opts...)
		if err != nil {
			return nil, fmt.Errorf("design config: table %q: %w", t.Name, err)
		}
		name := t.Name
		if name == "" {
			name = desc.Resource()
		}
		entries = append(entries, Entry{Name: name, Description: desc})
	}

	return NewDesign(entries...)
}
