package stream

import (
	"context"
	"strings"
	"testing"

	"github.com/gofhir/tabulate/design"
)

const searchsetJSON = `{
  "resourceType": "Bundle",
  "type": "searchset",
  "total": 3,
  "entry": [
    {
      "fullUrl": "urn:uuid:p1",
      "resource": {
        "resourceType": "Patient",
        "id": "p1",
        "name": [{"given": ["Anna", "Maria"], "family": "Smith"}],
        "gender": "female"
      }
    },
    {
      "fullUrl": "urn:uuid:o1",
      "resource": {"resourceType": "Observation", "id": "o1", "status": "final"}
    },
    {
      "fullUrl": "urn:uuid:p2",
      "resource": {
        "resourceType": "Patient",
        "id": "p2",
        "name": [{"given": ["John"], "family": "Doe"}],
        "gender": "male"
      }
    }
  ]
}`

func patientCracker(t *testing.T) *RowCracker {
	t.Helper()
	desc, err := design.NewTableDescription("Patient", []design.Column{
		{Name: "given", Path: "name/given"},
		{Name: "family", Path: "name/family"},
	})
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewRowCracker(desc)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func drain(t *testing.T, ch <-chan *RowResult) []*RowResult {
	t.Helper()
	var out []*RowResult
	for r := range ch {
		out = append(out, r)
	}
	return out
}

func TestRowCracker_Stream(t *testing.T) {
	s := patientCracker(t)
	results := drain(t, s.Stream(context.Background(), strings.NewReader(searchsetJSON)))

	if len(results) != 2 {
		t.Fatalf("got %d results; want 2 (observation entry skipped)", len(results))
	}

	first := results[0]
	if first.Err != nil {
		t.Fatalf("results[0].Err = %v", first.Err)
	}
	if first.Index != 0 || first.ResourceType != "Patient" || first.ResourceID != "p1" {
		t.Errorf("results[0] = %+v; want entry 0, Patient p1", first)
	}
	if first.FullURL != "urn:uuid:p1" {
		t.Errorf("FullURL = %q; want urn:uuid:p1", first.FullURL)
	}
	if first.Row[0] != "[1]Anna [2]Maria" || first.Row[1] != "Smith" {
		t.Errorf("Row = %v; want indexed given and bare family", first.Row)
	}

	second := results[1]
	if second.Index != 2 || second.Row[0] != "John" {
		t.Errorf("results[1] = %+v; want entry 2, John", second)
	}
}

func TestRowCracker_Collect(t *testing.T) {
	s := patientCracker(t)
	tbl, errs := Collect("patients", s, s.Stream(context.Background(), strings.NewReader(searchsetJSON)))

	if len(errs) != 0 {
		t.Fatalf("errs = %v; want none", errs)
	}
	if tbl.NumRows() != 2 {
		t.Fatalf("NumRows() = %d; want 2", tbl.NumRows())
	}
	if v, _ := tbl.Cell(1, "family"); v != "Doe" {
		t.Errorf("Cell(1, family) = %q; want Doe", v)
	}
	cols := tbl.Columns()
	if len(cols) != 2 || cols[0] != "given" || cols[1] != "family" {
		t.Errorf("Columns() = %v; want [given family]", cols)
	}
}

func TestRowCracker_ParallelPreservesOrder(t *testing.T) {
	s := patientCracker(t).WithWorkerCount(4)

	seq := drain(t, s.Stream(context.Background(), strings.NewReader(searchsetJSON)))
	par := drain(t, s.StreamParallel(context.Background(), strings.NewReader(searchsetJSON)))

	if len(par) != len(seq) {
		t.Fatalf("parallel emitted %d results; want %d", len(par), len(seq))
	}
	for i := range seq {
		if par[i].Index != seq[i].Index {
			t.Errorf("result %d: parallel index %d; want %d", i, par[i].Index, seq[i].Index)
		}
		if par[i].Row[0] != seq[i].Row[0] {
			t.Errorf("result %d: parallel row %v; want %v", i, par[i].Row, seq[i].Row)
		}
	}
}

func TestRowCracker_MalformedBundle(t *testing.T) {
	s := patientCracker(t)
	results := drain(t, s.Stream(context.Background(), strings.NewReader(`["not a bundle"]`)))

	if len(results) != 1 || results[0].Index != -1 || results[0].Err == nil {
		t.Errorf("results = %+v; want a single bundle-level error", results)
	}
}

func TestRowCracker_EmptyBundle(t *testing.T) {
	s := patientCracker(t)
	results := drain(t, s.Stream(context.Background(), strings.NewReader(`{"resourceType":"Bundle","type":"searchset"}`)))

	if len(results) != 0 {
		t.Errorf("results = %+v; want none for a bundle without entries", results)
	}
}

func TestRowCracker_EntryWithoutResource(t *testing.T) {
	const doc = `{"entry": [{"fullUrl": "urn:uuid:gone"}]}`
	s := patientCracker(t)
	results := drain(t, s.Stream(context.Background(), strings.NewReader(doc)))

	if len(results) != 0 {
		t.Errorf("results = %+v; want resource-less entry skipped", results)
	}
}

func TestNewRowCracker_RejectsAutoColumns(t *testing.T) {
	desc, err := design.NewTableDescription("Patient", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewRowCracker(desc); err == nil {
		t.Error("auto-discovery description should be rejected")
	}
	if _, err := NewRowCracker(nil); err == nil {
		t.Error("nil description should be rejected")
	}
}

func TestRowCracker_StreamNDJSON(t *testing.T) {
	const ndjson = `{"resourceType":"Patient","id":"p1","name":[{"given":["Anna","Maria"],"family":"Smith"}]}

{"resourceType":"Observation","id":"o1","status":"final"}
{"resourceType":"Patient","id":"p2","name":[{"given":["John"],"family":"Doe"}]}
`

	s := patientCracker(t)
	results := drain(t, s.StreamNDJSON(context.Background(), strings.NewReader(ndjson)))

	if len(results) != 2 {
		t.Fatalf("got %d results; want 2", len(results))
	}
	if results[0].ResourceID != "p1" || results[0].Row[0] != "[1]Anna [2]Maria" {
		t.Errorf("results[0] = %+v; want p1 with indexed givens", results[0])
	}
	// Blank line skipped: observation is line index 1, p2 is 2.
	if results[1].Index != 2 || results[1].Row[1] != "Doe" {
		t.Errorf("results[1] = %+v; want entry 2, Doe", results[1])
	}
}

func TestRowCracker_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := patientCracker(t)
	results := drain(t, s.Stream(ctx, strings.NewReader(searchsetJSON)))

	for _, r := range results {
		if r.Err != nil {
			return // cancellation surfaced
		}
	}
	// A tiny bundle may complete before the cancellation check; either
	// outcome is fine as long as the channel closed.
}
