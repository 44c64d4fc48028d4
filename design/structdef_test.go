package design

import (
	"testing"

	"github.com/gofhir/fhir/r4"
)

func strp(s string) *string { return &s }

func TestFromStructureDefinition(t *testing.T) {
	sd := &r4.StructureDefinition{
		Url:  strp("http://hl7.org/fhir/StructureDefinition/Patient"),
		Name: strp("Patient"),
		Type: strp("Patient"),
		Snapshot: &r4.StructureDefinitionSnapshot{
			Element: []r4.ElementDefinition{
				{Path: strp("Patient")},
				{Path: strp("Patient.id")},
				{Path: strp("Patient.name")},
				{Path: strp("Patient.name.given")},
				{Path: strp("Patient.name.family")},
				{Path: strp("Patient.deceased[x]")},
				{Path: strp("Patient.animal"), Max: strp("0")},
				{Path: strp("Patient.gender")},
			},
		},
	}

	td, err := FromStructureDefinition(sd)
	if err != nil {
		t.Fatalf("FromStructureDefinition() error = %v", err)
	}

	if td.Resource() != "Patient" {
		t.Errorf("Resource() = %q; want Patient", td.Resource())
	}

	var names []string
	for _, c := range td.Columns() {
		names = append(names, c.Name)
	}
	want := []string{"id", "name.given", "name.family", "gender"}
	if len(names) != len(want) {
		t.Fatalf("columns = %v; want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("columns[%d] = %q; want %q", i, names[i], want[i])
		}
	}

	// paths are slash-form
	if got := td.Columns()[1].Path.String(); got != "name/given" {
		t.Errorf("path = %q; want name/given", got)
	}
}

func TestFromStructureDefinition_Differential(t *testing.T) {
	sd := &r4.StructureDefinition{
		Type: strp("Observation"),
		Differential: &r4.StructureDefinitionDifferential{
			Element: []r4.ElementDefinition{
				{Path: strp("Observation.status")},
			},
		},
	}

	td, err := FromStructureDefinition(sd)
	if err != nil {
		t.Fatalf("FromStructureDefinition() error = %v", err)
	}
	cols := td.Columns()
	if len(cols) != 1 || cols[0].Name != "status" {
		t.Errorf("columns = %+v; want single status column", cols)
	}
}

func TestFromStructureDefinition_Errors(t *testing.T) {
	if _, err := FromStructureDefinition(nil); err == nil {
		t.Error("nil structure definition should fail")
	}
	if _, err := FromStructureDefinition(&r4.StructureDefinition{Type: strp("Patient")}); err == nil {
		t.Error("structure definition without elements should fail")
	}
}
