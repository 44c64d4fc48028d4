package tree

import (
	"strings"
	"testing"
)

const patientXML = `<Patient xmlns="http://hl7.org/fhir">
  <id value="p1"/>
  <name>
    <given value="Anna"/>
    <given value="Maria"/>
    <family value="Smith"/>
  </name>
  <gender value="female"/>
</Patient>`

const bundleXML = `<Bundle xmlns="http://hl7.org/fhir">
  <type value="searchset"/>
  <entry>
    <resource>
      <Patient><id value="p1"/></Patient>
    </resource>
  </entry>
  <entry>
    <resource>
      <Observation><id value="o1"/></Observation>
    </resource>
  </entry>
  <entry>
    <resource>
      <Patient><id value="p2"/></Patient>
    </resource>
  </entry>
</Bundle>`

func TestDecodeXML(t *testing.T) {
	root, err := DecodeXML(strings.NewReader(patientXML))
	if err != nil {
		t.Fatalf("DecodeXML() error = %v", err)
	}

	if root.Name != "Patient" {
		t.Errorf("root.Name = %q; want %q", root.Name, "Patient")
	}
	if got := len(root.Children); got != 3 {
		t.Fatalf("len(root.Children) = %d; want 3", got)
	}

	// value attributes are hoisted into Text
	id := root.Child("id")
	if id == nil || id.Text != "p1" {
		t.Errorf("id.Text = %v; want %q", id, "p1")
	}
	// and stay addressable as attributes
	if v, ok := id.Attr("value"); !ok || v != "p1" {
		t.Errorf(`id.Attr("value") = %q, %v; want "p1", true`, v, ok)
	}

	name := root.Child("name")
	if name == nil {
		t.Fatal("missing name element")
	}
	givens := name.ChildrenNamed("given")
	if len(givens) != 2 {
		t.Fatalf("len(givens) = %d; want 2", len(givens))
	}
	if givens[0].Text != "Anna" || givens[1].Text != "Maria" {
		t.Errorf("givens = %q, %q; want Anna, Maria", givens[0].Text, givens[1].Text)
	}
}

func TestDecodeXML_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "unclosed", input: "<Patient><id value='x'>"},
		{name: "garbage", input: "{not xml}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeXML(strings.NewReader(tt.input)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestReadBundleXML(t *testing.T) {
	b, err := ReadBundleXML(strings.NewReader(bundleXML))
	if err != nil {
		t.Fatalf("ReadBundleXML() error = %v", err)
	}
	if len(b.Resources) != 3 {
		t.Fatalf("len(Resources) = %d; want 3", len(b.Resources))
	}
	wantTypes := []string{"Patient", "Observation", "Patient"}
	for i, want := range wantTypes {
		if b.Resources[i].Name != want {
			t.Errorf("Resources[%d].Name = %q; want %q", i, b.Resources[i].Name, want)
		}
	}
}

func TestNewBundle_SingleResource(t *testing.T) {
	root, err := DecodeXML(strings.NewReader(patientXML))
	if err != nil {
		t.Fatal(err)
	}
	b := NewBundle(root)
	if len(b.Resources) != 1 || b.Resources[0].Name != "Patient" {
		t.Errorf("single-resource bundle = %+v; want one Patient", b.Resources)
	}
}

const patientJSON = `{
  "resourceType": "Patient",
  "id": "p1",
  "name": [{"given": ["Anna", "Maria"], "family": "Smith"}],
  "active": true,
  "multipleBirthInteger": 2
}`

const bundleJSON = `{
  "resourceType": "Bundle",
  "type": "searchset",
  "entry": [
    {"resource": {"resourceType": "Patient", "id": "p1"}},
    {"resource": {"resourceType": "Patient", "id": "p2"}}
  ]
}`

func TestDecodeJSON(t *testing.T) {
	root, err := DecodeJSON(strings.NewReader(patientJSON))
	if err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}

	if root.Name != "Patient" {
		t.Errorf("root.Name = %q; want %q", root.Name, "Patient")
	}

	name := root.Child("name")
	if name == nil {
		t.Fatal("missing name element")
	}
	givens := name.ChildrenNamed("given")
	if len(givens) != 2 || givens[0].Text != "Anna" || givens[1].Text != "Maria" {
		t.Errorf("givens = %+v; want Anna, Maria", givens)
	}
	if fam := name.Child("family"); fam == nil || fam.Text != "Smith" {
		t.Errorf("family = %+v; want Smith", fam)
	}

	// scalars keep their textual form
	if active := root.Child("active"); active == nil || active.Text != "true" {
		t.Errorf("active = %+v; want text %q", active, "true")
	}
	if mb := root.Child("multipleBirthInteger"); mb == nil || mb.Text != "2" {
		t.Errorf("multipleBirthInteger = %+v; want text %q", mb, "2")
	}
}

func TestDecodeJSON_FieldOrder(t *testing.T) {
	root, err := DecodeJSON(strings.NewReader(`{"resourceType":"Patient","b":"1","a":"2","c":"3"}`))
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, c := range root.Children {
		got = append(got, c.Name)
	}
	want := []string{"b", "a", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("child order = %v; want %v", got, want)
		}
	}
}

func TestReadBundleJSON(t *testing.T) {
	b, err := ReadBundleJSON(strings.NewReader(bundleJSON))
	if err != nil {
		t.Fatalf("ReadBundleJSON() error = %v", err)
	}
	if len(b.Resources) != 2 {
		t.Fatalf("len(Resources) = %d; want 2", len(b.Resources))
	}
	if id := b.Resources[1].Child("id"); id == nil || id.Text != "p2" {
		t.Errorf("second resource id = %+v; want p2", id)
	}
}

func TestFHIRJSON_RoundTrip(t *testing.T) {
	root, err := DecodeJSON(strings.NewReader(patientJSON))
	if err != nil {
		t.Fatal(err)
	}
	raw, err := root.FHIRJSON()
	if err != nil {
		t.Fatalf("FHIRJSON() error = %v", err)
	}
	// Decoded-from-JSON resources hand back their original bytes.
	if !strings.Contains(string(raw), `"resourceType": "Patient"`) {
		t.Errorf("FHIRJSON() = %s; want original document", raw)
	}
}

func TestFHIRJSON_FromXML(t *testing.T) {
	root, err := DecodeXML(strings.NewReader(patientXML))
	if err != nil {
		t.Fatal(err)
	}
	raw, err := root.FHIRJSON()
	if err != nil {
		t.Fatalf("FHIRJSON() error = %v", err)
	}
	s := string(raw)
	for _, want := range []string{`"resourceType":"Patient"`, `"given":["Anna","Maria"]`, `"gender":"female"`} {
		if !strings.Contains(s, want) {
			t.Errorf("FHIRJSON() = %s; missing %s", s, want)
		}
	}
}

func TestBundles_ResourcesOfType(t *testing.T) {
	b1, err := ReadBundleXML(strings.NewReader(bundleXML))
	if err != nil {
		t.Fatal(err)
	}
	b2, err := ReadBundleJSON(strings.NewReader(bundleJSON))
	if err != nil {
		t.Fatal(err)
	}

	bs := Bundles{b1, b2}
	patients := bs.ResourcesOfType("Patient")
	if len(patients) != 4 {
		t.Fatalf("len(patients) = %d; want 4", len(patients))
	}
	// bundle order, then document order
	wantIDs := []string{"p1", "p2", "p1", "p2"}
	for i, want := range wantIDs {
		if id := patients[i].Child("id"); id == nil || id.Text != want {
			t.Errorf("patients[%d] id = %+v; want %s", i, id, want)
		}
	}

	if got := bs.ResourcesOfType("Hospital"); len(got) != 0 {
		t.Errorf("ResourcesOfType(Hospital) = %d resources; want 0", len(got))
	}
	if bs.Len() != 5 {
		t.Errorf("Len() = %d; want 5", bs.Len())
	}
}
