package crack

import (
	"context"
	"fmt"
	"strings"
	"testing"

	ft "github.com/gofhir/tabulate"
	"github.com/gofhir/tabulate/design"
	"github.com/gofhir/tabulate/reshape"
	"github.com/gofhir/tabulate/tree"
)

// End-to-end flows: crack a bundle, then reshape the result the way a
// pipeline caller would.

func TestIntegration_CrackMeltFlow(t *testing.T) {
	bundles := bundlesFromXML(t, patientBundleXML)
	desc := patientDescription(t)

	c, err := New()
	if err != nil {
		t.Fatal(err)
	}
	tbl, _, err := c.CrackTable(context.Background(), bundles, desc, "patients")
	if err != nil {
		t.Fatal(err)
	}

	cols, err := reshape.ColumnsByPrefix(tbl, "given")
	if err != nil {
		t.Fatal(err)
	}
	melted, issues, err := reshape.Melt(tbl, cols, desc.Style())
	if err != nil {
		t.Fatal(err)
	}
	if len(issues) != 0 {
		t.Errorf("issues = %v; want none", issues)
	}

	// Patient 1 has two givens, patient 2 has none indexed: two rows,
	// both from row 1.
	if melted.NumRows() != 2 {
		t.Fatalf("melted rows = %d; want 2", melted.NumRows())
	}
	for i, want := range []string{"Anna", "Maria"} {
		if v, _ := melted.Cell(i, "given"); v != want {
			t.Errorf("Cell(%d, given) = %q; want %q", i, v, want)
		}
		if id, _ := melted.Cell(i, reshape.DefaultIDColumn); id != "1" {
			t.Errorf("Cell(%d, id) = %q; want 1", i, id)
		}
	}
}

func TestIntegration_RemoveIndicesEqualsCollapsedConcat(t *testing.T) {
	bundles := bundlesFromXML(t, patientBundleXML)
	c, _ := New()

	tbl, _, err := c.CrackTable(context.Background(), bundles, patientDescription(t), "patients")
	if err != nil {
		t.Fatal(err)
	}

	clean, _, err := reshape.RemoveIndices(tbl, design.DefaultStyle().Brackets)
	if err != nil {
		t.Fatal(err)
	}

	// Stripping the markers leaves exactly the separator-joined values.
	if v, _ := clean.Cell(0, "given"); v != "Anna Maria" {
		t.Errorf("Cell(0, given) = %q; want %q", v, "Anna Maria")
	}
	if v, _ := clean.Cell(0, "family"); v != "Smith" {
		t.Errorf("Cell(0, family) = %q; want Smith", v)
	}

	// And doing it again changes nothing.
	again, _, err := reshape.RemoveIndices(clean, design.DefaultStyle().Brackets)
	if err != nil {
		t.Fatal(err)
	}
	if !clean.Equal(again) {
		t.Error("remove-indices should be idempotent on its own output")
	}
}

func TestIntegration_JSONAndXMLCrackIdentically(t *testing.T) {
	const patientJSON = `{
	  "resourceType": "Bundle",
	  "entry": [
	    {"resource": {"resourceType": "Patient", "id": "p1",
	      "name": [{"given": ["Anna", "Maria"], "family": "Smith"}],
	      "gender": "female"}},
	    {"resource": {"resourceType": "Patient", "id": "p2",
	      "name": [{"given": ["John"], "family": "Doe"}],
	      "gender": "male"}}
	  ]
	}`

	jb, err := tree.ReadBundleJSON(strings.NewReader(patientJSON))
	if err != nil {
		t.Fatal(err)
	}
	xb := bundlesFromXML(t, patientBundleXML)

	c, _ := New()
	fromJSON, _, err := c.CrackTable(context.Background(), tree.Bundles{jb}, patientDescription(t), "patients")
	if err != nil {
		t.Fatal(err)
	}
	fromXML, _, err := c.CrackTable(context.Background(), xb, patientDescription(t), "patients")
	if err != nil {
		t.Fatal(err)
	}

	if !fromJSON.Equal(fromXML) {
		t.Error("the same bundle in JSON and XML must crack to the same table")
	}
}

func syntheticBundle(patients int) string {
	var sb strings.Builder
	sb.WriteString("<Bundle>")
	for i := 0; i < patients; i++ {
		fmt.Fprintf(&sb, `<entry><resource><Patient>
  <id value="p%d"/>
  <name><given value="Given%d"/><given value="Middle%d"/><family value="Family%d"/></name>
  <gender value="female"/>
</Patient></resource></entry>`, i, i, i, i)
	}
	sb.WriteString("</Bundle>")
	return sb.String()
}

func benchBundles(b *testing.B, patients int) tree.Bundles {
	b.Helper()
	bundle, err := tree.ReadBundleXML(strings.NewReader(syntheticBundle(patients)))
	if err != nil {
		b.Fatal(err)
	}
	return tree.Bundles{bundle}
}

func benchDescription(b *testing.B) *design.TableDescription {
	b.Helper()
	desc, err := design.NewTableDescription("Patient", []design.Column{
		{Name: "id", Path: "id"},
		{Name: "given", Path: "name/given"},
		{Name: "family", Path: "name/family"},
		{Name: "gender", Path: "gender"},
	})
	if err != nil {
		b.Fatal(err)
	}
	return desc
}

func BenchmarkCrackTable(b *testing.B) {
	for _, size := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("patients-%d", size), func(b *testing.B) {
			bundles := benchBundles(b, size)
			desc := benchDescription(b)
			c, err := New(ft.WithMetrics(false))
			if err != nil {
				b.Fatal(err)
			}

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, _, err := c.CrackTable(context.Background(), bundles, desc, "patients"); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkCrackTable_NoPooling(b *testing.B) {
	bundles := benchBundles(b, 100)
	desc := benchDescription(b)
	c, err := New(ft.WithMetrics(false), ft.WithPooling(false))
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := c.CrackTable(context.Background(), bundles, desc, "patients"); err != nil {
			b.Fatal(err)
		}
	}
}
