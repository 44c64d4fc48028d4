package extract

import (
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantSteps []string
		wantAttr  string
	}{
		{name: "single step", input: "gender", wantSteps: []string{"gender"}},
		{name: "nested", input: "name/given", wantSteps: []string{"name", "given"}},
		{name: "leading dot slash", input: "./name/family", wantSteps: []string{"name", "family"}},
		{name: "trailing slash", input: "name/given/", wantSteps: []string{"name", "given"}},
		{name: "attribute selector", input: "meta/tag/@display", wantSteps: []string{"meta", "tag"}, wantAttr: "display"},
		{name: "value attribute", input: "birthDate/@value", wantSteps: []string{"birthDate"}, wantAttr: "value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.input, err)
			}
			if len(p.Steps) != len(tt.wantSteps) {
				t.Fatalf("Steps = %v; want %v", p.Steps, tt.wantSteps)
			}
			for i := range tt.wantSteps {
				if p.Steps[i] != tt.wantSteps[i] {
					t.Errorf("Steps[%d] = %q; want %q", i, p.Steps[i], tt.wantSteps[i])
				}
			}
			if p.Attr != tt.wantAttr {
				t.Errorf("Attr = %q; want %q", p.Attr, tt.wantAttr)
			}
			if p.String() != tt.input {
				t.Errorf("String() = %q; want %q", p.String(), tt.input)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "only slashes", input: "//"},
		{name: "empty step", input: "name//given"},
		{name: "attr not final", input: "name/@use/given"},
		{name: "bare attribute", input: "@value"},
		{name: "invalid chars", input: "name/giv*en"},
		{name: "leading digit", input: "name/1given"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.input); err == nil {
				t.Errorf("Parse(%q) should fail", tt.input)
			} else if !strings.Contains(err.Error(), "parse path") {
				t.Errorf("Parse(%q) error = %v; want descriptive parse error", tt.input, err)
			}
		})
	}
}

func TestMustParse_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParse should panic on invalid path")
		}
	}()
	MustParse("@broken")
}
