// Package vocab provides the known FHIR resource-type vocabulary.
//
// One name list is embedded per supported FHIR version. The vocabulary
// is advisory: lookups support case auto-correction and membership
// checks, but an unknown name is never treated as fatal because the
// FHIR resource list evolves between releases.
//
// Usage:
//
//	canonical, ok := vocab.Normalize(ft.R4, "patient") // "Patient", true
//	if !vocab.IsKnown(ft.R4, "Hospital") {
//	    // warn, but keep going
//	}
package vocab

import (
	"bufio"
	"bytes"
	"embed"
	"strings"
	"sync"

	ft "github.com/gofhir/tabulate"
)

//go:embed r4.txt r4b.txt r5.txt
var lists embed.FS

// vocabulary holds the type names of one FHIR version.
type vocabulary struct {
	ordered []string
	byLower map[string]string
}

var (
	mu     sync.Mutex
	loaded = make(map[ft.FHIRVersion]*vocabulary)
)

func file(v ft.FHIRVersion) string {
	switch v {
	case ft.R4B:
		return "r4b.txt"
	case ft.R5:
		return "r5.txt"
	default:
		return "r4.txt"
	}
}

func load(v ft.FHIRVersion) *vocabulary {
	mu.Lock()
	defer mu.Unlock()

	if voc, ok := loaded[v]; ok {
		return voc
	}

	data, err := lists.ReadFile(file(v))
	if err != nil {
		// Embedded lists are part of the build; an unreadable list is a
		// packaging defect and an empty vocabulary keeps lookups advisory.
		data = nil
	}

	voc := &vocabulary{byLower: make(map[string]string)}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}
		voc.ordered = append(voc.ordered, name)
		voc.byLower[strings.ToLower(name)] = name
	}

	loaded[v] = voc
	return voc
}

// Types returns the known resource type names for a FHIR version, in
// list order. The returned slice must not be modified.
func Types(v ft.FHIRVersion) []string {
	return load(v).ordered
}

// Normalize returns the canonical spelling of name for the given FHIR
// version, matching case-insensitively. ok is false when the name is
// not in the vocabulary; name is then returned unchanged.
func Normalize(v ft.FHIRVersion, name string) (string, bool) {
	if canonical, ok := load(v).byLower[strings.ToLower(name)]; ok {
		return canonical, true
	}
	return name, false
}

// IsKnown reports whether name is in the vocabulary for the given FHIR
// version, ignoring case.
func IsKnown(v ft.FHIRVersion, name string) bool {
	_, ok := load(v).byLower[strings.ToLower(name)]
	return ok
}
