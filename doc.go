// Package fhirtabulate flattens FHIR resources into tables for
// statistical analysis.
//
// FHIR resources are hierarchical trees with optional and repeating
// elements. This package "cracks" a list of bundles against a table
// description - a resource type plus named extraction paths - into flat
// tables, encoding any internal multiplicity into bracketed positional
// indices inside the affected cells instead of exploding rows:
//
//	given             family
//	[1]Anna [2]Maria  Smith
//
// The companion reshape package parses those indices back out: melting
// multi-valued cells into long format, stripping index markers, and
// discovering column groups by name prefix.
//
// # Quick Start
//
//	import (
//	    ft "github.com/gofhir/tabulate"
//	    "github.com/gofhir/tabulate/crack"
//	    "github.com/gofhir/tabulate/design"
//	)
//
//	desc, err := design.NewTableDescription("Patient", []design.Column{
//	    {Name: "given", Path: "name/given"},
//	    {Name: "family", Path: "name/family"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cracker, err := crack.New(ft.WithWorkerCount(4))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tbl, issues, err := cracker.CrackTable(ctx, bundles, desc, "patients")
//
// # Architecture
//
// The package is split along the data flow:
//
//   - tree: the generic resource tree model plus XML/JSON bundle readers
//   - design: validated, immutable table descriptions and styles
//   - extract: path parsing and (index trail, value) extraction
//   - crack: orchestration of extraction into whole tables
//   - reshape: melt, index removal, and column discovery on built tables
//   - worker, stream, cache, pool: parallel cracking, streaming row
//     production, and allocation plumbing
//
// All table-producing and table-consuming operations are pure: inputs
// are never mutated, and advisory conditions are reported as Issue
// values rather than errors so pipelines can proceed when an attribute
// simply is not populated.
package fhirtabulate
