// Package design provides validated, immutable table descriptions.
//
// A TableDescription names a resource type, an ordered set of columns
// (name plus extraction path), and the style used to render indexed
// cells. A Design is an ordered collection of named descriptions; the
// cracking engine produces exactly one table per design entry.
//
// All validation happens at construction: malformed paths, ambiguous
// bracket configurations, and duplicate column names are errors here so
// that cracking itself never fails on schema problems. Resource type
// names are case-corrected against the known vocabulary; an unknown
// name is only a warning, because the FHIR resource list evolves.
package design
