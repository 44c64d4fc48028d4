// Package extract parses extraction paths and runs them against
// resource trees.
//
// A path is a sequence of child-element steps separated by "/",
// optionally ending in an attribute selector:
//
//	name/given
//	code/coding/system
//	meta/tag/@display
//
// Extract returns one Match per matching node, in document order. A
// Match carries the extracted string value and an index trail: one
// 1-based sibling position per path step that matched two or more
// siblings anywhere in the resource. When every step is unambiguous the
// trail is empty - such values need no provenance marker.
package extract
