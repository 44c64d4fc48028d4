// Package tree provides the generic resource tree model the cracking
// engine operates on, together with readers that build trees from FHIR
// XML and JSON bundles.
//
// An Element is an ordered, labeled node with attributes, text content,
// and children. Repeating FHIR elements simply appear as sibling
// children with the same name, in document order. Trees are read-only
// from the engine's perspective: nothing downstream of the readers
// mutates them.
//
// A Bundle holds the resources of one page of search results; a
// Bundles value is an ordered sequence of pages. Resources are
// addressable by type and position across all pages via
// Bundles.ResourcesOfType.
package tree
