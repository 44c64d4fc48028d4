// Package crack turns bundles of resource trees into flat tables.
//
// A Cracker runs every column of a table description against every
// matching resource, in document order across bundles. Each resource
// becomes exactly one row; multiplicity inside the resource never
// explodes rows but is encoded into the affected cell as bracketed
// index trails:
//
//	[1]Anna [2]Maria
//
// so values from different columns of the same logical sub-record stay
// correlated and can later be melted apart by the reshape package.
//
// Schema problems never surface here - paths and styles are validated
// when the table description is constructed. Conditions found at crack
// time (a resource type absent from the bundles, a filtered-out
// resource) are advisory Issues on the result, not errors.
package crack
