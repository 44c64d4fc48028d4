// Package reshape provides post-processing transforms on cracked
// tables: melting multi-valued indexed cells into long format,
// stripping index markers, and discovering column groups by prefix.
//
// All transforms are pure - they return a new table and never modify
// their input. Bracket and separator parameters are explicit so the
// transforms stay decoupled from whatever style was used at crack
// time.
package reshape
