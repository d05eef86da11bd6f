// Package table is the list-screen engine shared by every resource view.
//
// A table is declared once per row type: a set of typed Fields, the Columns
// rendered from them, the Filters offered to the user and the field keys
// that free-text search covers. The engine then turns a raw row slice into
// the rows of the current page by composing four pure transforms in a fixed
// order:
//
//	search -> filter (and where) -> sort -> paginate
//
// None of the transforms mutates its input and none of them fails: absent
// fields, empty data and out-of-range pages all produce a well-defined
// result.
//
// Search and filter comparisons use NFC normalisation and Unicode case
// folding. Diacritics are significant: "văn" matches "Văn" but "van" does
// not.
package table
