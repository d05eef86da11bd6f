// Package domain defines the registry records managed by regdesk: driver
// licenses, vehicles, traffic violations, authorities, news, users and
// notifications.
//
// The package carries no I/O. Besides the record shapes it holds the pure
// business predicates (expiry, overdue, severity) and the license status
// transition table, so the service layer, the table column renderers and the
// mock backend all agree on the same rules.
//
// # Patches and filters
//
// Every resource has a Patch type with pointer fields. Apply merges a patch
// over a record; set fields win, nil fields leave the record untouched.
//
// Every resource also has a Filter type. Filters round-trip through
// url.Values so the same filter can be applied in-process against the mock
// store or sent as query parameters to a live backend.
package domain
