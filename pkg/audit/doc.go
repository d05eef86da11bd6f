// Package audit records who changed which registry record, and who signed
// in, as JSON lines.
//
// The mock backend writes one Entry per successful mutation and per sign-in
// attempt:
//
//	{"seq":1,"time":"2025-05-20T09:00:00Z","event":"record.action","actor":"officer","role":"officer","resource":"licenses","id":"lic-006","action":"approved","client":"127.0.0.1"}
//
// Loggers are safe for concurrent use. Open returns a Nop logger for an
// empty path so callers never need a nil check.
package audit
