// Package cli provides the regdesk command-line interface.
//
// The CLI drives the same services as the dashboard pages:
//   - serve: run the mock REST backend over the mock data set
//   - licenses, vehicles, violations, authorities, news: list, get, create,
//     update, delete, status actions and statistics
//   - login, wallet-login, logout, whoami: session management
//   - watch: follow the change stream of a live backend
//   - config: show and edit configuration
//   - version: show build information
//
// Every command honors the global --json flag: when set, stdout carries only
// the JSON encoding of the result.
package cli
