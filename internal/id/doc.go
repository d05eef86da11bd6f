// Package id generates the identifiers used across regdesk.
//
//   - UUID: record ids assigned by the mock store and notification ids
//   - Nonce: 32 random bytes, hex encoded, for wallet challenges
//   - TxHash: a 0x-prefixed 32-byte hash standing in for the on-chain
//     transaction that anchors a record in mock mode
//   - Number: zero-padded numeric document numbers
//
// All random material comes from crypto/rand.
package id
