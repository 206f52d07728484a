// Package archive searches a Jabber message archive whose textual columns may
// be encrypted at rest with a shared AES key (see package cryptox).
//
// # Search model
//
// An identity used as a search key is first turned into a blind: the first
// ciphertext characters of the encrypted identity. Stored Jids carry a
// "/resource" suffix that changes between sessions, so the engine matches the
// blind as a prefix (LIKE 'blind%'). A prefix match only generates
// candidates: every row is decrypted and re-checked against the exact bare
// identity before it is returned.
//
// # Resource use
//
// Every row-returning operation first runs a count probe with the same
// predicate (see Guard) unless the caller sets Search.IgnoreRowCount. Results
// are materialized in memory. An Engine issues one statement at a time over
// its session.
//
// Key Types
//
//   - type Engine: identity and message lookups
//   - type Options: immutable per-engine configuration
//   - type Projector: raw row to Message, with decryption
//   - type Guard: count probe before a full query
//   - func Deduplicate: chat room log reconstruction
package archive
