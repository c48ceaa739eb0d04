// Package password implements password hashing and verification with
// Argon2id defaults.
//
// # Output format
//
// Hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Password policy and
// persistence belong to the Engine and its UserProvider.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords — callers supply plaintext and receive hashes.
//   - Import any other streamauth package.
//   - Log plaintext passwords or hash parameters at runtime.
package password
