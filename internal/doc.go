// Package internal contains helper utilities that are intentionally private
// to streamauth, currently secure random generation for OTP codes and
// password-reset tokens.
//
// # What this package must NOT do
//
//   - Export types that appear in the public streamauth API.
//   - Be imported by any package outside the streamauth module.
package internal
