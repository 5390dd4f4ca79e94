// Package http provides the transport used by smm-asset sessions.
//
// It wraps the standard library's http package with the policy the SMM
// server expects from an asset client:
//   - One cookie jar per client, so the anti-forgery cookie travels with the login form
//   - Redirects are never followed; the target is reported to the caller instead
//   - Relaxed certificate verification unless explicitly enabled
//   - Response bodies are streamed into a caller supplied sink
package http
