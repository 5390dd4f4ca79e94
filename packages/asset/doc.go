// Package asset implements the asset side of the SMM API on top of a
// session: listing the assets a user may fly, reporting positions and
// receiving commands, and finding, accepting and completing searches.
//
// Payloads are decoded leniently with gjson. Missing fields take their zero
// value, matching what the server omits for optional data.
package asset
