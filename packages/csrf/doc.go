// Package csrf extracts the anti-forgery token from a Django login form.
//
// The token lives in a hidden input:
//
//	<input type="hidden" name="csrfmiddlewaretoken" value="...">
//
// Extract returns its value exactly as the HTML parser produced it. The
// value is replayed verbatim in the login submission, so it is never
// trimmed or otherwise normalized.
package csrf
