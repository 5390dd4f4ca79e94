package asset

import "errors"

var (
	// ErrUnexpectedStatus means the server did not answer 200.
	ErrUnexpectedStatus = errors.New("unexpected response status")
	// ErrNoSearch means no search is available for the asset.
	ErrNoSearch = errors.New("no search available")
	// ErrMalformedPayload means the response body could not be decoded.
	ErrMalformedPayload = errors.New("malformed payload")
)
