package http

import (
	"mime"
	"net/http"
	"time"
)

// Response describes the outcome of one physical request.
//
// ContentType is only set for 200 responses and RedirectTarget only for
// 301, 302 and 303; nil means the field is absent.
type Response struct {
	Succeeded      bool
	StatusCode     int
	Status         string
	ContentType    *string
	RedirectTarget *string
	Duration       time.Duration
	Err            error
}

// IsRedirectStatus reports whether code is one of the redirects the
// session layer understands.
func IsRedirectStatus(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther:
		return true
	}
	return false
}

func (r *Response) IsOK() bool {
	return r.Succeeded && r.StatusCode == http.StatusOK
}

// Redirect returns the redirect target, if the response carried one.
func (r *Response) Redirect() (string, bool) {
	if r.RedirectTarget == nil {
		return "", false
	}
	return *r.RedirectTarget, true
}

// MediaType returns the media type of the response without parameters.
func (r *Response) MediaType() (string, bool) {
	if r.ContentType == nil {
		return "", false
	}
	mt, _, err := mime.ParseMediaType(*r.ContentType)
	if err != nil {
		return *r.ContentType, true
	}
	return mt, true
}

func (r *Response) IsJSON() bool {
	mt, ok := r.MediaType()
	return ok && mt == "application/json"
}
