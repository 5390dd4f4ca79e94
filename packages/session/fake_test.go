package session

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"sync"
	"sync/atomic"

	smmhttp "github.com/canterburyairpatrol/smm-asset/packages/http"
)

// reply scripts one response of the fake transport.
type reply struct {
	status      int
	redirect    string
	contentType string
	body        string
	err         error
}

type fakeTransport struct {
	mu       sync.Mutex
	handler  func(req *smmhttp.Request, n int) reply
	requests []*smmhttp.Request
	counts   map[string]int
	inFlight atomic.Int32
	overlap  atomic.Bool
	closed   int
}

func newFake(handler func(req *smmhttp.Request, n int) reply) *fakeTransport {
	return &fakeTransport{handler: handler, counts: make(map[string]int)}
}

func (f *fakeTransport) Execute(req *smmhttp.Request, sink io.Writer) (*smmhttp.Response, error) {
	if f.inFlight.Add(1) > 1 {
		f.overlap.Store(true)
	}
	defer f.inFlight.Add(-1)

	f.mu.Lock()
	f.requests = append(f.requests, req)
	key := req.Method + " " + pathOf(req.URL)
	f.counts[key]++
	n := f.counts[key]
	f.mu.Unlock()

	r := f.handler(req, n)
	if r.err != nil {
		return nil, r.err
	}

	resp := &smmhttp.Response{Succeeded: r.status < 400, StatusCode: r.status}
	if r.status == 200 && r.contentType != "" {
		ct := r.contentType
		resp.ContentType = &ct
	}
	if smmhttp.IsRedirectStatus(r.status) && r.redirect != "" {
		target := r.redirect
		resp.RedirectTarget = &target
	}
	if sink != nil && resp.Succeeded {
		_, _ = io.WriteString(sink, r.body)
	}
	return resp, nil
}

func (f *fakeTransport) CloseIdleConnections() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
}

func (f *fakeTransport) count(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[method+" "+path]
}

func (f *fakeTransport) last(method, path string) *smmhttp.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.requests) - 1; i >= 0; i-- {
		r := f.requests[i]
		if r.Method == method && pathOf(r.URL) == path {
			return r
		}
	}
	return nil
}

func (f *fakeTransport) factory() func() Transport {
	return func() Transport { return f }
}

func pathOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Path
}

func loginPage(token string) string {
	return fmt.Sprintf(`<html><body><form method="post" action="/accounts/login/">
<input type="hidden" name="csrfmiddlewaretoken" value="%s">
<input type="text" name="username"><input type="password" name="password">
</form></body></html>`, token)
}

// loginReply answers the two login requests. accept decides the POST outcome.
func loginReply(req *smmhttp.Request, token string, accept bool) reply {
	if req.Method == smmhttp.MethodGet {
		return reply{status: 200, contentType: "text/html; charset=utf-8", body: loginPage(token)}
	}
	if accept {
		return reply{status: 302, redirect: hostOf(req.URL) + "/"}
	}
	return reply{status: 200, contentType: "text/html", body: loginPage(token)}
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

var errRefused = errors.New("dial tcp: connection refused")
