package http

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	neturl "net/url"
	"strings"
	"time"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 30 * time.Second
	// DefaultMaxIdleConns is the maximum number of idle connections in the pool
	DefaultMaxIdleConns = 4
	// DefaultIdleConnTimeout is how long idle connections stay in the pool
	DefaultIdleConnTimeout = 90 * time.Second
	// DefaultUserAgent is sent with every request unless overridden
	DefaultUserAgent = "smm-asset/1.0"
)

const (
	MethodGet  = http.MethodGet
	MethodPost = http.MethodPost
)

// Client executes single requests against one SMM host. It keeps the
// cookies handed out by the server for as long as it lives.
type Client struct {
	httpClient  *http.Client
	transport   *http.Transport
	timeout     time.Duration
	validateSSL bool
	proxyURL    string
	userAgent   string
}

type ClientOption func(*Client)

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		timeout:     DefaultTimeout,
		validateSSL: false,
		userAgent:   DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(c)
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        DefaultMaxIdleConns,
		MaxIdleConnsPerHost: DefaultMaxIdleConns,
		IdleConnTimeout:     DefaultIdleConnTimeout,
	}

	// SMM deployments commonly run on self-signed certificates
	if !c.validateSSL {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	if c.proxyURL != "" {
		proxyURL, err := neturl.Parse(c.proxyURL)
		if err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	// cookiejar.New only fails on a broken PublicSuffixList, and we pass none
	jar, _ := cookiejar.New(nil)

	c.transport = transport
	c.httpClient = &http.Client{
		Transport: transport,
		Timeout:   c.timeout,
		Jar:       jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return c
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithValidateSSL enables or disables SSL certificate validation
func WithValidateSSL(validate bool) ClientOption {
	return func(c *Client) {
		c.validateSSL = validate
	}
}

// WithProxy sets the proxy URL for all requests
func WithProxy(proxyURL string) ClientOption {
	return func(c *Client) {
		c.proxyURL = proxyURL
	}
}

func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// Execute performs exactly one request. The response body is copied into
// sink when the request succeeded; a nil sink discards it. A non-nil error
// means no response was received at all.
func (c *Client) Execute(req *Request, sink io.Writer) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}

	var body io.Reader
	if req.Method == MethodPost {
		body = strings.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(context.Background(), req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	if req.Method == MethodPost {
		httpReq.Header.Set("Content-Type", FormContentType)
		// Django's CSRF check rejects HTTPS form posts without a matching referer
		httpReq.Header.Set("Referer", req.URL)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL, err)
	}
	defer httpResp.Body.Close()

	resp := &Response{
		Succeeded:  true,
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
	}

	switch {
	case httpResp.StatusCode >= 400:
		// Fail on HTTP errors the way the server's browser clients see them:
		// the status is reported but no body is delivered.
		resp.Succeeded = false
	case httpResp.StatusCode == http.StatusOK:
		if ct := httpResp.Header.Get("Content-Type"); ct != "" {
			resp.ContentType = &ct
		}
	case IsRedirectStatus(httpResp.StatusCode):
		if loc, err := httpResp.Location(); err == nil {
			target := loc.String()
			resp.RedirectTarget = &target
		}
	}

	if sink == nil || !resp.Succeeded {
		sink = io.Discard
	}
	if _, err := io.Copy(sink, httpResp.Body); err != nil {
		resp.Succeeded = false
		resp.Err = fmt.Errorf("read body: %w", err)
	}
	resp.Duration = time.Since(start)

	return resp, nil
}

// CloseIdleConnections releases pooled connections held by the client.
func (c *Client) CloseIdleConnections() {
	c.transport.CloseIdleConnections()
}

// ValidateURL checks that a URL is well-formed and uses an allowed scheme
func ValidateURL(rawURL string) error {
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %s (only http and https are allowed)", u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}

	return nil
}
