package httpclient

import (
	"io"
	"net/http"
	"time"
	"unicode"
	"unicode/utf8"
)

// DefaultTimeout bounds the full request round trip; a request that
// exceeds it fails with a transport error instead of hanging.
const DefaultTimeout = 30 * time.Second

// Client defines an interface for making HTTP requests
// This allows for easy mocking and testing of HTTP calls
type Client interface {
	Post(url, contentType string, body io.Reader) (*http.Response, error)
	Get(url string) (*http.Response, error)
	Do(req *http.Request) (*http.Response, error)
}

// TokenSource provides the current bearer credential. An empty token
// means "not logged in" and leaves requests untouched.
type TokenSource interface {
	Token() string
	Scheme() string
}

// StandardHTTPClient wraps the standard http.Client
type StandardHTTPClient struct {
	client *http.Client
}

// NewStandardClient creates a new HTTP client with default settings
func NewStandardClient() Client {
	return &StandardHTTPClient{
		client: &http.Client{Timeout: DefaultTimeout},
	}
}

// NewAuthenticatedClient creates an HTTP client that injects the
// Authorization header from the given token source on every request.
// A zero timeout falls back to DefaultTimeout.
func NewAuthenticatedClient(tokens TokenSource, timeout time.Duration) Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &StandardHTTPClient{
		client: &http.Client{
			Timeout: timeout,
			Transport: &authTransport{
				tokens: tokens,
				base:   http.DefaultTransport,
			},
		},
	}
}

// Post makes a POST request
func (c *StandardHTTPClient) Post(url, contentType string, body io.Reader) (*http.Response, error) {
	return c.client.Post(url, contentType, body)
}

// Get makes a GET request
func (c *StandardHTTPClient) Get(url string) (*http.Response, error) {
	return c.client.Get(url)
}

// Do executes an HTTP request
func (c *StandardHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req)
}

// authTransport attaches bearer credentials to outbound requests so call
// sites never repeat that logic. Without a token the request passes
// through unmodified and unauthenticated endpoints receive the backend's
// own 401 rather than a client-side error.
type authTransport struct {
	tokens TokenSource
	base   http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := t.tokens.Token()
	if token == "" {
		return t.base.RoundTrip(req)
	}

	// Per RoundTripper contract the request must not be mutated in place
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", CapitalizeScheme(t.tokens.Scheme())+" "+token)
	return t.base.RoundTrip(clone)
}

// CapitalizeScheme upper-cases the first rune of the stored auth scheme.
// The backend hands out "bearer"; the header convention is "Bearer".
func CapitalizeScheme(scheme string) string {
	if scheme == "" {
		return "Bearer"
	}
	r, size := utf8.DecodeRuneInString(scheme)
	return string(unicode.ToUpper(r)) + scheme[size:]
}
