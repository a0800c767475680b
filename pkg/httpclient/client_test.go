package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens struct {
	token  string
	scheme string
}

func (s staticTokens) Token() string  { return s.token }
func (s staticTokens) Scheme() string { return s.scheme }

func TestCapitalizeScheme(t *testing.T) {
	tests := []struct {
		name     string
		scheme   string
		expected string
	}{
		{name: "lowercase bearer", scheme: "bearer", expected: "Bearer"},
		{name: "already capitalized", scheme: "Bearer", expected: "Bearer"},
		{name: "empty defaults to Bearer", scheme: "", expected: "Bearer"},
		{name: "single letter", scheme: "b", expected: "B"},
		{name: "other scheme", scheme: "token", expected: "Token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CapitalizeScheme(tt.scheme))
		})
	}
}

func TestAuthenticatedClient_InjectsAuthorizationHeader(t *testing.T) {
	var gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewAuthenticatedClient(staticTokens{token: "tok123", scheme: "bearer"}, 0)

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Bearer tok123", gotHeader)
}

func TestAuthenticatedClient_NoTokenLeavesRequestUntouched(t *testing.T) {
	var hasHeader bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasHeader = r.Header["Authorization"]
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewAuthenticatedClient(staticTokens{}, 0)

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.False(t, hasHeader, "request without a token must carry no Authorization header")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthenticatedClient_DoesNotMutateOriginalRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewAuthenticatedClient(staticTokens{token: "tok", scheme: "bearer"}, 0)

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestAuthenticatedClient_TimeoutProducesTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewAuthenticatedClient(staticTokens{token: "tok", scheme: "bearer"}, 20*time.Millisecond)

	_, err := client.Get(server.URL)
	assert.Error(t, err)
}
