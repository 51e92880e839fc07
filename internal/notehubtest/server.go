package notehubtest

import (
	"net/http/httptest"
	"testing"
)

// NewServer starts a Service behind an httptest server that is closed
// when the test ends. The server URL is the client's base URL.
func NewServer(t testing.TB, token string) (*Service, *httptest.Server) {
	t.Helper()

	svc := NewService(token)
	srv := httptest.NewServer(svc.Routes())
	t.Cleanup(srv.Close)
	return svc, srv
}
