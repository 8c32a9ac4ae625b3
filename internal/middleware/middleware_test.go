package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

func TestForceHTTPS(t *testing.T) {
	t.Parallel()
	h := ForceHTTPS(true)(ok)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://jobs.example.com/applications?x=1", nil))
	assert.Equal(t, http.StatusPermanentRedirect, rec.Code)
	assert.Equal(t, "https://jobs.example.com/applications?x=1", rec.Header().Get("Location"))

	for _, mk := range []func() *http.Request{
		func() *http.Request { return httptest.NewRequest(http.MethodGet, "http://localhost:8080/", nil) },
		func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "http://jobs.example.com/", nil)
			r.Header.Set("X-Forwarded-Proto", "https")
			return r
		},
		func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "https://jobs.example.com/", nil)
			r.TLS = &tls.ConnectionState{}
			return r
		},
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, mk())
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}

	rec = httptest.NewRecorder()
	ForceHTTPS(false)(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://jobs.example.com/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSecurity(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()
	Security(false)(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))

	rec = httptest.NewRecorder()
	Security(true)(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}
