package requestinfo

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	surfer "github.com/avct/uasurfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chromeMac = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/124.0.6367.91 Safari/537.36"

func TestEnrich(t *testing.T) {
	var got *RequestInfo
	h := Enrich(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/applications", nil)
	req.Header.Set("User-Agent", chromeMac)
	req.Header.Set("Accept-Language", "fil-PH;q=0.9, en;q=0.8")
	req.Header.Set("X-Forwarded-For", "garbage, 203.0.113.7, 10.0.0.1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.Equal(t, "Chrome", got.UA.Browser)
	assert.Equal(t, "Desktop", got.UA.Device)
	assert.False(t, got.UA.IsBot)
	assert.Equal(t, "fil-ph", got.UA.PrimaryLang)
	assert.Equal(t, "203.0.113.7", got.Geo.IP.String())
	assert.Equal(t, "/applications", got.Path)
	assert.NotEmpty(t, got.Fields())
}

func TestClientIPFallbacks(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.4:5555"
	assert.Equal(t, "198.51.100.4", clientIP(req).String())

	req.Header.Set("X-Real-Ip", "192.0.2.9")
	assert.Equal(t, "192.0.2.9", clientIP(req).String())
}

func TestVersionToString(t *testing.T) {
	assert.Equal(t, "", versionToString(surfer.Version{}))
	assert.Equal(t, "17", versionToString(surfer.Version{Major: 17}))
	assert.Equal(t, "17.3", versionToString(surfer.Version{Major: 17, Minor: 3}))
	assert.Equal(t, "17.3.1", versionToString(surfer.Version{Major: 17, Minor: 3, Patch: 1}))
}

func TestInitGeo_MissingFile(t *testing.T) {
	assert.Error(t, InitGeo(filepath.Join(t.TempDir(), "nope.mmdb")))
	assert.NoError(t, CloseGeo())
	assert.Nil(t, FromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}
