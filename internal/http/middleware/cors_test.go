package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if called != nil {
			*called = true
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORS(t *testing.T) {
	cases := []struct {
		name    string
		allowed []string
		origin  string
		want    string
	}{
		{"listed origin", []string{"https://medibook.example"}, "https://medibook.example", "https://medibook.example"},
		{"unknown origin", []string{"https://medibook.example"}, "https://evil.example", ""},
		{"wildcard", []string{" * "}, "https://any.example", "https://any.example"},
		{"no origin header", []string{"*"}, "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			req := httptest.NewRequest(http.MethodGet, "/api/hospitals", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			rec := httptest.NewRecorder()

			CORS(tc.allowed)(okHandler(&called)).ServeHTTP(rec, req)

			assert.True(t, called)
			assert.Equal(t, tc.want, rec.Header().Get("Access-Control-Allow-Origin"))
			if tc.want != "" {
				assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Accept-Language")
				assert.Equal(t, "Content-Language", rec.Header().Get("Access-Control-Expose-Headers"))
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	called := false
	req := httptest.NewRequest(http.MethodOptions, "/api/sessions", nil)
	req.Header.Set("Origin", "https://medibook.example")
	req.Header.Set("Access-Control-Request-Method", "PATCH")
	rec := httptest.NewRecorder()

	CORS([]string{"https://medibook.example"})(okHandler(&called)).ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}

func TestOriginAllowlist(t *testing.T) {
	list := NewOriginAllowlist([]string{"", " https://medibook.example/ "})
	assert.True(t, list.Allows("https://medibook.example"))
	assert.False(t, list.Allows("http://medibook.example"))
	assert.False(t, list.Allows(""))

	wildcard := NewOriginAllowlist([]string{"*"})
	assert.True(t, wildcard.Allows("https://whatever.example"))
	assert.False(t, wildcard.Allows(""))
}
