package middleware

import (
	"net/http"
	"strings"
)

const (
	corsAllowHeaders  = "Content-Type, Accept-Language"
	corsAllowMethods  = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	corsExposeHeaders = "Content-Language"
)

// OriginAllowlist matches browser Origin values against configured origins.
// The same list guards CORS and the chat WebSocket handshake.
type OriginAllowlist struct {
	any     bool
	origins map[string]struct{}
}

// NewOriginAllowlist ignores blank entries; "*" allows every origin.
func NewOriginAllowlist(origins []string) OriginAllowlist {
	list := OriginAllowlist{origins: make(map[string]struct{}, len(origins))}
	for _, o := range origins {
		switch o = strings.TrimSpace(o); o {
		case "":
		case "*":
			list.any = true
		default:
			list.origins[strings.TrimSuffix(o, "/")] = struct{}{}
		}
	}
	return list
}

// Allows reports whether origin may call the API. An empty origin never matches.
func (l OriginAllowlist) Allows(origin string) bool {
	if origin == "" {
		return false
	}
	if l.any {
		return true
	}
	_, ok := l.origins[origin]
	return ok
}

// CORS lets the landing page call the API from its own origin. Preflight
// requests are answered here and never reach the handlers.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allow := NewOriginAllowlist(allowedOrigins)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if allow.Allows(origin) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
				h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
				h.Set("Access-Control-Allow-Methods", corsAllowMethods)
				h.Set("Access-Control-Expose-Headers", corsExposeHeaders)
				h.Set("Access-Control-Max-Age", "600")
			}

			preflight := r.Method == http.MethodOptions && origin != "" &&
				r.Header.Get("Access-Control-Request-Method") != ""
			if preflight {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
