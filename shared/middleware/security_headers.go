package middleware

import (
	"net/http"
)

// APIContentSecurityPolicy suits a JSON-only API: nothing may load or frame it.
const APIContentSecurityPolicy = "default-src 'none'; frame-ancestors 'none'"

var baseSecurityHeaders = [][2]string{
	{"X-Frame-Options", "DENY"},
	{"X-Content-Type-Options", "nosniff"},
	{"Referrer-Policy", "same-origin"},
	{"Permissions-Policy", "camera=(), microphone=(), geolocation=(), payment=()"},
	{"Cache-Control", "no-store"},
}

// SecurityHeaders sets the headers every API response carries.
// hsts adds Strict-Transport-Security; an empty csp omits Content-Security-Policy.
func SecurityHeaders(hsts bool, csp string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			headers := w.Header()
			for _, h := range baseSecurityHeaders {
				headers.Set(h[0], h[1])
			}
			if csp != "" {
				headers.Set("Content-Security-Policy", csp)
			}
			if hsts {
				headers.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}
