package middleware

import (
	"fmt"
	"net"
	"net/http"

	"github.com/msgboard/msgboard/shared/errors"
	"github.com/msgboard/msgboard/shared/logger"
	"github.com/msgboard/msgboard/shared/middleware/ratelimiter"
	"github.com/msgboard/msgboard/shared/utils"
)

var errRateLimited = &errors.ErrorWithStatusCode{
	Message:    "Rate limit exceeded, try again later.",
	StatusCode: http.StatusTooManyRequests,
}

// unknownIdentity is the one bucket shared by requests whose identity cannot be read.
const unknownIdentity = "unknown"

// RateLimit rejects requests once the identity's bucket is empty.
func RateLimit(rl *ratelimiter.Limiter, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := getIdentity(r)
			if err != nil {
				logger.Log.Warn("rate limit identity unavailable", "error", err, "remote_addr", r.RemoteAddr)
				identity = unknownIdentity
			}
			if !rl.Allow(identity) {
				logger.Log.Warn("rate limited", "identity", identity, "path", r.URL.Path)
				utils.WriteError(w, errRateLimited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetIP extracts the client IP from RemoteAddr.
// X-Real-IP and X-Forwarded-For are ignored; put chi's RealIP in front when behind a trusted proxy.
func GetIP(r *http.Request) (string, error) {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without port
		ip = r.RemoteAddr
	}

	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("invalid IP address: %s", ip)
	}

	return ip, nil
}
