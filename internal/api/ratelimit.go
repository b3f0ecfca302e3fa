package api

import (
	"net/http"

	"github.com/listenupapp/crate-server/internal/http/response"
	"github.com/listenupapp/crate-server/internal/ratelimit"
)

// rateLimit rejects requests with 429 once the client IP runs out of
// tokens. The health check is never limited.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		key := ratelimit.ClientIP(r)
		if !s.limiter.Allow(key) {
			s.logger.Warn("rate limit exceeded", "ip", key, "path", r.URL.Path)
			w.Header().Set("Retry-After", "1")
			response.TooManyRequests(w, s.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}
