package middleware

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/phobrla/openinsafari/internal/api/request"
	"github.com/phobrla/openinsafari/internal/api/response"
	"github.com/phobrla/openinsafari/internal/origin"
)

// Origin returns a middleware that rejects connections from outside the
// allowed ranges. It runs before any credential check so off-network
// callers learn nothing about the token, and it works strictly from the
// connection's remote address.
func Origin(filter *origin.Filter, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !filter.AllowedRemote(r.RemoteAddr) {
				logger.Debug().
					Str("client_ip", request.ClientIP(r)).
					Msg("origin denied")
				response.WriteError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
