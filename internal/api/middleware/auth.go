package middleware

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/phobrla/openinsafari/internal/api/request"
	"github.com/phobrla/openinsafari/internal/api/response"
	"github.com/phobrla/openinsafari/internal/auth"
)

// TokenHeader carries the shared secret on every authenticated request.
const TokenHeader = "X-Auth-Token"

// Auth returns a middleware that validates the shared token. Rejections
// are opaque: the response never says whether a token was missing, short,
// or merely wrong, and the expected token is never echoed or logged.
func Auth(guard *auth.Guard, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !guard.Match(r.Header.Get(TokenHeader)) {
				logger.Info().
					Str("client_ip", request.ClientIP(r)).
					Msg("token mismatch")
				response.WriteError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
