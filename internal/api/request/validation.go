package request

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// MaxBodyBytes caps request bodies. Open requests are a single short URL;
// anything bigger is rejected before it is read in full.
const MaxBodyBytes = 64 << 10

// Decode reads a JSON body into v and validates it. The body is capped at
// MaxBodyBytes; oversized or unparsable bodies are a client error.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return nil
}

// ClientIP extracts the peer address from the connection's remote address.
// X-Forwarded-For and friends are deliberately ignored: the origin filter
// is a security control and header-supplied addresses are caller-forgeable.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
