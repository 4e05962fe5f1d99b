package handler

import (
	"net/http"

	"github.com/phobrla/openinsafari/internal/api/request"
	"github.com/phobrla/openinsafari/internal/api/response"
)

// Ping answers the extension's connectivity test. No side effects; the
// payload carries enough for the options page to show what the relay sees.
type Ping struct {
	version  string
	hostname string
}

func NewPing(version, hostname string) *Ping {
	return &Ping{version: version, hostname: hostname}
}

func (h *Ping) Get(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"version":   h.version,
		"hostname":  h.hostname,
		"client_ip": request.ClientIP(r),
	})
}
