package platform

import "os"

// Hostname returns the host's name for the startup banner and the ping
// payload. Never fails; falls back to "unknown".
func Hostname() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "unknown"
	}
	return name
}
