package request

import (
	"fmt"
	"net/url"
	"strings"
)

// Open is the POST /open request body.
type Open struct {
	URL string `json:"url" validate:"required"`
}

var allowedSchemes = map[string]bool{
	"http":  true,
	"https": true,
}

// ValidateTargetURL checks the target for scheme and syntactic
// well-formedness and returns the normalized form. The opener must never
// see a string that has not passed here; this is what keeps file:,
// javascript: and friends away from the host launch command.
func ValidateTargetURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("missing 'url'")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	if !allowedSchemes[strings.ToLower(u.Scheme)] {
		return "", fmt.Errorf("only http/https URLs are permitted")
	}
	if u.Host == "" {
		return "", fmt.Errorf("URL has no host")
	}
	return u.String(), nil
}
