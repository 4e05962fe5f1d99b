package platform

import "github.com/google/uuid"

// NewDispatchID returns a unique identifier for one open-URL dispatch,
// echoed to the caller and logged for correlation.
func NewDispatchID() string {
	return uuid.New().String()
}
