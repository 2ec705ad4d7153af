package licensing

import (
	"errors"
	"fmt"
)

// ProviderError preserves the platform's HTTP status and raw body so
// callers can classify the business condition hidden inside it.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("license platform returned %d: %s", e.StatusCode, e.Body)
}

// Kind classifies the error body.
func (e *ProviderError) Kind() ProviderErrorKind {
	return ClassifyProviderError(e.Body)
}

// AsProviderError unwraps a ProviderError if err carries one.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
