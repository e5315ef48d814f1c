package clients

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError is returned by a call whose upstream answered outside 2xx.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: upstream status %d", e.Method, e.URL, e.StatusCode)
}

// AsStatusError reports whether err carries an upstream status.
func AsStatusError(err error) (*StatusError, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr, true
	}
	return nil, false
}
