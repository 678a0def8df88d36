package reddit

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized  = errors.New("reddit rejected the credentials")
	ErrRateLimited   = errors.New("reddit API rate limit exceeded")
	ErrNoAccessToken = errors.New("token response did not contain an access token")
	ErrMissingData   = errors.New("listing response has no data")
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s (%s)", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

// Unwrap maps well known statuses onto the package sentinels so callers can
// use errors.Is.
func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return nil
	}
}
