package domain

import (
	"errors"
	"strconv"
)

var (
	ErrEmailRequired        = errors.New("email is required")
	ErrActivityNameRequired = errors.New("activity name is required")

	// ErrLoadFailed is returned when the activity list could not be fetched.
	ErrLoadFailed = errors.New("failed to load activities")
	// ErrUnavailable is returned while the activities API is being shed.
	ErrUnavailable = errors.New("activities API unavailable")
)

// UpstreamError is a non-2xx response from the activities API. Detail is
// the server-provided "detail" field, empty when the body carried none.
type UpstreamError struct {
	Op     string
	Status int
	Detail string
}

func (e *UpstreamError) Error() string {
	if e.Detail != "" {
		return e.Op + ": " + e.Detail
	}
	return e.Op + ": unexpected status " + strconv.Itoa(e.Status)
}

// DetailOr returns the server-provided detail carried by err, or fallback
// when err carries none.
func DetailOr(err error, fallback string) string {
	var upstream *UpstreamError
	if errors.As(err, &upstream) && upstream.Detail != "" {
		return upstream.Detail
	}
	return fallback
}
