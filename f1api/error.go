package f1api

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed fetch.
type ErrorKind string

const (
	KindNetworkFailure ErrorKind = "network_failure"
	KindRemoteStatus   ErrorKind = "remote_status"
	KindDecodeFailure  ErrorKind = "decode_failure"
)

// Error is returned by Client.Fetch for every failure after the request was built.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
	URL     string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Kind == KindRemoteStatus {
		return fmt.Sprintf("f1api: %s returned status %d: %s", e.URL, e.Status, e.Message)
	}
	return fmt.Sprintf("f1api: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// AsError extracts an *Error from err.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
