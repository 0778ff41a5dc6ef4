package availability

import (
	"errors"
	"fmt"
)

const (
	// CodeUnavailable marks transport failures and timeouts.
	CodeUnavailable = "remoteUnavailable"
	// CodeRejected marks non-2xx responses from the scheduling API.
	CodeRejected = "remoteRejected"
)

// RemoteError is the failure of one scheduling API call.
type RemoteError struct {
	Code    string
	Status  int    // HTTP status, only set for CodeRejected
	Body    string // response body, only set for CodeRejected
	Message string
}

func (e *RemoteError) Error() string {
	if e.Code == CodeRejected {
		return fmt.Sprintf("%s: status %d: %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewUnavailableError wraps a transport or timeout failure.
func NewUnavailableError(err error) error {
	return &RemoteError{
		Code:    CodeUnavailable,
		Message: err.Error(),
	}
}

// NewRejectedError wraps a non-2xx response.
func NewRejectedError(status int, body string) error {
	return &RemoteError{
		Code:    CodeRejected,
		Status:  status,
		Body:    body,
		Message: body,
	}
}

// IsUnavailable reports whether err is a transport-level remote failure.
func IsUnavailable(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Code == CodeUnavailable
}

// RejectedStatus returns the HTTP status of a rejection, or 0 if err is not one.
func RejectedStatus(err error) int {
	var re *RemoteError
	if errors.As(err, &re) && re.Code == CodeRejected {
		return re.Status
	}
	return 0
}
