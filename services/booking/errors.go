package booking

import (
	"errors"
	"fmt"
)

// Error codes for booking flow failures. Validation codes leave the
// conversation where it is; staleness codes come with an automatic state
// revert; the submission code is retryable.
const (
	CodeUnknownService          = "unknownService"
	CodeUnknownEstablishment    = "unknownEstablishment"
	CodeInvalidDate             = "invalidDate"
	CodeIncompleteCustomerInfo  = "incompleteCustomerInfo"
	CodeInvalidTransition       = "invalidTransition"
	CodeSlotNoLongerOffered     = "slotNoLongerOffered"
	CodeSlotExpired             = "slotExpired"
	CodeBookingSubmissionFailed = "bookingSubmissionFailed"
)

// FlowError is a typed failure of one orchestrator operation.
type FlowError struct {
	Code    string
	Message string
	Err     error
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

func newFlowError(code, format string, args ...any) error {
	return &FlowError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

func wrapFlowError(code string, err error, format string, args ...any) error {
	return &FlowError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// ErrCode extracts the flow error code from err, or "" if err is not one.
func ErrCode(err error) string {
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ""
}

// IsCode reports whether err is a flow error with the given code.
func IsCode(err error, code string) bool {
	return ErrCode(err) == code
}
