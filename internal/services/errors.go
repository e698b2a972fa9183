package services

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindUnavailable  ErrorKind = "unavailable"

	// KindNotConfigured means an optional integration has no credentials.
	KindNotConfigured ErrorKind = "not_configured"
)

// Error is a failure the caller can act on. Message is safe to show to the
// client as-is. Anything that is not an *Error is an internal failure.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// AsError unwraps err into an *Error if it carries one.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k ErrorKind) bool {
	e, ok := AsError(err)
	return ok && e.Kind == k
}

// Client-facing messages.
const (
	MsgDoctorNotFound      = "Doctor not found"
	MsgDoctorNotAvailable  = "Doctor not available"
	MsgSlotBooked          = "Slot is already booked"
	MsgUserNotFound        = "User not found"
	MsgAppointmentNotFound = "Appointment not found"
	MsgUnauthorizedAction  = "Unauthorized action"
	MsgMarkFailed          = "Invalid Appointment Mark Failed"
	MsgAlreadyCancelled    = "Appointment already cancelled"
	MsgAlreadyCompleted    = "Appointment already completed"
	MsgPaymentUnavailable  = "Appointment Cancelled or not found"
	MsgAlreadyPaid         = "Appointment already paid"
	MsgPaymentFailed       = "Payment failed"
	MsgInvalidCredentials  = "Invalid Credentials"
	MsgInvalidPassword     = "Invalid password"
	MsgEmailTaken          = "An account with this email already exists"
	MsgDataMissing         = "Data Missing"
)
