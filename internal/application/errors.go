package application

import "errors"

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrSlotTaken is returned when a non-cancelled booking already occupies the slot.
	ErrSlotTaken = errors.New("application: slot already booked")
	// ErrAlreadyExists is returned when a catalog entry with the same id exists.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrServiceInUse is returned when deleting a service that bookings still reference.
	ErrServiceInUse = errors.New("application: service referenced by bookings")
	// ErrInvalidCredentials is returned when email or password do not match an account.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrAccountDisabled is returned when the account exists but is deactivated.
	ErrAccountDisabled = errors.New("application: account disabled")
	// ErrPaymentNotConfirmed is returned when the processor does not report the
	// intent as succeeded. The booking state is left untouched.
	ErrPaymentNotConfirmed = errors.New("application: payment not confirmed")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// Add records a field level validation error.
func (v *ValidationError) Add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
