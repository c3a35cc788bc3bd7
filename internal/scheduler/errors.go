package scheduler

import "errors"

// Error classes. Every error returned by the Service that is not an
// unexpected store failure matches exactly one of these with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

var (
	ErrInvalidInterval   = classified(ErrValidation, "invalid interval")
	ErrNoUpdatableFields = classified(ErrValidation, "no updatable fields provided")
	ErrInvalidStatus     = classified(ErrValidation, "invalid appointment status")
	ErrFieldTooLong      = classified(ErrValidation, "field exceeds maximum length")

	ErrAppointmentNotFound = classified(ErrNotFound, "appointment not found")

	ErrSchedulingConflict = classified(ErrConflict, "doctor already has an appointment in this interval")
	ErrInvalidTransition  = classified(ErrConflict, "invalid status transition")
	ErrScheduleBusy       = classified(ErrConflict, "doctor schedule is being modified, please retry")
)

type classError struct {
	class error
	msg   string
}

func classified(class error, msg string) error {
	return &classError{class: class, msg: msg}
}

func (e *classError) Error() string { return e.msg }

func (e *classError) Unwrap() error { return e.class }
