package booking

import "errors"

var (
	// ErrUnknownField is returned when an update names a field the form does not have
	ErrUnknownField = errors.New("booking: unknown field")

	// ErrInvalidValue is returned when a field value cannot be parsed
	ErrInvalidValue = errors.New("booking: invalid field value")

	// ErrSubmitDisabled is returned when submit is attempted while submitting or just booked
	ErrSubmitDisabled = errors.New("booking: submit disabled")

	// ErrClosed is returned once the pipeline has been torn down
	ErrClosed = errors.New("booking: pipeline closed")

	// ErrSubmissionFailed is returned by submitters when the collaborator reports failure
	ErrSubmissionFailed = errors.New("booking: submission failed")

	// ErrDuplicateSubmission is returned by a Guard when a submission is already in flight
	ErrDuplicateSubmission = errors.New("booking: submission already in flight")
)
