package registration

import "errors"

// Failure modes of the registration lifecycle. Handlers map these to
// HTTP statuses; the text is the message surfaced to the caller.
var (
	ErrEventNotFound            = errors.New("Event not found or inactive")
	ErrStudentNotFound          = errors.New("Student not found")
	ErrAlreadyRegistered        = errors.New("Already registered for this event")
	ErrEventFull                = errors.New("Event is full")
	ErrRegistrationNotFound     = errors.New("Registration not found")
	ErrCancellationWindowClosed = errors.New("Cannot cancel within 24 hours of event")
)
