package applications

import "errors"

// Service errors. Handlers map these onto the HTTP taxonomy:
// not-found 404, forbidden 403, conflict 409, closed/validation 400.
var (
	ErrEventNotFound       = errors.New("Event not found")
	ErrApplicationNotFound = errors.New("Application not found")
	ErrForbidden           = errors.New("Only the event organizer can perform this action")
	ErrDuplicateApplication = errors.New("You have already applied to this event")
	ErrEventClosed         = errors.New("Event is not accepting applications")
	ErrEventStarted        = errors.New("Event has already started")
	ErrInvalidState        = errors.New("Application has already been decided")
	ErrNotDecided          = errors.New("Application is still pending")
	// ErrCapacityExceeded is a normal outcome under contention, not a fault:
	// the last slot was taken by a concurrent approval.
	ErrCapacityExceeded = errors.New("Event is already at full capacity")
	ErrNotApproved      = errors.New("Hours can only be recorded for approved applications")
	ErrInvalidHours     = errors.New("Hours must be zero or positive")
	ErrInvalidDecision  = errors.New("Decision must be approve or reject")
)
