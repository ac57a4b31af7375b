package events

import "errors"

var (
	ErrEventNotFound         = errors.New("Event not found")
	ErrForbidden             = errors.New("Only the event organizer can perform this action")
	ErrInvalidDates          = errors.New("End date must be after start date")
	ErrInvalidCapacity       = errors.New("Maximum volunteers must be a positive number")
	ErrEventClosed           = errors.New("Event is already completed or cancelled")
	ErrCapacityBelowApproved = errors.New("Maximum volunteers cannot be lower than the approved count")
)
