package services

import "errors"

var (
	// ErrNoAssignments is returned when a confirmation names nothing to confirm
	ErrNoAssignments = errors.New("no assignments to confirm")
	// ErrInvalidAssignment is returned when an assignment lacks a time slot, role or date
	ErrInvalidAssignment = errors.New("invalid assignment")
	// ErrDuplicateConfirmation is returned when an applicant would be confirmed
	// twice on the same date
	ErrDuplicateConfirmation = errors.New("applicant already confirmed on date")
	// ErrRoleFull is returned when a role already has its required headcount
	ErrRoleFull = errors.New("role is full")
	// ErrApplicationCancelled is returned when acting on a cancelled application
	ErrApplicationCancelled = errors.New("application is cancelled")
	// ErrNotConfirmed is returned when undoing a confirmation that does not exist
	ErrNotConfirmed = errors.New("application is not confirmed")
	// ErrUnknownTemplate is returned when no posting template has the requested name
	ErrUnknownTemplate = errors.New("unknown posting template")
	// ErrNoOccurrences is returned when a template yields no dates in the requested range
	ErrNoOccurrences = errors.New("template has no dates in range")
)
