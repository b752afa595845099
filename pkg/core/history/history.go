package history

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/tholdem/holdem-staff/pkg/core/model"
)

// ErrNoOriginal is returned when a confirmation is undone on an application
// that never recorded its original assignments
var ErrNoOriginal = errors.New("original application data not found")

// ErrNilApplication is returned when no application is supplied
var ErrNilApplication = errors.New("application is nil")

// Service answers questions about an application's confirmation history.
// It holds no state and is safe for concurrent use.
type Service struct{}

// NewService creates a history service
func NewService() *Service {
	return &Service{}
}

// OriginalApplicationData returns the assignments as first applied for,
// falling back to the current assignments
func (s *Service) OriginalApplicationData(app *model.Application) ([]model.Assignment, error) {
	if app == nil {
		return nil, ErrNilApplication
	}
	if app.OriginalApplication != nil && app.OriginalApplication.Assignments != nil {
		return app.OriginalApplication.Assignments, nil
	}
	if app.Assignments != nil {
		return app.Assignments, nil
	}
	return []model.Assignment{}, nil
}

// ConfirmationHistory returns every confirmation recorded on app, oldest first
func (s *Service) ConfirmationHistory(app *model.Application) []model.ApplicationHistoryEntry {
	if app == nil || app.ConfirmationHistory == nil {
		return []model.ApplicationHistoryEntry{}
	}
	return app.ConfirmationHistory
}

// CurrentConfirmation returns the latest confirmation that has not been cancelled
func (s *Service) CurrentConfirmation(app *model.Application) *model.ApplicationHistoryEntry {
	history := s.ConfirmationHistory(app)
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].CancelledAt == nil {
			return &history[i]
		}
	}
	return nil
}

// ConfirmedSelections returns the assignments a manager actually confirmed.
// Applications that are not confirmed have none.
func (s *Service) ConfirmedSelections(app *model.Application) ([]model.Assignment, error) {
	if app == nil {
		return nil, ErrNilApplication
	}
	if app.Status != model.StatusConfirmed {
		return []model.Assignment{}, nil
	}
	if current := s.CurrentConfirmation(app); current != nil && current.Assignments != nil {
		return current.Assignments, nil
	}
	if app.Assignments != nil {
		return app.Assignments, nil
	}
	return []model.Assignment{}, nil
}

// Validate checks that app carries the fields the history operations rely on.
// All problems found are returned joined together.
func Validate(app *model.Application) error {
	if app == nil {
		return ErrNilApplication
	}

	var errs []error
	if app.ApplicantID == "" {
		errs = append(errs, errors.New("applicantId is missing"))
	}
	if !slices.Contains([]model.ApplicationStatus{model.StatusApplied, model.StatusConfirmed, model.StatusCancelled}, app.Status) {
		errs = append(errs, fmt.Errorf("invalid status %q", app.Status))
	}

	if app.Assignments == nil {
		errs = append(errs, errors.New("assignments are missing"))
	} else if len(app.Assignments) == 0 {
		errs = append(errs, errors.New("assignments are empty"))
	}
	for i, a := range app.Assignments {
		if a.Role == "" {
			errs = append(errs, fmt.Errorf("assignments[%d]: role is missing", i))
		}
		if a.TimeSlot == "" {
			errs = append(errs, fmt.Errorf("assignments[%d]: timeSlot is missing", i))
		}
		if len(a.Dates) == 0 {
			errs = append(errs, fmt.Errorf("assignments[%d]: dates are empty", i))
		}
	}

	if app.Status == model.StatusConfirmed {
		if app.OriginalApplication == nil || len(app.OriginalApplication.Assignments) == 0 {
			errs = append(errs, errors.New("confirmed application has no original assignments"))
		}
		if len(app.ConfirmationHistory) == 0 {
			errs = append(errs, errors.New("confirmed application has no confirmation history"))
		}
	}

	return errors.Join(errs...)
}

// Confirm records a confirmation of assignments on app. The assignments
// held before the first confirmation are preserved as the original application.
func Confirm(app *model.Application, assignments []model.Assignment, now time.Time) error {
	if app == nil {
		return ErrNilApplication
	}

	if app.OriginalApplication == nil {
		original := app.Assignments
		if original == nil {
			original = []model.Assignment{}
		}
		appliedAt := app.AppliedAt
		if appliedAt == nil {
			appliedAt = &now
		}
		app.OriginalApplication = &model.OriginalApplication{
			Assignments: original,
			AppliedAt:   appliedAt,
		}
	}

	app.ConfirmationHistory = append(app.ConfirmationHistory, model.ApplicationHistoryEntry{
		ConfirmedAt: now,
		Assignments: assignments,
	})
	app.Status = model.StatusConfirmed
	app.Assignments = assignments
	app.ConfirmedAt = &now
	app.UpdatedAt = &now
	return nil
}

// CancelConfirmation undoes the latest confirmation and restores the
// original assignments
func CancelConfirmation(app *model.Application, now time.Time) error {
	if app == nil {
		return ErrNilApplication
	}
	if app.OriginalApplication == nil {
		return ErrNoOriginal
	}

	if n := len(app.ConfirmationHistory); n > 0 {
		app.ConfirmationHistory[n-1].CancelledAt = &now
	}
	app.Status = model.StatusApplied
	app.Assignments = app.OriginalApplication.Assignments
	app.CancelledAt = &now
	app.UpdatedAt = &now
	return nil
}

// Cancel marks the application itself as cancelled
func Cancel(app *model.Application, now time.Time) error {
	if app == nil {
		return ErrNilApplication
	}
	app.Status = model.StatusCancelled
	app.CancelledAt = &now
	app.UpdatedAt = &now
	return nil
}
