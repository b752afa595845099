package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tholdem/holdem-staff/pkg/core/dates"
	"github.com/tholdem/holdem-staff/pkg/core/history"
	"github.com/tholdem/holdem-staff/pkg/core/model"
	"github.com/tholdem/holdem-staff/pkg/core/validation"
	"github.com/tholdem/holdem-staff/pkg/db"
)

// Notifier sends a plain text message to an applicant
type Notifier interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// ConfirmResult describes a completed confirmation
type ConfirmResult struct {
	Application *model.Application     `json:"application"`
	Staff       []model.ConfirmedStaff `json:"staff"`
	Notified    bool                   `json:"notified"`
}

var timeNow = time.Now

// assignmentRoles returns the roles an assignment confirms
func assignmentRoles(a model.Assignment) []string {
	if len(a.Roles) > 0 {
		return a.Roles
	}
	if a.Role != "" {
		return []string{a.Role}
	}
	return nil
}

func validateAssignments(assignments []model.Assignment) error {
	if len(assignments) == 0 {
		return ErrNoAssignments
	}
	for i, a := range assignments {
		if a.TimeSlot == "" || len(a.Dates) == 0 || len(assignmentRoles(a)) == 0 {
			return fmt.Errorf("%w: assignment %d needs a time slot, role and date", ErrInvalidAssignment, i)
		}
		for _, d := range a.Dates {
			if d == "" {
				return fmt.Errorf("%w: assignment %d has an empty date", ErrInvalidAssignment, i)
			}
		}
	}
	return nil
}

// withoutApplication drops the confirmed staff entries created for app
func withoutApplication(staff []model.ConfirmedStaff, app *model.Application) []model.ConfirmedStaff {
	kept := make([]model.ConfirmedStaff, 0, len(staff))
	for _, s := range staff {
		if s.ApplicationID == app.ID {
			continue
		}
		// Entries written before application ids were recorded
		if s.ApplicationID == "" && s.UserID == app.ApplicantID {
			continue
		}
		kept = append(kept, s)
	}
	return kept
}

// buildConfirmedStaff expands assignments into one entry per role and date,
// rejecting dates the applicant is already confirmed on and full roles
func buildConfirmedStaff(app *model.Application, posting *model.JobPosting, assignments []model.Assignment, now time.Time) ([]model.ConfirmedStaff, error) {
	var entries []model.ConfirmedStaff
	var chosen []model.Selection

	for _, a := range assignments {
		appType := model.ApplicationSingle
		groupID := ""
		if len(a.Dates) > 1 {
			appType = model.ApplicationMulti
			groupID = a.GroupID
			if groupID == "" {
				groupID = uuid.New().String()
			}
		}

		for _, role := range assignmentRoles(a) {
			candidate := model.Selection{Role: role, Time: a.TimeSlot, Dates: a.Dates}
			if validation.IsDuplicateInSameDate(chosen, candidate) {
				return nil, fmt.Errorf("%w: %s %s overlaps another assignment", ErrDuplicateConfirmation, role, a.TimeSlot)
			}
			chosen = append(chosen, candidate)

			for _, date := range a.Dates {
				for _, s := range posting.ConfirmedStaff {
					if s.UserID == app.ApplicantID && s.Date == date {
						return nil, fmt.Errorf("%w: %s", ErrDuplicateConfirmation, date)
					}
				}
				if validation.IsRoleFull(posting, a.TimeSlot, role, date) {
					return nil, fmt.Errorf("%w: %s %s on %s", ErrRoleFull, role, a.TimeSlot, date)
				}

				confirmedAt := now
				entry := model.ConfirmedStaff{
					UserID:             app.ApplicantID,
					Name:               app.ApplicantName,
					Role:               role,
					TimeSlot:           a.TimeSlot,
					Date:               date,
					ApplicationID:      app.ID,
					ApplicationType:    appType,
					ApplicationGroupID: groupID,
					ConfirmedAt:        &confirmedAt,
				}
				// Later assignments see earlier ones when checking headcount
				posting.ConfirmedStaff = append(posting.ConfirmedStaff, entry)
				entries = append(entries, entry)
			}
		}
	}
	return entries, nil
}

// AssignmentsFromSelections turns normalized selections back into
// assignments, typically to confirm an applicant as they applied. An
// applicant works one time slot and role per date, so each date goes to the
// first selection that names it. Selections without a role, time slot or
// date, and the dates lost to an earlier selection, are returned as skipped.
func AssignmentsFromSelections(selections []model.Selection) (assignments []model.Assignment, skipped []model.Selection) {
	claimed := make(map[string]bool)
	for _, s := range selections {
		ds := s.Dates
		if len(ds) == 0 && s.Date != "" && s.Date != dates.NoDate {
			ds = []string{s.Date}
		}
		if s.Role == "" || s.Time == "" || len(ds) == 0 {
			skipped = append(skipped, s)
			continue
		}

		var kept, lost []string
		for _, d := range ds {
			if claimed[d] {
				lost = append(lost, d)
				continue
			}
			claimed[d] = true
			kept = append(kept, d)
		}
		if len(lost) > 0 {
			dropped := s
			dropped.Dates = lost
			dropped.Date = lost[0]
			skipped = append(skipped, dropped)
		}
		if len(kept) == 0 {
			continue
		}

		assignments = append(assignments, model.Assignment{
			TimeSlot:    s.Time,
			Role:        s.Role,
			Dates:       kept,
			IsGrouped:   s.IsGrouped,
			CheckMethod: s.CheckMethod,
			GroupID:     s.GroupID,
			Duration:    s.Duration,
		})
	}
	return assignments, skipped
}

// ConfirmApplication confirms assignments for an application and records the
// applicant as confirmed staff on the posting, replacing any earlier
// confirmation of the same application. A notice is emailed when a notifier
// is given and the applicant has an email address; delivery failures are
// logged and do not undo the confirmation.
func ConfirmApplication(
	ctx context.Context,
	store db.ApplicationStore,
	notifier Notifier,
	logger *zap.Logger,
	applicationID string,
	assignments []model.Assignment,
) (*ConfirmResult, error) {
	logger.Debug("Confirming application",
		zap.String("application_id", applicationID),
		zap.Int("assignments", len(assignments)))

	if err := validateAssignments(assignments); err != nil {
		return nil, err
	}

	result := &ConfirmResult{}
	now := timeNow()
	err := store.UpdateApplicationAndPosting(ctx, applicationID, func(app *model.Application, posting *model.JobPosting) error {
		if app.Status == model.StatusCancelled {
			return ErrApplicationCancelled
		}

		kept := withoutApplication(posting.ConfirmedStaff, app)
		logger.Debug("Replacing earlier confirmed entries",
			zap.Int("removed", len(posting.ConfirmedStaff)-len(kept)))
		posting.ConfirmedStaff = kept

		entries, err := buildConfirmedStaff(app, posting, assignments, now)
		if err != nil {
			return err
		}

		if err := history.Confirm(app, assignments, now); err != nil {
			return fmt.Errorf("failed to record confirmation: %w", err)
		}

		result.Application = app
		result.Staff = entries
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to confirm application: %w", err)
	}

	logger.Info("Application confirmed",
		zap.String("application_id", applicationID),
		zap.Int("confirmed_staff", len(result.Staff)))

	if notifier != nil && result.Application.Email != "" {
		subject, body := confirmationNotice(result.Application, result.Staff)
		if err := notifier.SendEmail(ctx, result.Application.Email, subject, body); err != nil {
			logger.Warn("Failed to send confirmation email",
				zap.String("application_id", applicationID),
				zap.Error(err))
		} else {
			result.Notified = true
		}
	}

	return result, nil
}

// confirmationNotice renders the email sent to a confirmed applicant
func confirmationNotice(app *model.Application, staff []model.ConfirmedStaff) (string, string) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s님, 지원하신 근무가 확정되었습니다.\n\n", app.ApplicantName)
	for _, s := range staff {
		fmt.Fprintf(&b, "- %s %s %s\n", dates.FormatDateDisplay(s.Date), s.TimeSlot, s.Role)
	}
	return "[T-HOLDEM] 근무 확정 안내", b.String()
}

// CancelConfirmation undoes an application's confirmation, restoring the
// assignments originally applied for and removing its confirmed staff entries
func CancelConfirmation(ctx context.Context, store db.ApplicationStore, logger *zap.Logger, applicationID string) (*model.Application, error) {
	logger.Debug("Cancelling confirmation", zap.String("application_id", applicationID))

	var updated *model.Application
	err := store.UpdateApplicationAndPosting(ctx, applicationID, func(app *model.Application, posting *model.JobPosting) error {
		if app.Status != model.StatusConfirmed {
			return ErrNotConfirmed
		}
		if err := history.CancelConfirmation(app, timeNow()); err != nil {
			return fmt.Errorf("failed to restore original application: %w", err)
		}
		posting.ConfirmedStaff = withoutApplication(posting.ConfirmedStaff, app)
		updated = app
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to cancel confirmation: %w", err)
	}

	logger.Info("Confirmation cancelled", zap.String("application_id", applicationID))
	return updated, nil
}

// CancelApplication withdraws an application. A confirmed application also
// gives up its confirmed staff entries.
func CancelApplication(ctx context.Context, store db.ApplicationStore, logger *zap.Logger, applicationID string) (*model.Application, error) {
	logger.Debug("Cancelling application", zap.String("application_id", applicationID))

	var updated *model.Application
	err := store.UpdateApplicationAndPosting(ctx, applicationID, func(app *model.Application, posting *model.JobPosting) error {
		if app.Status == model.StatusCancelled {
			return ErrApplicationCancelled
		}
		posting.ConfirmedStaff = withoutApplication(posting.ConfirmedStaff, app)
		if err := history.Cancel(app, timeNow()); err != nil {
			return fmt.Errorf("failed to cancel application: %w", err)
		}
		updated = app
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to cancel application: %w", err)
	}

	logger.Info("Application cancelled", zap.String("application_id", applicationID))
	return updated, nil
}

// StaffCounts returns the confirmed and required headcount of a role in a
// time slot. An empty date counts across the whole posting.
func StaffCounts(ctx context.Context, store db.PostingStore, logger *zap.Logger, postingID, role, timeSlot, date string) (validation.StaffCounts, error) {
	logger.Debug("Counting staff",
		zap.String("posting_id", postingID),
		zap.String("role", role),
		zap.String("time_slot", timeSlot),
		zap.String("date", date))

	posting, err := store.GetPosting(ctx, postingID)
	if err != nil {
		return validation.StaffCounts{}, fmt.Errorf("failed to fetch posting: %w", err)
	}
	return validation.GetStaffCounts(posting, role, timeSlot, date), nil
}
