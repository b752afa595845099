package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/tholdem/holdem-staff/internal/config"
	"github.com/tholdem/holdem-staff/pkg/core/dates"
	"github.com/tholdem/holdem-staff/pkg/core/model"
	"github.com/tholdem/holdem-staff/pkg/db"
)

// DefinePosting creates an open job posting from a configured template,
// with one date specific requirement for every occurrence of the template's
// recurrence rule between from and to inclusive
func DefinePosting(
	ctx context.Context,
	store db.PostingStore,
	cfg *config.Config,
	logger *zap.Logger,
	templateName, title string,
	from, to time.Time,
) (*model.JobPosting, error) {
	logger.Debug("Defining posting",
		zap.String("template", templateName),
		zap.Time("from", from),
		zap.Time("to", to))

	tmpl, ok := cfg.Template(templateName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, templateName)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("end date %s is before start date %s", to.Format(dates.Layout), from.Format(dates.Layout))
	}

	occurrences, err := expandTemplate(tmpl, from, to)
	if err != nil {
		return nil, err
	}
	if len(occurrences) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoOccurrences, templateName)
	}
	logger.Debug("Expanded template", zap.Int("dates", len(occurrences)))

	if title == "" {
		title = tmpl.Name
	}
	createdAt := timeNow()
	posting := &model.JobPosting{
		ID:        uuid.New().String(),
		Title:     title,
		Location:  tmpl.Location,
		Status:    model.PostingOpen,
		CreatedAt: &createdAt,
	}
	for _, day := range occurrences {
		posting.DateSpecificRequirements = append(posting.DateSpecificRequirements, model.DateSpecificRequirement{
			Date:      dates.FromString(day),
			TimeSlots: templateTimeSlots(tmpl),
		})
	}

	if err := store.InsertPosting(ctx, posting); err != nil {
		return nil, fmt.Errorf("failed to insert posting: %w", err)
	}

	logger.Info("Posting defined",
		zap.String("posting_id", posting.ID),
		zap.Int("dates", len(occurrences)))
	return posting, nil
}

// expandTemplate lists the canonical dates the template's rule produces in
// the window. A COUNT in the rule applies from the window start.
func expandTemplate(tmpl *config.PostingTemplate, from, to time.Time) ([]string, error) {
	rule, err := rrule.StrToRRule(tmpl.RRule)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rrule for template %s: %w", tmpl.Name, err)
	}

	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 0, time.UTC)
	rule.DTStart(start)

	var out []string
	for _, occurrence := range rule.Between(start, end, true) {
		out = append(out, occurrence.Format(dates.Layout))
	}
	return out, nil
}

// templateTimeSlots copies the template's slots so postings never share role slices
func templateTimeSlots(tmpl *config.PostingTemplate) []model.TimeSlot {
	slots := make([]model.TimeSlot, 0, len(tmpl.TimeSlots))
	for _, ts := range tmpl.TimeSlots {
		slot := model.TimeSlot{
			Time:                ts.Time,
			IsTimeToBeAnnounced: ts.TimeToBeAnnounced,
			Roles:               append([]model.RoleRequirement(nil), ts.Roles...),
		}
		if slot.IsTimeToBeAnnounced && slot.Time == "" {
			slot.Time = model.TimeToBeAnnounced
		}
		slots = append(slots, slot)
	}
	return slots
}
