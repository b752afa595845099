package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/tholdem/holdem-staff/pkg/core/dates"
	"github.com/tholdem/holdem-staff/pkg/core/grouping"
	"github.com/tholdem/holdem-staff/pkg/core/model"
	"github.com/tholdem/holdem-staff/pkg/core/selection"
	"github.com/tholdem/holdem-staff/pkg/core/validation"
	"github.com/tholdem/holdem-staff/pkg/db"
)

// DocumentStore reads applications together with their postings
type DocumentStore interface {
	db.PostingStore
	db.ApplicationStore
}

// SelectionsView is everything shown for one applicant's selections
type SelectionsView struct {
	ApplicationID string                          `json:"applicationId"`
	ApplicantID   string                          `json:"applicantId"`
	ApplicantName string                          `json:"applicantName"`
	Status        model.ApplicationStatus         `json:"status"`
	Schema        selection.Schema                `json:"schema"`
	Selections    []model.Selection               `json:"selections"`
	ByDate        []model.DateGroupedSelections   `json:"byDate"`
	Groups        []grouping.ConsecutiveDateGroup `json:"groups"`
	MultiDay      []grouping.MultiDayGroup        `json:"multiDay"`
	Unconfirmed   *grouping.UnconfirmedGroups     `json:"unconfirmed,omitempty"`
}

// ApplicantSummary is one row of a posting's applicant list
type ApplicantSummary struct {
	ApplicationID  string                  `json:"applicationId"`
	ApplicantID    string                  `json:"applicantId"`
	ApplicantName  string                  `json:"applicantName"`
	Status         model.ApplicationStatus `json:"status"`
	Schema         selection.Schema        `json:"schema"`
	SelectionCount int                     `json:"selectionCount"`
	FirstDate      string                  `json:"firstDate,omitempty"`
}

// loadPosting fetches a posting, treating a missing one as nil so selections
// can still be shown without role recovery or headcounts
func loadPosting(ctx context.Context, store db.PostingStore, logger *zap.Logger, postingID string) (*model.JobPosting, error) {
	if postingID == "" {
		return nil, nil
	}
	posting, err := store.GetPosting(ctx, postingID)
	if errors.Is(err, db.ErrNotFound) {
		logger.Warn("Job posting not found", zap.String("posting_id", postingID))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch posting: %w", err)
	}
	return posting, nil
}

// ViewApplicantSelections loads an application and arranges its selections
// for display. An empty postingID uses the application's own posting.
func ViewApplicantSelections(
	ctx context.Context,
	store DocumentStore,
	normalizer *selection.Normalizer,
	grouper *grouping.Grouper,
	logger *zap.Logger,
	postingID, applicationID string,
) (*SelectionsView, error) {
	logger.Debug("Viewing applicant selections",
		zap.String("posting_id", postingID),
		zap.String("application_id", applicationID))

	app, err := store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch application: %w", err)
	}
	if postingID == "" {
		postingID = app.PostingID
	}
	if app.PostingID != postingID {
		return nil, fmt.Errorf("application %s is not part of posting %s: %w", applicationID, postingID, db.ErrNotFound)
	}

	posting, err := loadPosting(ctx, store, logger, postingID)
	if err != nil {
		return nil, err
	}

	schema, selections := normalizer.Extract(app, posting)
	logger.Debug("Normalized selections",
		zap.String("schema", string(schema)),
		zap.Int("count", len(selections)))

	groups := grouper.ByConsecutiveDates(selections)
	fillGroupCounts(groups, posting)

	view := &SelectionsView{
		ApplicationID: app.ID,
		ApplicantID:   app.ApplicantID,
		ApplicantName: app.ApplicantName,
		Status:        app.Status,
		Schema:        schema,
		Selections:    selections,
		ByDate:        normalizer.ApplicantSelectionsByDate(app, posting),
		Groups:        groups,
		MultiDay:      grouper.MultiDaySelections(selections),
	}
	if app.Status != model.StatusConfirmed {
		unconfirmed := grouper.ConsecutiveDatesForUnconfirmed(selections)
		view.Unconfirmed = &unconfirmed
	}

	return view, nil
}

// fillGroupCounts sets confirmed and required headcounts on each group,
// summed over its roles. Groups spanning several dates use the busiest date.
func fillGroupCounts(groups []grouping.ConsecutiveDateGroup, posting *model.JobPosting) {
	if posting == nil {
		return
	}
	for i := range groups {
		date := ""
		if len(groups[i].Dates) == 1 && groups[i].Dates[0] != dates.NoDate {
			date = groups[i].Dates[0]
		}
		for _, role := range groups[i].Roles {
			counts := validation.GetStaffCounts(posting, role, groups[i].Time, date)
			groups[i].ConfirmedCount += counts.Confirmed
			groups[i].RequiredCount += counts.Required
		}
	}
}

// ListPostingApplicants summarizes every application to a posting, ordered
// by applicant name
func ListPostingApplicants(
	ctx context.Context,
	store DocumentStore,
	normalizer *selection.Normalizer,
	logger *zap.Logger,
	postingID string,
) ([]ApplicantSummary, error) {
	logger.Debug("Listing applicants", zap.String("posting_id", postingID))

	posting, err := loadPosting(ctx, store, logger, postingID)
	if err != nil {
		return nil, err
	}

	apps, err := store.ListApplications(ctx, postingID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch applications: %w", err)
	}
	logger.Debug("Fetched applications", zap.Int("count", len(apps)))

	summaries := make([]ApplicantSummary, 0, len(apps))
	for i := range apps {
		app := &apps[i]
		schema, selections := normalizer.Extract(app, posting)
		summaries = append(summaries, ApplicantSummary{
			ApplicationID:  app.ID,
			ApplicantID:    app.ApplicantID,
			ApplicantName:  app.ApplicantName,
			Status:         app.Status,
			Schema:         schema,
			SelectionCount: len(selections),
			FirstDate:      firstDate(selections),
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].ApplicantName < summaries[j].ApplicantName
	})
	return summaries, nil
}

// firstDate returns the earliest date across selections, or "" when none has one
func firstDate(selections []model.Selection) string {
	first := ""
	consider := func(d string) {
		if d != "" && d != dates.NoDate && (first == "" || d < first) {
			first = d
		}
	}
	for _, s := range selections {
		consider(s.Date)
		for _, d := range s.Dates {
			consider(d)
		}
	}
	return first
}
