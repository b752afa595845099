package services

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/tholdem/holdem-staff/pkg/clients/sheetsclient"
	"github.com/tholdem/holdem-staff/pkg/core/model"
	"github.com/tholdem/holdem-staff/pkg/db"
)

// RosterPublisher writes a roster to a spreadsheet and returns the tab it used
type RosterPublisher interface {
	PublishRoster(spreadsheetID string, roster *sheetsclient.Roster) (string, error)
}

// PublishRoster publishes the confirmed staff of a posting to a spreadsheet
// tab, one row per date, time slot and role
func PublishRoster(
	ctx context.Context,
	store db.PostingStore,
	publisher RosterPublisher,
	logger *zap.Logger,
	postingID, spreadsheetID string,
) (string, error) {
	if spreadsheetID == "" {
		return "", fmt.Errorf("spreadsheet id is required")
	}

	logger.Debug("Publishing roster",
		zap.String("posting_id", postingID),
		zap.String("spreadsheet_id", spreadsheetID))

	posting, err := store.GetPosting(ctx, postingID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch posting: %w", err)
	}

	roster := BuildRoster(posting, logger)
	logger.Debug("Built roster", zap.Int("rows", len(roster.Rows)))

	tab, err := publisher.PublishRoster(spreadsheetID, roster)
	if err != nil {
		return "", fmt.Errorf("failed to publish roster: %w", err)
	}

	logger.Info("Roster published",
		zap.String("posting_id", postingID),
		zap.String("tab", tab))
	return tab, nil
}

// BuildRoster lays out required and confirmed staff of a posting. Confirmed
// staff without a matching requirement get rows of their own with nothing required.
func BuildRoster(posting *model.JobPosting, logger *zap.Logger) *sheetsclient.Roster {
	roster := &sheetsclient.Roster{PostingID: posting.ID, Title: posting.Title}
	index := make(map[string]int)
	key := func(date, timeSlot, role string) string {
		return date + "|" + timeSlot + "|" + role
	}

	for _, req := range posting.DateSpecificRequirements {
		date, err := req.Date.Canonical()
		if err != nil || date == "" {
			logger.Warn("Skipping requirement without a usable date", zap.Error(err))
			continue
		}
		for _, ts := range req.TimeSlots {
			for _, role := range ts.Roles {
				k := key(date, ts.Time, role.Name)
				if i, ok := index[k]; ok {
					roster.Rows[i].Required += role.Count
					continue
				}
				index[k] = len(roster.Rows)
				roster.Rows = append(roster.Rows, sheetsclient.RosterRow{
					Date:     date,
					Time:     ts.Time,
					Role:     role.Name,
					Required: role.Count,
				})
			}
		}
	}

	for _, staff := range posting.ConfirmedStaff {
		k := key(staff.Date, staff.TimeSlot, staff.Role)
		i, ok := index[k]
		if !ok {
			i = len(roster.Rows)
			index[k] = i
			roster.Rows = append(roster.Rows, sheetsclient.RosterRow{
				Date: staff.Date,
				Time: staff.TimeSlot,
				Role: staff.Role,
			})
		}
		name := staff.Name
		if name == "" {
			name = staff.UserID
		}
		roster.Rows[i].Staff = append(roster.Rows[i].Staff, name)
	}

	sort.SliceStable(roster.Rows, func(i, j int) bool {
		a, b := roster.Rows[i], roster.Rows[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		return a.Time < b.Time
	})
	return roster
}
