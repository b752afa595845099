// Package validation holds the checks run while a manager picks which of an
// applicant's selections to confirm.
package validation

import (
	"slices"
	"sort"

	"github.com/tholdem/holdem-staff/pkg/core/dates"
	"github.com/tholdem/holdem-staff/pkg/core/model"
)

// DateSelectionStats is how many of the selections on one date are picked
type DateSelectionStats struct {
	Date          string `json:"date"`
	DisplayDate   string `json:"displayDate"`
	TotalCount    int    `json:"totalCount"`
	SelectedCount int    `json:"selectedCount"`
}

// StaffCounts is the confirmed and required headcount of a role and time slot
type StaffCounts struct {
	Confirmed int `json:"confirmed"`
	Required  int `json:"required"`
}

// selectionDates returns every date a selection covers
func selectionDates(s model.Selection) []string {
	if len(s.Dates) > 0 {
		return s.Dates
	}
	if s.Date == "" {
		return nil
	}
	return []string{s.Date}
}

// IsDuplicateInSameDate reports whether candidate falls on a date that
// already has a selection for a different time slot or role
func IsDuplicateInSameDate(selected []model.Selection, candidate model.Selection) bool {
	candidateDates := selectionDates(candidate)
	if len(candidateDates) == 0 {
		return false
	}

	for _, s := range selected {
		if s.Time == candidate.Time && s.Role == candidate.Role {
			continue
		}
		for _, d := range selectionDates(s) {
			if slices.Contains(candidateDates, d) {
				return true
			}
		}
	}
	return false
}

// GetDateSelectionStats counts selections per date and how many of them are
// in selected. Dates are ascending with the no-date bucket last. A nil
// formatter renders dates uncached.
func GetDateSelectionStats(selections, selected []model.Selection, formatter dates.DisplayFormatter) []DateSelectionStats {
	if formatter == nil {
		formatter = dates.FormatFunc(dates.FormatDateDisplay)
	}

	byDate := make(map[string]*DateSelectionStats)
	var order []string
	for _, s := range selections {
		key := s.Date
		if key == "" {
			key = dates.NoDate
		}
		stats, ok := byDate[key]
		if !ok {
			stats = &DateSelectionStats{Date: key, DisplayDate: formatter.Format(key)}
			byDate[key] = stats
			order = append(order, key)
		}
		stats.TotalCount++
		if isSelected(selected, s) {
			stats.SelectedCount++
		}
	}

	out := make([]DateSelectionStats, 0, len(order))
	for _, key := range order {
		out = append(out, *byDate[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return dates.Less(out[i].Date, out[j].Date)
	})
	return out
}

func isSelected(selected []model.Selection, s model.Selection) bool {
	return slices.ContainsFunc(selected, func(o model.Selection) bool {
		return o.Date == s.Date && o.Time == s.Time && o.Role == s.Role
	})
}

// GetStaffCounts returns confirmed and required headcounts for a role and
// time slot. With a date, staff confirmed for that date or without any date
// are counted and the requirement of that date is used. Without a date all
// matching staff are counted and the largest requirement across the
// posting's dates is used, which is only suitable for display.
func GetStaffCounts(posting *model.JobPosting, role, timeSlot, date string) StaffCounts {
	var counts StaffCounts
	if posting == nil {
		return counts
	}

	for _, staff := range posting.ConfirmedStaff {
		if staff.Role != role || staff.TimeSlot != timeSlot {
			continue
		}
		if date == "" || staff.Date == "" || staff.Date == date {
			counts.Confirmed++
		}
	}

	for _, req := range posting.DateSpecificRequirements {
		if date != "" {
			reqDate, err := req.Date.Canonical()
			if err != nil || reqDate != date {
				continue
			}
		}
		for _, ts := range req.TimeSlots {
			if !ts.Matches(timeSlot) {
				continue
			}
			for _, r := range ts.Roles {
				if r.Name == role && r.Count > counts.Required {
					counts.Required = r.Count
				}
			}
		}
	}
	return counts
}

// IsRoleFull reports whether a role with a known requirement has no open places left
func IsRoleFull(posting *model.JobPosting, timeSlot, role, date string) bool {
	counts := GetStaffCounts(posting, role, timeSlot, date)
	return counts.Required > 0 && counts.Confirmed >= counts.Required
}
