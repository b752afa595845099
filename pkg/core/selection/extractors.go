package selection

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/tholdem/holdem-staff/pkg/core/dates"
	"github.com/tholdem/holdem-staff/pkg/core/model"
)

func checkMethodOr(m model.CheckMethod, fallback model.CheckMethod) model.CheckMethod {
	if m == "" {
		return fallback
	}
	return m
}

func firstOr(values []string, fallback string) string {
	if len(values) > 0 && values[0] != "" {
		return values[0]
	}
	return fallback
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// assignmentDuration keeps only the type and end date of an assignment's duration
func assignmentDuration(d *model.Duration) *model.Duration {
	if d == nil {
		return nil
	}
	return &model.Duration{Type: d.Type, EndDate: d.EndDate}
}

func cloneDuration(d *model.Duration) *model.Duration {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

// fromDateAssignments emits one selection per date, time slot and role
func (n *Normalizer) fromDateAssignments(app *model.Application, posting *model.JobPosting) ([]model.Selection, bool) {
	if len(app.DateAssignments) == 0 {
		return nil, false
	}

	var out []model.Selection
	for _, da := range app.DateAssignments {
		for _, sel := range da.Selections {
			role := sel.Role
			if role == "" && posting != nil && sel.TimeSlot != "" && da.Date != "" {
				role = n.recoverRole(posting, sel.TimeSlot, da.Date)
			}
			out = append(out, model.Selection{
				Role:        role,
				Time:        sel.TimeSlot,
				Date:        da.Date,
				Dates:       []string{da.Date},
				IsGrouped:   da.IsConsecutive,
				GroupID:     da.GroupID,
				CheckMethod: checkMethodOr(da.CheckMethod, model.CheckMethodIndividual),
			})
		}
	}
	return out, true
}

// fromAssignments handles both grouped and individual assignment blocks,
// each carrying either a roles list or a single role
func (n *Normalizer) fromAssignments(app *model.Application, posting *model.JobPosting) ([]model.Selection, bool) {
	if len(app.Assignments) == 0 {
		return nil, false
	}

	var out []model.Selection
	for index, a := range app.Assignments {
		var effectiveRole string
		switch {
		case a.CheckMethod == model.CheckMethodGroup && len(a.Roles) > 0:
			effectiveRole = a.Roles[0]
		case a.Role != "":
			effectiveRole = a.Role
		case posting != nil && a.TimeSlot != "" && len(a.Dates) > 0 && a.Dates[0] != "":
			effectiveRole = n.recoverRole(posting, a.TimeSlot, a.Dates[0])
		}

		isGroup := a.CheckMethod == model.CheckMethodGroup || (a.IsGrouped && len(a.Dates) > 1)

		if isGroup && len(a.Dates) >= 1 {
			groupID := a.GroupID
			if groupID == "" {
				groupID = fmt.Sprintf("group-%d", index)
			}
			base := model.Selection{
				Time:        a.TimeSlot,
				Date:        a.Dates[0],
				IsGrouped:   true,
				GroupID:     groupID,
				CheckMethod: model.CheckMethodGroup,
			}
			if a.Roles != nil {
				for _, role := range a.Roles {
					s := base
					s.Role = orDefault(role, effectiveRole)
					s.Dates = slices.Clone(a.Dates)
					s.Duration = assignmentDuration(a.Duration)
					out = append(out, s)
				}
			} else if effectiveRole != "" {
				s := base
				s.Role = effectiveRole
				s.Dates = slices.Clone(a.Dates)
				s.Duration = assignmentDuration(a.Duration)
				out = append(out, s)
			}
			continue
		}

		base := model.Selection{
			Time:        a.TimeSlot,
			Date:        firstOr(a.Dates, ""),
			IsGrouped:   false,
			CheckMethod: checkMethodOr(a.CheckMethod, model.CheckMethodIndividual),
		}
		if a.Roles != nil {
			for _, role := range a.Roles {
				s := base
				s.Role = orDefault(role, effectiveRole)
				s.Dates = slices.Clone(a.Dates)
				s.Duration = assignmentDuration(a.Duration)
				out = append(out, s)
			}
		} else if effectiveRole != "" {
			s := base
			s.Role = effectiveRole
			s.Dates = slices.Clone(a.Dates)
			s.GroupID = a.GroupID
			s.Duration = assignmentDuration(a.Duration)
			out = append(out, s)
		}
	}
	return out, true
}

// fromAssignedGroups reads the older grouped-assignment shape
func (n *Normalizer) fromAssignedGroups(app *model.Application, _ *model.JobPosting) ([]model.Selection, bool) {
	if len(app.AssignedGroups) == 0 {
		return nil, false
	}

	out := make([]model.Selection, 0, len(app.AssignedGroups))
	for _, g := range app.AssignedGroups {
		out = append(out, model.Selection{
			Role:        g.Role,
			Time:        g.TimeSlot,
			Date:        firstOr(g.Dates, ""),
			Dates:       slices.Clone(g.Dates),
			CheckMethod: checkMethodOr(g.CheckMethod, model.CheckMethodIndividual),
			IsGrouped:   len(g.Dates) > 1,
			GroupID:     g.GroupID,
			Duration:    cloneDuration(g.Duration),
		})
	}
	return out, true
}

// fromConfirmed reads what was actually confirmed. A confirmed application
// never falls through to older shapes, even when the history lookup fails.
func (n *Normalizer) fromConfirmed(app *model.Application, _ *model.JobPosting) ([]model.Selection, bool) {
	if app.Status != model.StatusConfirmed {
		return nil, false
	}

	confirmed, err := n.history.ConfirmedSelections(app)
	if err != nil {
		n.logger.Warn("Failed to read confirmed selections",
			zap.String("application_id", app.ID),
			zap.Error(err))
		return []model.Selection{}, true
	}

	out := make([]model.Selection, 0, len(confirmed))
	for _, a := range confirmed {
		ds := slices.Clone(a.Dates)
		if ds == nil {
			ds = []string{}
		}
		out = append(out, model.Selection{
			Role:        a.Role,
			Time:        a.TimeSlot,
			Date:        firstOr(a.Dates, ""),
			Dates:       ds,
			CheckMethod: checkMethodOr(a.CheckMethod, model.CheckMethodIndividual),
			GroupID:     a.GroupID,
			IsGrouped:   a.IsGrouped,
			Duration:    cloneDuration(a.Duration),
		})
	}
	return out, true
}

// fromOriginalData zips the roles, time slots and dates of the original
// application positionally
func (n *Normalizer) fromOriginalData(app *model.Application, _ *model.JobPosting) ([]model.Selection, bool) {
	original, err := n.history.OriginalApplicationData(app)
	if err != nil {
		n.logger.Warn("Failed to read original application data",
			zap.String("application_id", app.ID),
			zap.Error(err))
		return nil, false
	}

	var roles, times, ds []string
	for _, a := range original {
		if a.Role != "" {
			roles = append(roles, a.Role)
		}
		if a.TimeSlot != "" {
			times = append(times, a.TimeSlot)
		}
		for _, d := range a.Dates {
			if d != "" {
				ds = append(ds, d)
			}
		}
	}

	length := max(len(roles), len(times), len(ds))
	if length == 0 {
		return nil, false
	}

	out := make([]model.Selection, 0, length)
	for i := 0; i < length; i++ {
		s := model.Selection{
			Role: at(roles, i),
			Time: at(times, i),
			Date: n.dateString(dates.FromString(at(ds, i))),
		}
		if i < len(app.AssignedDurations) {
			s.Duration = cloneDuration(app.AssignedDurations[i])
		}
		out = append(out, s)
	}
	return out, true
}

// fromLegacyArrays zips the parallel assignedRoles, assignedTimes and
// assignedDates arrays. Missing positions fall back to the first element so
// no position is dropped.
func (n *Normalizer) fromLegacyArrays(app *model.Application, _ *model.JobPosting) ([]model.Selection, bool) {
	if len(app.AssignedRoles) == 0 && len(app.AssignedTimes) == 0 && len(app.AssignedDates) == 0 {
		return nil, false
	}

	length := max(len(app.AssignedRoles), len(app.AssignedTimes), len(app.AssignedDates), 1)
	if mismatchedLengths(length, len(app.AssignedRoles), len(app.AssignedTimes), len(app.AssignedDates)) {
		n.logger.Warn("Legacy assignment arrays differ in length, filling from first element",
			zap.String("application_id", app.ID),
			zap.Int("roles", len(app.AssignedRoles)),
			zap.Int("times", len(app.AssignedTimes)),
			zap.Int("dates", len(app.AssignedDates)))
	}
	out := make([]model.Selection, 0, length)
	for i := 0; i < length; i++ {
		var date string
		switch {
		case len(app.AssignedDates) > 0:
			v := app.AssignedDates[0]
			if i < len(app.AssignedDates) {
				v = app.AssignedDates[i]
			}
			date = n.dateString(v)
		case !app.AssignedDate.IsZero():
			date = n.dateString(app.AssignedDate)
		}

		s := model.Selection{
			Role:        atOrFirst(app.AssignedRoles, i),
			Time:        atOrFirst(app.AssignedTimes, i),
			Date:        date,
			Dates:       []string{date},
			CheckMethod: model.CheckMethodIndividual,
			IsGrouped:   false,
		}
		if i < len(app.AssignedDurations) {
			s.Duration = cloneDuration(app.AssignedDurations[i])
		}
		out = append(out, s)
	}
	return out, true
}

// fromSingleFields reads the oldest single role, time and date fields
func (n *Normalizer) fromSingleFields(app *model.Application, _ *model.JobPosting) ([]model.Selection, bool) {
	if app.AssignedRole == "" || app.AssignedTime == "" {
		return nil, false
	}

	date := n.dateString(app.AssignedDate)
	return []model.Selection{{
		Role:        app.AssignedRole,
		Time:        app.AssignedTime,
		Date:        date,
		Dates:       []string{date},
		CheckMethod: model.CheckMethodIndividual,
		IsGrouped:   false,
	}}, true
}

// mismatchedLengths reports whether any non-empty array is shorter than length
func mismatchedLengths(length int, lengths ...int) bool {
	for _, l := range lengths {
		if l > 0 && l < length {
			return true
		}
	}
	return false
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

func atOrFirst(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	if len(values) > 0 {
		return values[0]
	}
	return ""
}
