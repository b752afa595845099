package grouping

import (
	"slices"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/tholdem/holdem-staff/pkg/core/dates"
	"github.com/tholdem/holdem-staff/pkg/core/model"
)

// Grouper arranges normalized selections for display. It is safe for
// concurrent use when its formatter is.
type Grouper struct {
	logger    *zap.Logger
	formatter dates.DisplayFormatter
}

// New creates a grouper. A nil formatter falls back to uncached formatting.
func New(logger *zap.Logger, formatter dates.DisplayFormatter) *Grouper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if formatter == nil {
		formatter = dates.FormatFunc(dates.FormatDateDisplay)
	}
	return &Grouper{logger: logger.Named("grouping"), formatter: formatter}
}

func (g *Grouper) joinDisplay(ds []string) string {
	formatted := make([]string, 0, len(ds))
	for _, d := range ds {
		formatted = append(formatted, g.formatter.Format(d))
	}
	return strings.Join(formatted, ", ")
}

// rangeDisplay renders a run of dates as first~last when consecutive, else as a list
func (g *Grouper) rangeDisplay(sorted []string) (string, bool) {
	if len(sorted) > 1 && dates.IsConsecutiveDates(sorted) {
		return g.formatter.Format(sorted[0]) + "~" + g.formatter.Format(sorted[len(sorted)-1]), true
	}
	return g.joinDisplay(sorted), false
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// ByConsecutiveDates groups selections into display cards. Group-checked
// selections spanning several dates merge by group id and time slot; every
// other selection gets its own card. Selections without any date arrays are
// grouped by date and time slot instead.
func (g *Grouper) ByConsecutiveDates(selections []model.Selection) []ConsecutiveDateGroup {
	hasDates := slices.ContainsFunc(selections, func(s model.Selection) bool { return s.Dates != nil })
	if !hasDates {
		return g.byDateAndTime(selections)
	}

	type merged struct {
		dates []string
		time  string
		roles []string
	}
	groups := make(map[string]*merged)
	var order []string
	var individual []model.Selection

	for _, s := range selections {
		if s.CheckMethod != model.CheckMethodGroup || len(s.Dates) <= 1 {
			individual = append(individual, s)
			continue
		}

		time := orDefault(s.Time, unknownTime)
		key := orDefault(s.GroupID, "group") + "|" + time
		grp, ok := groups[key]
		if !ok {
			sorted := slices.Clone(s.Dates)
			sort.Strings(sorted)
			grp = &merged{dates: sorted, time: time, roles: []string{}}
			groups[key] = grp
			order = append(order, key)
		}
		if s.Role != "" && !slices.Contains(grp.roles, s.Role) {
			grp.roles = append(grp.roles, s.Role)
		}
	}

	out := make([]ConsecutiveDateGroup, 0, len(order)+len(individual))
	for _, key := range order {
		grp := groups[key]
		display, consecutive := g.rangeDisplay(grp.dates)
		out = append(out, ConsecutiveDateGroup{
			Time:             grp.time,
			Roles:            grp.roles,
			Dates:            grp.dates,
			IsConsecutive:    consecutive,
			DisplayDateRange: display,
		})
	}

	for _, s := range individual {
		ds := s.Dates
		if ds == nil {
			ds = []string{s.Date}
		}
		ds = slices.Clone(ds)
		out = append(out, ConsecutiveDateGroup{
			Time:             orDefault(s.Time, unknownTime),
			Roles:            []string{orDefault(s.Role, unknownRole)},
			Dates:            ds,
			IsConsecutive:    false,
			DisplayDateRange: g.joinDisplay(ds),
		})
	}

	return out
}

// byDateAndTime is the grouping used for selections that predate date arrays
func (g *Grouper) byDateAndTime(selections []model.Selection) []ConsecutiveDateGroup {
	type bucket struct {
		time  string
		roles []string
		date  string
	}
	buckets := make(map[string]*bucket)
	var order []string

	for _, s := range selections {
		time := orDefault(s.Time, unknownTime)
		role := orDefault(s.Role, unknownRole)
		date := orDefault(s.Date, dates.NoDate)

		key := date + "|" + time
		b, ok := buckets[key]
		if !ok {
			b = &bucket{time: time, roles: []string{}, date: date}
			buckets[key] = b
			order = append(order, key)
		}
		if !slices.Contains(b.roles, role) {
			b.roles = append(b.roles, role)
		}
	}

	out := make([]ConsecutiveDateGroup, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		group := ConsecutiveDateGroup{
			Time:  b.time,
			Roles: b.roles,
			Dates: []string{b.date},
		}
		if b.date == dates.NoDate {
			group.DisplayDateRange = dates.UnknownDateLabel
		} else {
			group.DisplayDateRange = g.formatter.Format(b.date)
		}
		out = append(out, group)
	}
	return out
}

// ByTimeAndRole groups selections by time slot and role, collecting the
// distinct dates of each in ascending order
func (g *Grouper) ByTimeAndRole(selections []model.Selection) []LegacyApplicationGroup {
	groups := make(map[string]*LegacyApplicationGroup)
	var order []string

	for _, s := range selections {
		key := s.Time + "|" + s.Role
		grp, ok := groups[key]
		if !ok {
			grp = &LegacyApplicationGroup{
				Time:  orDefault(s.Time, unknownTime),
				Role:  s.Role,
				Dates: []string{},
			}
			groups[key] = grp
			order = append(order, key)
		}
		if s.Date != "" && s.Date != dates.NoDate && !slices.Contains(grp.Dates, s.Date) {
			grp.Dates = append(grp.Dates, s.Date)
		}
	}

	out := make([]LegacyApplicationGroup, 0, len(order))
	for _, key := range order {
		grp := groups[key]
		sort.Strings(grp.Dates)
		out = append(out, *grp)
	}
	return out
}

// MultiDaySelections groups selections with a multi-day duration by their
// date range
func (g *Grouper) MultiDaySelections(selections []model.Selection) []MultiDayGroup {
	groups := make(map[string]*MultiDayGroup)
	var order []string

	for _, s := range selections {
		if s.Duration == nil || s.Duration.Type != model.DurationMulti || s.Duration.EndDate.IsZero() || s.Date == "" {
			continue
		}

		end, err := s.Duration.EndDate.Canonical()
		if err != nil {
			g.logger.Error("Failed to convert duration end date", zap.Error(err))
		}

		key := s.Date + "_" + end
		grp, ok := groups[key]
		if !ok {
			days := dates.GenerateDateRange(s.Date, end)
			display := g.formatter.Format(s.Date)
			if len(days) != 1 {
				display = g.formatter.Format(s.Date) + " ~ " + g.formatter.Format(end)
			}
			grp = &MultiDayGroup{
				StartDate:        s.Date,
				EndDate:          end,
				Dates:            days,
				DayCount:         len(days),
				DisplayDateRange: display,
				TimeSlotRoles:    []TimeSlotRole{},
			}
			groups[key] = grp
			order = append(order, key)
		}

		exists := slices.ContainsFunc(grp.TimeSlotRoles, func(tr TimeSlotRole) bool {
			return tr.TimeSlot == s.Time && tr.Role == s.Role
		})
		if !exists {
			grp.TimeSlotRoles = append(grp.TimeSlotRoles, TimeSlotRole{TimeSlot: s.Time, Role: s.Role, Selection: s})
		}
	}

	out := make([]MultiDayGroup, 0, len(order))
	for _, key := range order {
		out = append(out, *groups[key])
	}
	return out
}

// SingleDaySelections buckets selections by date, ascending with undated
// selections last
func (g *Grouper) SingleDaySelections(selections []model.Selection) []model.DateGroupedSelections {
	buckets := make(map[string][]model.Selection)
	var order []string
	for _, s := range selections {
		key := orDefault(s.Date, dates.NoDate)
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], s)
	}

	out := make([]model.DateGroupedSelections, 0, len(order))
	for _, key := range order {
		out = append(out, model.DateGroupedSelections{
			Date:        key,
			DisplayDate: g.formatter.Format(key),
			Selections:  buckets[key],
			TotalCount:  len(buckets[key]),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return dates.Less(out[i].Date, out[j].Date)
	})
	return out
}

// coveredDates returns the dated days a selection applies to: its date
// array when present, else its single date
func coveredDates(s model.Selection) []string {
	var out []string
	src := s.Dates
	if len(src) == 0 {
		src = []string{s.Date}
	}
	for _, d := range src {
		if d != "" && d != dates.NoDate && !slices.Contains(out, d) {
			out = append(out, d)
		}
	}
	return out
}

// ConsecutiveDatesForUnconfirmed groups prospective selections by runs of
// adjacent dates first, then by time slot and role within each run. A
// selection joins every run containing one of its dates; its dates outside
// any run of two or more days are grouped per date, so no date is dropped.
func (g *Grouper) ConsecutiveDatesForUnconfirmed(selections []model.Selection) UnconfirmedGroups {
	result := UnconfirmedGroups{
		ConsecutiveGroups: []ConsecutiveDateGroupForUnconfirmed{},
		SingleDateGroups:  []model.DateGroupedSelections{},
	}
	if len(selections) == 0 {
		return result
	}

	covered := make([][]string, len(selections))
	var all []string
	for i, s := range selections {
		covered[i] = coveredDates(s)
		for _, d := range covered[i] {
			if !slices.Contains(all, d) {
				all = append(all, d)
			}
		}
	}
	if len(all) == 0 {
		result.SingleDateGroups = g.SingleDaySelections(selections)
		return result
	}
	sort.Strings(all)

	inRun := make(map[string]bool)
	for _, run := range dates.FindConsecutiveDateGroups(all) {
		if len(run) < 2 {
			continue
		}
		for _, d := range run {
			inRun[d] = true
		}

		byTimeRole := make(map[string]*TimeRoleSelections)
		var order []string
		for i, s := range selections {
			if !slices.ContainsFunc(covered[i], func(d string) bool { return slices.Contains(run, d) }) {
				continue
			}
			key := s.Time + "_" + s.Role
			tr, ok := byTimeRole[key]
			if !ok {
				tr = &TimeRoleSelections{Time: s.Time, Role: s.Role}
				byTimeRole[key] = tr
				order = append(order, key)
			}
			tr.OriginalSelections = append(tr.OriginalSelections, s)
		}

		timeRoles := make([]TimeRoleSelections, 0, len(order))
		for _, key := range order {
			timeRoles = append(timeRoles, *byTimeRole[key])
		}

		first, last := run[0], run[len(run)-1]
		result.ConsecutiveGroups = append(result.ConsecutiveGroups, ConsecutiveDateGroupForUnconfirmed{
			Dates:              run,
			DisplayDateRange:   g.formatter.Format(first) + " ~ " + g.formatter.Format(last),
			DayCount:           len(run),
			IsConsecutive:      true,
			TimeRoleSelections: timeRoles,
		})
	}

	var remaining []model.Selection
	for i, s := range selections {
		if len(covered[i]) == 0 {
			remaining = append(remaining, s)
			continue
		}
		for _, d := range covered[i] {
			if inRun[d] {
				continue
			}
			single := s
			single.Date = d
			remaining = append(remaining, single)
		}
	}
	result.SingleDateGroups = g.SingleDaySelections(remaining)
	return result
}
