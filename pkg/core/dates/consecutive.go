package dates

import (
	"math"
	"time"

	"github.com/teambition/rrule-go"
)

// parseDay parses a canonical date at UTC midnight
func parseDay(s string) (time.Time, bool) {
	if t, err := time.Parse(Layout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// dayDelta returns the rounded number of days from a to b
func dayDelta(a, b string) (int, bool) {
	ta, ok := parseDay(a)
	if !ok {
		return 0, false
	}
	tb, ok := parseDay(b)
	if !ok {
		return 0, false
	}
	return int(math.Round(tb.Sub(ta).Hours() / 24)), true
}

// IsConsecutiveDates reports whether each adjacent pair of sorted dates is
// exactly one day apart. Pairs containing an unparseable date are skipped.
func IsConsecutiveDates(sorted []string) bool {
	for i := 1; i < len(sorted); i++ {
		delta, ok := dayDelta(sorted[i-1], sorted[i])
		if !ok {
			continue
		}
		if delta != 1 {
			return false
		}
	}
	return true
}

// FindConsecutiveDateGroups splits sorted dates into maximal runs of
// consecutive days, preserving input order
func FindConsecutiveDateGroups(sorted []string) [][]string {
	groups := [][]string{}
	if len(sorted) == 0 {
		return groups
	}

	current := []string{sorted[0]}
	for i := 1; i < len(sorted); i++ {
		if delta, ok := dayDelta(sorted[i-1], sorted[i]); ok && delta == 1 {
			current = append(current, sorted[i])
			continue
		}
		groups = append(groups, current)
		current = []string{sorted[i]}
	}
	return append(groups, current)
}

// GenerateDateRange enumerates every day from start to end inclusive.
// Invalid bounds or an end before start yield an empty slice.
func GenerateDateRange(start, end string) []string {
	from, ok := parseDay(start)
	if !ok {
		return []string{}
	}
	to, ok := parseDay(end)
	if !ok || to.Before(from) {
		return []string{}
	}

	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	to = time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: from,
		Until:   to,
	})
	if err != nil {
		return []string{}
	}

	occurrences := r.All()
	out := make([]string, 0, len(occurrences))
	for _, day := range occurrences {
		out = append(out, day.Format(Layout))
	}
	return out
}
