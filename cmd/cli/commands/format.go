package commands

import (
	"fmt"
	"strings"

	"github.com/tholdem/holdem-staff/pkg/core/grouping"
	"github.com/tholdem/holdem-staff/pkg/core/model"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorDim    = "\033[2m"
)

// headcountColor picks green when a role is fully staffed, yellow when at
// least half staffed and red otherwise. Roles without a requirement are dim.
func headcountColor(confirmed, required int, green, yellow, red, dim string) string {
	switch {
	case required <= 0:
		return dim
	case confirmed >= required:
		return green
	case confirmed*2 >= required:
		return yellow
	default:
		return red
	}
}

func formatHeadcount(confirmed, required int) string {
	color := headcountColor(confirmed, required, colorGreen, colorYellow, colorRed, colorDim)
	if required <= 0 {
		return fmt.Sprintf("%s%d/-%s", color, confirmed, colorReset)
	}
	return fmt.Sprintf("%s%d/%d%s", color, confirmed, required, colorReset)
}

func statusLabel(status model.ApplicationStatus) string {
	switch status {
	case model.StatusConfirmed:
		return colorGreen + "confirmed" + colorReset
	case model.StatusCancelled:
		return colorDim + "cancelled" + colorReset
	default:
		return string(status)
	}
}

func attendanceLabel(status model.AttendanceStatus) string {
	switch status {
	case model.AttendanceCheckedIn:
		return colorGreen + "checked in" + colorReset
	case model.AttendanceCheckedOut:
		return colorDim + "checked out" + colorReset
	case model.AttendanceAbsent:
		return colorRed + "absent" + colorReset
	default:
		return "not started"
	}
}

// groupLine renders one display group as "range  time  roles  counts"
func groupLine(g grouping.ConsecutiveDateGroup) string {
	return fmt.Sprintf("%-28s %-8s %-20s %s",
		g.DisplayDateRange, g.Time, strings.Join(g.Roles, ", "), formatHeadcount(g.ConfirmedCount, g.RequiredCount))
}
