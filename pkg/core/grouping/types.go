package grouping

import "github.com/tholdem/holdem-staff/pkg/core/model"

const (
	unknownTime = "시간 미정"
	unknownRole = "역할 미정"
)

// ConsecutiveDateGroup is a card of one time slot across one or more dates
type ConsecutiveDateGroup struct {
	Time             string   `json:"time"`
	Roles            []string `json:"roles"`
	Dates            []string `json:"dates"`
	IsConsecutive    bool     `json:"isConsecutive"`
	DisplayDateRange string   `json:"displayDateRange"`
	ConfirmedCount   int      `json:"confirmedCount"`
	RequiredCount    int      `json:"requiredCount"`
}

// LegacyApplicationGroup collects the dates applied for under one time slot and role
type LegacyApplicationGroup struct {
	Time           string   `json:"time"`
	Role           string   `json:"role"`
	Dates          []string `json:"dates"`
	ConfirmedCount int      `json:"confirmedCount"`
	RequiredCount  int      `json:"requiredCount"`
}

// TimeSlotRole is a distinct time slot and role within a multi-day range
type TimeSlotRole struct {
	TimeSlot  string          `json:"timeSlot"`
	Role      string          `json:"role"`
	Selection model.Selection `json:"selection"`
}

// MultiDayGroup is every selection sharing one multi-day date range
type MultiDayGroup struct {
	StartDate        string         `json:"startDate"`
	EndDate          string         `json:"endDate"`
	Dates            []string       `json:"dates"`
	DayCount         int            `json:"dayCount"`
	DisplayDateRange string         `json:"displayDateRange"`
	TimeSlotRoles    []TimeSlotRole `json:"timeSlotRoles"`
}

// TimeRoleSelections collects selections of one time slot and role within a date run
type TimeRoleSelections struct {
	Time               string            `json:"time"`
	Role               string            `json:"role"`
	OriginalSelections []model.Selection `json:"originalSelections"`
}

// ConsecutiveDateGroupForUnconfirmed is a run of two or more adjacent dates
// with every time slot and role chosen on any of them
type ConsecutiveDateGroupForUnconfirmed struct {
	Dates              []string             `json:"dates"`
	DisplayDateRange   string               `json:"displayDateRange"`
	DayCount           int                  `json:"dayCount"`
	IsConsecutive      bool                 `json:"isConsecutive"`
	TimeRoleSelections []TimeRoleSelections `json:"timeRoleSelections"`
}

// UnconfirmedGroups splits prospective selections into date runs and single days
type UnconfirmedGroups struct {
	ConsecutiveGroups []ConsecutiveDateGroupForUnconfirmed `json:"consecutiveGroups"`
	SingleDateGroups  []model.DateGroupedSelections        `json:"singleDateGroups"`
}
