package model

import (
	"time"

	"github.com/tholdem/holdem-staff/pkg/core/dates"
)

// ApplicationStatus is the lifecycle state of an application
type ApplicationStatus string

const (
	StatusApplied   ApplicationStatus = "applied"
	StatusConfirmed ApplicationStatus = "confirmed"
	StatusCancelled ApplicationStatus = "cancelled"
)

// CheckMethod records how an applicant picked a set of dates
type CheckMethod string

const (
	CheckMethodGroup      CheckMethod = "group"
	CheckMethodIndividual CheckMethod = "individual"
)

// DurationType describes how long a selection lasts
type DurationType string

const (
	DurationSingle      DurationType = "single"
	DurationConsecutive DurationType = "consecutive"
	DurationMulti       DurationType = "multi"
)

// Duration describes the span of a selection
type Duration struct {
	Type      DurationType    `json:"type,omitempty" bson:"type,omitempty"`
	StartDate string          `json:"startDate,omitempty" bson:"startDate,omitempty"`
	EndDate   dates.DateValue `json:"endDate,omitzero" bson:"endDate,omitempty"`
}

// DateSelection is a single time slot and role picked for one date
type DateSelection struct {
	TimeSlot string `json:"timeSlot" bson:"timeSlot"`
	Role     string `json:"role" bson:"role"`
}

// DateAssignment holds every choice made for one date
type DateAssignment struct {
	Date          string          `json:"date" bson:"date"`
	Selections    []DateSelection `json:"selections" bson:"selections"`
	IsConsecutive bool            `json:"isConsecutive,omitempty" bson:"isConsecutive,omitempty"`
	GroupID       string          `json:"groupId,omitempty" bson:"groupId,omitempty"`
	CheckMethod   CheckMethod     `json:"checkMethod,omitempty" bson:"checkMethod,omitempty"`
}

// Assignment is a grouped or individual block of dates for a time slot
type Assignment struct {
	TimeSlot    string      `json:"timeSlot" bson:"timeSlot"`
	Role        string      `json:"role,omitempty" bson:"role,omitempty"`
	Roles       []string    `json:"roles,omitempty" bson:"roles,omitempty"`
	Dates       []string    `json:"dates" bson:"dates"`
	IsGrouped   bool        `json:"isGrouped,omitempty" bson:"isGrouped,omitempty"`
	CheckMethod CheckMethod `json:"checkMethod,omitempty" bson:"checkMethod,omitempty"`
	GroupID     string      `json:"groupId,omitempty" bson:"groupId,omitempty"`
	Duration    *Duration   `json:"duration,omitempty" bson:"duration,omitempty"`
}

// AssignedGroup is the older grouped-assignment shape
type AssignedGroup struct {
	Role        string      `json:"role" bson:"role"`
	TimeSlot    string      `json:"timeSlot" bson:"timeSlot"`
	Dates       []string    `json:"dates" bson:"dates"`
	CheckMethod CheckMethod `json:"checkMethod,omitempty" bson:"checkMethod,omitempty"`
	GroupID     string      `json:"groupId,omitempty" bson:"groupId,omitempty"`
	Duration    *Duration   `json:"duration,omitempty" bson:"duration,omitempty"`
}

// OriginalApplication is the application as first submitted, kept once it is confirmed
type OriginalApplication struct {
	Assignments []Assignment `json:"assignments" bson:"assignments"`
	AppliedAt   *time.Time   `json:"appliedAt,omitempty" bson:"appliedAt,omitempty"`
}

// ApplicationHistoryEntry records one confirmation and, if undone, when
type ApplicationHistoryEntry struct {
	ConfirmedAt time.Time    `json:"confirmedAt" bson:"confirmedAt"`
	CancelledAt *time.Time   `json:"cancelledAt,omitempty" bson:"cancelledAt,omitempty"`
	Assignments []Assignment `json:"assignments" bson:"assignments"`
}

// Application is an applicant's application to a job posting.
// Selections may be recorded in any of several historical shapes; newer
// documents populate DateAssignments or Assignments.
type Application struct {
	ID            string            `json:"id" bson:"_id"`
	ApplicantID   string            `json:"applicantId" bson:"applicantId"`
	ApplicantName string            `json:"applicantName" bson:"applicantName"`
	Email         string            `json:"email,omitempty" bson:"email,omitempty"`
	Phone         string            `json:"phone,omitempty" bson:"phone,omitempty"`
	PostingID     string            `json:"eventId" bson:"eventId"`
	Status        ApplicationStatus `json:"status" bson:"status"`

	DateAssignments []DateAssignment `json:"dateAssignments,omitempty" bson:"dateAssignments,omitempty"`
	Assignments     []Assignment     `json:"assignments,omitempty" bson:"assignments,omitempty"`
	AssignedGroups  []AssignedGroup  `json:"assignedGroups,omitempty" bson:"assignedGroups,omitempty"`

	OriginalApplication *OriginalApplication      `json:"originalApplication,omitempty" bson:"originalApplication,omitempty"`
	ConfirmationHistory []ApplicationHistoryEntry `json:"confirmationHistory,omitempty" bson:"confirmationHistory,omitempty"`

	AssignedRoles     []string          `json:"assignedRoles,omitempty" bson:"assignedRoles,omitempty"`
	AssignedTimes     []string          `json:"assignedTimes,omitempty" bson:"assignedTimes,omitempty"`
	AssignedDates     []dates.DateValue `json:"assignedDates,omitempty" bson:"assignedDates,omitempty"`
	AssignedDurations []*Duration       `json:"assignedDurations,omitempty" bson:"assignedDurations,omitempty"`

	AssignedRole string          `json:"assignedRole,omitempty" bson:"assignedRole,omitempty"`
	AssignedTime string          `json:"assignedTime,omitempty" bson:"assignedTime,omitempty"`
	AssignedDate dates.DateValue `json:"assignedDate,omitzero" bson:"assignedDate,omitempty"`

	AppliedAt   *time.Time `json:"appliedAt,omitempty" bson:"appliedAt,omitempty"`
	ConfirmedAt *time.Time `json:"confirmedAt,omitempty" bson:"confirmedAt,omitempty"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty" bson:"cancelledAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// Selection is one normalized role, time slot and date(s) an applicant chose.
// Role and Time are empty strings when the source data could not supply them.
type Selection struct {
	Role        string      `json:"role"`
	Time        string      `json:"time"`
	Date        string      `json:"date,omitempty"`
	Dates       []string    `json:"dates,omitempty"`
	CheckMethod CheckMethod `json:"checkMethod,omitempty"`
	GroupID     string      `json:"groupId,omitempty"`
	IsGrouped   bool        `json:"isGrouped"`
	Duration    *Duration   `json:"duration,omitempty"`
}

// DateGroupedSelections collects the selections falling on one date
type DateGroupedSelections struct {
	Date          string      `json:"date"`
	DisplayDate   string      `json:"displayDate"`
	Selections    []Selection `json:"selections"`
	SelectedCount int         `json:"selectedCount"`
	TotalCount    int         `json:"totalCount"`
}
