package model

import (
	"time"

	"github.com/tholdem/holdem-staff/pkg/core/dates"
)

// TimeToBeAnnounced is the time slot label used when a slot has no fixed time yet
const TimeToBeAnnounced = "미정"

// PostingStatus is whether a posting accepts applications
type PostingStatus string

const (
	PostingOpen   PostingStatus = "open"
	PostingClosed PostingStatus = "closed"
)

// ApplicationType distinguishes single-date from multi-date confirmations
type ApplicationType string

const (
	ApplicationSingle ApplicationType = "single"
	ApplicationMulti  ApplicationType = "multi"
)

// RoleRequirement is the number of staff needed for a role
type RoleRequirement struct {
	Name  string `json:"name" bson:"name" yaml:"name" validate:"required"`
	Count int    `json:"count" bson:"count" yaml:"count" validate:"min=1"`
}

// TimeSlot lists the roles needed at one time on one date
type TimeSlot struct {
	Time                string            `json:"time" bson:"time"`
	IsTimeToBeAnnounced bool              `json:"isTimeToBeAnnounced,omitempty" bson:"isTimeToBeAnnounced,omitempty"`
	Roles               []RoleRequirement `json:"roles" bson:"roles"`
}

// Matches reports whether the slot answers to the given time label
func (ts TimeSlot) Matches(timeSlot string) bool {
	return ts.Time == timeSlot || (ts.IsTimeToBeAnnounced && timeSlot == TimeToBeAnnounced)
}

// DateSpecificRequirement lists the time slots needed on one date
type DateSpecificRequirement struct {
	Date      dates.DateValue `json:"date" bson:"date"`
	TimeSlots []TimeSlot      `json:"timeSlots" bson:"timeSlots"`
}

// ConfirmedStaff is one confirmed staff member for a role, time slot and date
type ConfirmedStaff struct {
	UserID             string          `json:"userId" bson:"userId"`
	Name               string          `json:"name,omitempty" bson:"name,omitempty"`
	Role               string          `json:"role" bson:"role"`
	TimeSlot           string          `json:"timeSlot" bson:"timeSlot"`
	Date               string          `json:"date,omitempty" bson:"date,omitempty"`
	ApplicationID      string          `json:"applicationId,omitempty" bson:"applicationId,omitempty"`
	ApplicationType    ApplicationType `json:"applicationType,omitempty" bson:"applicationType,omitempty"`
	ApplicationGroupID string          `json:"applicationGroupId,omitempty" bson:"applicationGroupId,omitempty"`
	ConfirmedAt        *time.Time      `json:"confirmedAt,omitempty" bson:"confirmedAt,omitempty"`
}

// JobPosting is a tournament staffing posting
type JobPosting struct {
	ID                       string                    `json:"id" bson:"_id"`
	Title                    string                    `json:"title" bson:"title"`
	Location                 string                    `json:"location,omitempty" bson:"location,omitempty"`
	Status                   PostingStatus             `json:"status" bson:"status"`
	DateSpecificRequirements []DateSpecificRequirement `json:"dateSpecificRequirements,omitempty" bson:"dateSpecificRequirements,omitempty"`
	ConfirmedStaff           []ConfirmedStaff          `json:"confirmedStaff,omitempty" bson:"confirmedStaff,omitempty"`
	CreatedAt                *time.Time                `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
}
