package model

import (
	"fmt"
	"time"
)

// AttendanceStatus is a staff member's check-in state for one date
type AttendanceStatus string

const (
	AttendanceNotStarted AttendanceStatus = "not_started"
	AttendanceCheckedIn  AttendanceStatus = "checked_in"
	AttendanceCheckedOut AttendanceStatus = "checked_out"
	AttendanceAbsent     AttendanceStatus = "absent"
)

// ParseAttendanceStatus validates a status string
func ParseAttendanceStatus(s string) (AttendanceStatus, error) {
	switch status := AttendanceStatus(s); status {
	case AttendanceNotStarted, AttendanceCheckedIn, AttendanceCheckedOut, AttendanceAbsent:
		return status, nil
	default:
		return "", fmt.Errorf("unknown attendance status %q", s)
	}
}

// AttendanceRecord is the stored attendance state for a staff member on a posting date
type AttendanceRecord struct {
	StaffID   string           `json:"staffId" bson:"staffId"`
	PostingID string           `json:"eventId" bson:"eventId"`
	Date      string           `json:"date" bson:"date"`
	Status    AttendanceStatus `json:"status" bson:"status"`
	UpdatedAt time.Time        `json:"updatedAt" bson:"updatedAt"`
}
