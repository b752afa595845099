// Package attendance tracks optimistic attendance status changes so a new
// status can be shown immediately while the stored record catches up.
package attendance

import (
	"context"
	"errors"
	"fmt"

	"github.com/tholdem/holdem-staff/pkg/core/model"
)

// ErrInvalidTransition is returned when a status change is not allowed
var ErrInvalidTransition = errors.New("invalid attendance transition")

// Key identifies one staff member on one posting date
type Key struct {
	PostingID string
	StaffID   string
	Date      string
}

func (k Key) String() string {
	return fmt.Sprintf("attendance:%s:%s:%s", k.PostingID, k.StaffID, k.Date)
}

// KeyFor returns the overlay key of a stored record
func KeyFor(rec model.AttendanceRecord) Key {
	return Key{PostingID: rec.PostingID, StaffID: rec.StaffID, Date: rec.Date}
}

// Overlay holds short-lived status overrides. An override set with Set
// expires on its own after the overlay's revert window.
type Overlay interface {
	Set(ctx context.Context, key Key, status model.AttendanceStatus) error
	Get(ctx context.Context, key Key) (model.AttendanceStatus, bool, error)
}

// Effective returns the status to show for rec: the pending override when
// one exists, otherwise the stored status. Overlay failures fall back to the
// stored status.
func Effective(ctx context.Context, overlay Overlay, rec model.AttendanceRecord) model.AttendanceStatus {
	stored := rec.Status
	if stored == "" {
		stored = model.AttendanceNotStarted
	}
	if overlay == nil {
		return stored
	}

	status, ok, err := overlay.Get(ctx, KeyFor(rec))
	if err != nil || !ok {
		return stored
	}
	return status
}

var transitions = map[model.AttendanceStatus][]model.AttendanceStatus{
	model.AttendanceNotStarted: {model.AttendanceCheckedIn, model.AttendanceAbsent},
	model.AttendanceCheckedIn:  {model.AttendanceCheckedOut},
}

// ValidateTransition checks that a record may move from one status to
// another. An empty from is treated as not started and repeating the current
// status is allowed.
func ValidateTransition(from, to model.AttendanceStatus) error {
	if from == "" {
		from = model.AttendanceNotStarted
	}
	if from == to {
		return nil
	}
	for _, allowed := range transitions[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, to)
}
