package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tholdem/holdem-staff/pkg/core/attendance"
	"github.com/tholdem/holdem-staff/pkg/core/model"
	"github.com/tholdem/holdem-staff/pkg/db"
)

// AttendanceView is a stored attendance record and the status to show for it
type AttendanceView struct {
	Record    model.AttendanceRecord `json:"record"`
	Effective model.AttendanceStatus `json:"effective"`
}

// loadAttendance returns the stored record, or a not started record when none exists
func loadAttendance(ctx context.Context, store db.AttendanceStore, staffID, postingID, date string) (model.AttendanceRecord, error) {
	rec, err := store.GetAttendance(ctx, postingID, staffID, date)
	if errors.Is(err, db.ErrNotFound) {
		return model.AttendanceRecord{
			StaffID:   staffID,
			PostingID: postingID,
			Date:      date,
			Status:    model.AttendanceNotStarted,
		}, nil
	}
	if err != nil {
		return model.AttendanceRecord{}, fmt.Errorf("failed to fetch attendance: %w", err)
	}
	return *rec, nil
}

// GetAttendance returns a staff member's attendance on a posting date
func GetAttendance(
	ctx context.Context,
	store db.AttendanceStore,
	overlay attendance.Overlay,
	logger *zap.Logger,
	staffID, postingID, date string,
) (*AttendanceView, error) {
	logger.Debug("Fetching attendance",
		zap.String("staff_id", staffID),
		zap.String("posting_id", postingID),
		zap.String("date", date))

	rec, err := loadAttendance(ctx, store, staffID, postingID, date)
	if err != nil {
		return nil, err
	}
	return &AttendanceView{Record: rec, Effective: attendance.Effective(ctx, overlay, rec)}, nil
}

// UpdateAttendance moves a staff member to a new attendance status. The new
// status is shown through the overlay straight away and the record is then
// written. When the write fails the overlay entry lapses after its revert
// window and the stored status shows again.
func UpdateAttendance(
	ctx context.Context,
	store db.AttendanceStore,
	overlay attendance.Overlay,
	logger *zap.Logger,
	staffID, postingID, date string,
	status model.AttendanceStatus,
) (*AttendanceView, error) {
	logger.Debug("Updating attendance",
		zap.String("staff_id", staffID),
		zap.String("posting_id", postingID),
		zap.String("date", date),
		zap.String("status", string(status)))

	rec, err := loadAttendance(ctx, store, staffID, postingID, date)
	if err != nil {
		return nil, err
	}

	current := attendance.Effective(ctx, overlay, rec)
	if err := attendance.ValidateTransition(current, status); err != nil {
		return nil, err
	}

	if overlay != nil {
		if err := overlay.Set(ctx, attendance.KeyFor(rec), status); err != nil {
			logger.Warn("Failed to set optimistic attendance status", zap.Error(err))
		}
	}

	rec.Status = status
	rec.UpdatedAt = timeNow()
	if err := store.PutAttendance(ctx, &rec); err != nil {
		return nil, fmt.Errorf("failed to save attendance: %w", err)
	}

	logger.Info("Attendance updated",
		zap.String("staff_id", staffID),
		zap.String("date", date),
		zap.String("from", string(current)),
		zap.String("to", string(status)))

	return &AttendanceView{Record: rec, Effective: attendance.Effective(ctx, overlay, rec)}, nil
}
