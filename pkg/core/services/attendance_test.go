package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tholdem/holdem-staff/pkg/core/attendance"
	"github.com/tholdem/holdem-staff/pkg/core/model"
)

func TestUpdateAttendance_CheckInAndOut(t *testing.T) {
	freezeTime(t)
	store := newMockStore()
	overlay := newMockOverlay()
	ctx := context.Background()

	view, err := UpdateAttendance(ctx, store, overlay, zap.NewNop(), "u1", "p1", "2024-01-05", model.AttendanceCheckedIn)
	require.NoError(t, err)
	assert.Equal(t, model.AttendanceCheckedIn, view.Effective)
	assert.Equal(t, model.AttendanceCheckedIn, view.Record.Status)
	assert.True(t, fixedNow.Equal(view.Record.UpdatedAt))

	key := attendance.Key{PostingID: "p1", StaffID: "u1", Date: "2024-01-05"}
	assert.Equal(t, model.AttendanceCheckedIn, overlay.statuses[key])
	assert.Equal(t, model.AttendanceCheckedIn, store.attendance[attendanceKey("p1", "u1", "2024-01-05")].Status)

	view, err = UpdateAttendance(ctx, store, overlay, zap.NewNop(), "u1", "p1", "2024-01-05", model.AttendanceCheckedOut)
	require.NoError(t, err)
	assert.Equal(t, model.AttendanceCheckedOut, view.Effective)
}

func TestUpdateAttendance_InvalidTransition(t *testing.T) {
	store := newMockStore()

	_, err := UpdateAttendance(context.Background(), store, nil, zap.NewNop(), "u1", "p1", "2024-01-05", model.AttendanceCheckedOut)
	assert.ErrorIs(t, err, attendance.ErrInvalidTransition)
	assert.Empty(t, store.attendance)
}

func TestUpdateAttendance_WriteFailureKeepsOptimisticStatus(t *testing.T) {
	store := newMockStore()
	store.putAttendanceErr = errBoom
	overlay := newMockOverlay()
	ctx := context.Background()

	_, err := UpdateAttendance(ctx, store, overlay, zap.NewNop(), "u1", "p1", "2024-01-05", model.AttendanceAbsent)
	assert.ErrorIs(t, err, errBoom)

	view, err := GetAttendance(ctx, store, overlay, zap.NewNop(), "u1", "p1", "2024-01-05")
	require.NoError(t, err)
	assert.Equal(t, model.AttendanceNotStarted, view.Record.Status)
	assert.Equal(t, model.AttendanceAbsent, view.Effective)
}

func TestUpdateAttendance_OverlayFailureStillWrites(t *testing.T) {
	store := newMockStore()
	overlay := newMockOverlay()
	overlay.setErr = errBoom

	view, err := UpdateAttendance(context.Background(), store, overlay, zap.NewNop(), "u1", "p1", "2024-01-05", model.AttendanceCheckedIn)
	require.NoError(t, err)
	assert.Equal(t, model.AttendanceCheckedIn, view.Effective)
	assert.Equal(t, model.AttendanceCheckedIn, store.attendance[attendanceKey("p1", "u1", "2024-01-05")].Status)
}

func TestGetAttendance_Stored(t *testing.T) {
	store := newMockStore()
	require.NoError(t, store.PutAttendance(context.Background(), &model.AttendanceRecord{
		StaffID: "u1", PostingID: "p1", Date: "2024-01-05", Status: model.AttendanceCheckedIn,
	}))

	view, err := GetAttendance(context.Background(), store, nil, zap.NewNop(), "u1", "p1", "2024-01-05")
	require.NoError(t, err)
	assert.Equal(t, model.AttendanceCheckedIn, view.Effective)
}
