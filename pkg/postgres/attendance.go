package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tholdem/holdem-staff/pkg/core/model"
	"github.com/tholdem/holdem-staff/pkg/db"
)

// GetAttendance retrieves the attendance record of a staff member on a posting date
func (d *DB) GetAttendance(ctx context.Context, postingID, staffID, date string) (*model.AttendanceRecord, error) {
	rec := model.AttendanceRecord{PostingID: postingID, StaffID: staffID, Date: date}
	var status string
	err := d.pool.QueryRow(ctx, `
		SELECT status, updated_at
		FROM attendance
		WHERE posting_id = $1 AND staff_id = $2 AND date = $3
	`, postingID, staffID, date).Scan(&status, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("attendance %s/%s/%s: %w", postingID, staffID, date, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	rec.Status = model.AttendanceStatus(status)
	return &rec, nil
}

// PutAttendance inserts or updates an attendance record
func (d *DB) PutAttendance(ctx context.Context, rec *model.AttendanceRecord) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO attendance (posting_id, staff_id, date, status, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (posting_id, staff_id, date) DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
	`, rec.PostingID, rec.StaffID, rec.Date, string(rec.Status), rec.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert attendance: %w", err)
	}
	return nil
}
