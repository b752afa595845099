package db

import (
	"context"
	"errors"

	"github.com/tholdem/holdem-staff/pkg/core/model"
)

// ErrNotFound is returned when a requested document does not exist
var ErrNotFound = errors.New("not found")

// UpdateFunc mutates an application and its posting inside a store
// transaction. Returning an error aborts the transaction.
type UpdateFunc func(app *model.Application, posting *model.JobPosting) error

// PostingStore defines the interface for job posting operations
type PostingStore interface {
	GetPosting(ctx context.Context, id string) (*model.JobPosting, error)
	InsertPosting(ctx context.Context, posting *model.JobPosting) error
}

// ApplicationStore defines the interface for application operations
type ApplicationStore interface {
	GetApplication(ctx context.Context, id string) (*model.Application, error)
	ListApplications(ctx context.Context, postingID string) ([]model.Application, error)
	InsertApplication(ctx context.Context, app *model.Application) error
	// UpdateApplicationAndPosting loads an application and the posting it
	// belongs to, applies fn and writes both back atomically
	UpdateApplicationAndPosting(ctx context.Context, applicationID string, fn UpdateFunc) error
}

// AttendanceStore defines the interface for attendance operations
type AttendanceStore interface {
	GetAttendance(ctx context.Context, postingID, staffID, date string) (*model.AttendanceRecord, error)
	PutAttendance(ctx context.Context, rec *model.AttendanceRecord) error
}

// Database defines the interface for all database operations.
// Both postgres.DB and mongodb.DB implement this interface.
type Database interface {
	PostingStore
	ApplicationStore
	AttendanceStore
	Close(ctx context.Context)
}
