// Package mongodb stores postings, applications and attendance as MongoDB
// documents.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/tholdem/holdem-staff/pkg/core/attendance"
	"github.com/tholdem/holdem-staff/pkg/core/model"
	"github.com/tholdem/holdem-staff/pkg/db"
)

const (
	postingsCollection     = "jobPostings"
	applicationsCollection = "applications"
	attendanceCollection   = "attendance"
)

// DB provides database operations using MongoDB
type DB struct {
	client *mongo.Client
	db     DatabaseHelper
	tx     Transactor
	logger *zap.Logger
}

// Connect opens a client, checks the primary is reachable and selects database
func Connect(ctx context.Context, uri, database string, logger *zap.Logger) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	d := New(&mongoDatabase{db: client.Database(database)}, &mongoTransactor{cl: client}, logger)
	d.client = client
	return d, nil
}

// New creates a store over the given database and transaction runner
func New(database DatabaseHelper, tx Transactor, logger *zap.Logger) *DB {
	return &DB{db: database, tx: tx, logger: logger.Named("mongodb")}
}

// Close disconnects the client, if the store owns one
func (d *DB) Close(ctx context.Context) {
	if d.client == nil {
		return
	}
	if err := d.client.Disconnect(ctx); err != nil {
		d.logger.Warn("Failed to disconnect from mongo", zap.Error(err))
	}
}

func notFound(err error, what string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s: %w", what, db.ErrNotFound)
	}
	return fmt.Errorf("failed to find %s: %w", what, err)
}

func upsert() *options.ReplaceOptions {
	return options.Replace().SetUpsert(true)
}

// GetPosting retrieves a job posting by id
func (d *DB) GetPosting(ctx context.Context, id string) (*model.JobPosting, error) {
	var posting model.JobPosting
	if err := d.db.Collection(postingsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&posting); err != nil {
		return nil, notFound(err, "posting "+id)
	}
	return &posting, nil
}

// InsertPosting inserts or replaces a job posting
func (d *DB) InsertPosting(ctx context.Context, posting *model.JobPosting) error {
	if err := d.db.Collection(postingsCollection).ReplaceOne(ctx, bson.M{"_id": posting.ID}, posting, upsert()); err != nil {
		return fmt.Errorf("failed to insert posting: %w", err)
	}
	return nil
}

// GetApplication retrieves an application by id
func (d *DB) GetApplication(ctx context.Context, id string) (*model.Application, error) {
	var app model.Application
	if err := d.db.Collection(applicationsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&app); err != nil {
		return nil, notFound(err, "application "+id)
	}
	return &app, nil
}

// ListApplications retrieves every application to a posting
func (d *DB) ListApplications(ctx context.Context, postingID string) ([]model.Application, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := d.db.Collection(applicationsCollection).Find(ctx, bson.M{"eventId": postingID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}

	var apps []model.Application
	if err := cursor.All(ctx, &apps); err != nil {
		return nil, fmt.Errorf("failed to decode applications: %w", err)
	}
	return apps, nil
}

// InsertApplication inserts or replaces an application
func (d *DB) InsertApplication(ctx context.Context, app *model.Application) error {
	if err := d.db.Collection(applicationsCollection).ReplaceOne(ctx, bson.M{"_id": app.ID}, app, upsert()); err != nil {
		return fmt.Errorf("failed to insert application: %w", err)
	}
	return nil
}

// UpdateApplicationAndPosting applies fn to an application and its posting
// and writes both back in one transaction
func (d *DB) UpdateApplicationAndPosting(ctx context.Context, applicationID string, fn db.UpdateFunc) error {
	return d.tx.WithTransaction(ctx, func(ctx context.Context) error {
		app, err := d.GetApplication(ctx, applicationID)
		if err != nil {
			return err
		}
		posting, err := d.GetPosting(ctx, app.PostingID)
		if err != nil {
			return err
		}

		if err := fn(app, posting); err != nil {
			return err
		}

		if err := d.db.Collection(applicationsCollection).ReplaceOne(ctx, bson.M{"_id": app.ID}, app); err != nil {
			return fmt.Errorf("failed to update application: %w", err)
		}
		if err := d.db.Collection(postingsCollection).ReplaceOne(ctx, bson.M{"_id": posting.ID}, posting); err != nil {
			return fmt.Errorf("failed to update posting: %w", err)
		}
		return nil
	})
}

// attendanceDoc is an attendance record keyed by its overlay key
type attendanceDoc struct {
	ID                     string `bson:"_id"`
	model.AttendanceRecord `bson:",inline"`
}

// GetAttendance retrieves the attendance record of a staff member on a posting date
func (d *DB) GetAttendance(ctx context.Context, postingID, staffID, date string) (*model.AttendanceRecord, error) {
	key := attendance.Key{PostingID: postingID, StaffID: staffID, Date: date}
	var doc attendanceDoc
	if err := d.db.Collection(attendanceCollection).FindOne(ctx, bson.M{"_id": key.String()}).Decode(&doc); err != nil {
		return nil, notFound(err, "attendance "+key.String())
	}
	return &doc.AttendanceRecord, nil
}

// PutAttendance inserts or updates an attendance record
func (d *DB) PutAttendance(ctx context.Context, rec *model.AttendanceRecord) error {
	key := attendance.KeyFor(*rec)
	doc := attendanceDoc{ID: key.String(), AttendanceRecord: *rec}
	if err := d.db.Collection(attendanceCollection).ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, upsert()); err != nil {
		return fmt.Errorf("failed to upsert attendance: %w", err)
	}
	return nil
}
