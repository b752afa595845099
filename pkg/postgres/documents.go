package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tholdem/holdem-staff/pkg/core/model"
	"github.com/tholdem/holdem-staff/pkg/db"
)

// GetPosting retrieves a job posting by id
func (d *DB) GetPosting(ctx context.Context, id string) (*model.JobPosting, error) {
	var doc []byte
	err := d.pool.QueryRow(ctx, `SELECT doc FROM job_posting WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("posting %s: %w", id, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query posting: %w", err)
	}
	return decodePosting(doc)
}

// InsertPosting inserts or replaces a job posting
func (d *DB) InsertPosting(ctx context.Context, posting *model.JobPosting) error {
	doc, err := json.Marshal(posting)
	if err != nil {
		return fmt.Errorf("failed to encode posting: %w", err)
	}

	_, err = d.pool.Exec(ctx, `
		INSERT INTO job_posting (id, doc)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()
	`, posting.ID, doc)
	if err != nil {
		return fmt.Errorf("failed to insert posting: %w", err)
	}
	return nil
}

// GetApplication retrieves an application by id
func (d *DB) GetApplication(ctx context.Context, id string) (*model.Application, error) {
	var doc []byte
	err := d.pool.QueryRow(ctx, `SELECT doc FROM application WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("application %s: %w", id, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query application: %w", err)
	}
	return decodeApplication(doc)
}

// ListApplications retrieves every application to a posting
func (d *DB) ListApplications(ctx context.Context, postingID string) ([]model.Application, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT doc FROM application
		WHERE posting_id = $1
		ORDER BY id
	`, postingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}
	defer rows.Close()

	var apps []model.Application
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		app, err := decodeApplication(doc)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating applications: %w", err)
	}

	return apps, nil
}

// InsertApplication inserts or replaces an application
func (d *DB) InsertApplication(ctx context.Context, app *model.Application) error {
	doc, err := json.Marshal(app)
	if err != nil {
		return fmt.Errorf("failed to encode application: %w", err)
	}

	_, err = d.pool.Exec(ctx, `
		INSERT INTO application (id, posting_id, doc)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET posting_id = EXCLUDED.posting_id, doc = EXCLUDED.doc, updated_at = NOW()
	`, app.ID, app.PostingID, doc)
	if err != nil {
		return fmt.Errorf("failed to insert application: %w", err)
	}
	return nil
}

// UpdateApplicationAndPosting locks the application and its posting, applies
// fn and writes both back in one transaction
func (d *DB) UpdateApplicationAndPosting(ctx context.Context, applicationID string, fn db.UpdateFunc) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var appDoc []byte
	err = tx.QueryRow(ctx, `SELECT doc FROM application WHERE id = $1 FOR UPDATE`, applicationID).Scan(&appDoc)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("application %s: %w", applicationID, db.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to lock application: %w", err)
	}
	app, err := decodeApplication(appDoc)
	if err != nil {
		return err
	}

	var postingDoc []byte
	err = tx.QueryRow(ctx, `SELECT doc FROM job_posting WHERE id = $1 FOR UPDATE`, app.PostingID).Scan(&postingDoc)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("posting %s: %w", app.PostingID, db.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to lock posting: %w", err)
	}
	posting, err := decodePosting(postingDoc)
	if err != nil {
		return err
	}

	if err := fn(app, posting); err != nil {
		return err
	}

	if appDoc, err = json.Marshal(app); err != nil {
		return fmt.Errorf("failed to encode application: %w", err)
	}
	if postingDoc, err = json.Marshal(posting); err != nil {
		return fmt.Errorf("failed to encode posting: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE application SET doc = $2, updated_at = NOW() WHERE id = $1`, app.ID, appDoc); err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE job_posting SET doc = $2, updated_at = NOW() WHERE id = $1`, posting.ID, postingDoc); err != nil {
		return fmt.Errorf("failed to update posting: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func decodePosting(doc []byte) (*model.JobPosting, error) {
	var p model.JobPosting
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("failed to decode posting: %w", err)
	}
	return &p, nil
}

func decodeApplication(doc []byte) (*model.Application, error) {
	var a model.Application
	if err := json.Unmarshal(doc, &a); err != nil {
		return nil, fmt.Errorf("failed to decode application: %w", err)
	}
	return &a, nil
}
