package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/tholdem/holdem-staff/pkg/core/model"
)

// Bundle is a set of exported documents loaded in one go
type Bundle struct {
	Postings     []model.JobPosting  `json:"postings"`
	Applications []model.Application `json:"applications"`
}

// DecodeBundle reads an exported document bundle. Dates may be strings or
// exported {seconds, nanoseconds} timestamps.
func DecodeBundle(r io.Reader) (*Bundle, error) {
	var b Bundle
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("failed to decode bundle: %w", err)
	}

	var errs []error
	postings := make(map[string]bool, len(b.Postings))
	for i, p := range b.Postings {
		if p.ID == "" {
			errs = append(errs, fmt.Errorf("posting %d: missing id", i))
			continue
		}
		if postings[p.ID] {
			errs = append(errs, fmt.Errorf("posting %s: duplicate id", p.ID))
		}
		postings[p.ID] = true
	}

	applications := make(map[string]bool, len(b.Applications))
	for i, a := range b.Applications {
		if a.ID == "" {
			errs = append(errs, fmt.Errorf("application %d: missing id", i))
			continue
		}
		if applications[a.ID] {
			errs = append(errs, fmt.Errorf("application %s: duplicate id", a.ID))
		}
		applications[a.ID] = true
		if a.PostingID == "" {
			errs = append(errs, fmt.Errorf("application %s: missing eventId", a.ID))
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid bundle: %w", errors.Join(errs...))
	}
	return &b, nil
}

// Load inserts every posting then every application of the bundle
func (b *Bundle) Load(ctx context.Context, postings PostingStore, applications ApplicationStore) error {
	for i := range b.Postings {
		if err := postings.InsertPosting(ctx, &b.Postings[i]); err != nil {
			return fmt.Errorf("failed to insert posting %s: %w", b.Postings[i].ID, err)
		}
	}
	for i := range b.Applications {
		if err := applications.InsertApplication(ctx, &b.Applications[i]); err != nil {
			return fmt.Errorf("failed to insert application %s: %w", b.Applications[i].ID, err)
		}
	}
	return nil
}
