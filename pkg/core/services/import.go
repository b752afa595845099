package services

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/tholdem/holdem-staff/pkg/core/history"
	"github.com/tholdem/holdem-staff/pkg/db"
)

// ImportResult counts the documents loaded by ImportDocuments
type ImportResult struct {
	Postings     int `json:"postings"`
	Applications int `json:"applications"`
	// Incomplete counts applications loaded without a complete assignment history
	Incomplete int `json:"incomplete"`
}

// ImportDocuments loads a JSON export of postings and applications into the store
func ImportDocuments(ctx context.Context, store DocumentStore, logger *zap.Logger, r io.Reader) (*ImportResult, error) {
	bundle, err := db.DecodeBundle(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}

	logger.Debug("Decoded documents",
		zap.Int("postings", len(bundle.Postings)),
		zap.Int("applications", len(bundle.Applications)))

	incomplete := 0
	for i := range bundle.Applications {
		if err := history.Validate(&bundle.Applications[i]); err != nil {
			incomplete++
			logger.Warn("Application history is incomplete",
				zap.String("application_id", bundle.Applications[i].ID),
				zap.Error(err))
		}
	}

	if err := bundle.Load(ctx, store, store); err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}

	logger.Info("Imported documents",
		zap.Int("postings", len(bundle.Postings)),
		zap.Int("applications", len(bundle.Applications)),
		zap.Int("incomplete", incomplete))
	return &ImportResult{
		Postings:     len(bundle.Postings),
		Applications: len(bundle.Applications),
		Incomplete:   incomplete,
	}, nil
}
