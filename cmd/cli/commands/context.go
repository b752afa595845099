package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tholdem/holdem-staff/internal/config"
	"github.com/tholdem/holdem-staff/pkg/clients/gmailclient"
	"github.com/tholdem/holdem-staff/pkg/clients/sheetsclient"
	"github.com/tholdem/holdem-staff/pkg/core/attendance"
	"github.com/tholdem/holdem-staff/pkg/core/grouping"
	"github.com/tholdem/holdem-staff/pkg/core/selection"
	"github.com/tholdem/holdem-staff/pkg/db"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Env        string
	Cfg        *config.Config
	Database   db.Database
	Normalizer *selection.Normalizer
	Grouper    *grouping.Grouper
	Overlay    attendance.Overlay
	Logger     *zap.Logger
	Ctx        context.Context

	// Google clients are created on first use so only the roster and
	// notification commands need OAuth
	oauthCfg     *config.OAuthClientConfig
	sheetsClient *sheetsclient.Client
	gmailClient  *gmailclient.Client
}

// SheetsClient returns the Sheets client, authorizing on first use
func (a *AppContext) SheetsClient() (*sheetsclient.Client, error) {
	if a.sheetsClient != nil {
		return a.sheetsClient, nil
	}

	if a.oauthCfg == nil {
		a.Logger.Info("Loading OAuth client configuration")
		oauthCfg, err := config.LoadOAuthClientWithEnv(a.Env)
		if err != nil {
			return nil, fmt.Errorf("failed to load OAuth client config: %w", err)
		}
		a.oauthCfg = oauthCfg
	}

	a.Logger.Info("Initializing sheets client")
	client, err := sheetsclient.NewClient(a.Ctx, a.oauthCfg, a.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	a.sheetsClient = client
	return client, nil
}

// GmailClient returns the Gmail client, sharing the Sheets client's token
func (a *AppContext) GmailClient() (*gmailclient.Client, error) {
	if a.gmailClient != nil {
		return a.gmailClient, nil
	}

	sheets, err := a.SheetsClient()
	if err != nil {
		return nil, err
	}

	a.Logger.Info("Initializing gmail client")
	client, err := gmailclient.NewClient(a.Ctx, a.oauthCfg, sheets.Token(), a.Cfg.GmailSender)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail client: %w", err)
	}
	a.gmailClient = client
	return client, nil
}
