package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tholdem/holdem-staff/pkg/clients/sheetsclient"
	"github.com/tholdem/holdem-staff/pkg/core/services"
)

// PublishRosterCmd creates the publishRoster command
func PublishRosterCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publishRoster <posting_id>",
		Short: "Publish a posting's confirmed staff to the roster sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sheetID, _ := cmd.Flags().GetString("sheet")
			if sheetID == "" {
				sheetID = app.Cfg.RosterSheetID
			}

			client, err := app.SheetsClient()
			if err != nil {
				return err
			}

			tab, err := services.PublishRoster(app.Ctx, app.Database, sheetsclient.NewPublisher(client), app.Logger, args[0], sheetID)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Roster published to tab %q\n\n", tab)
			return nil
		},
	}

	cmd.Flags().String("sheet", "", "Spreadsheet ID (defaults to rosterSheetID from config)")

	return cmd
}
