package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tholdem/holdem-staff/pkg/core/dates"
	"github.com/tholdem/holdem-staff/pkg/core/services"
)

// DefinePostingCmd creates the definePosting command
func DefinePostingCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "definePosting <template> <from> <to>",
		Short: "Create a posting from a configured template between two dates (YYYY-MM-DD)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			title, _ := cmd.Flags().GetString("title")

			from, err := time.Parse(dates.Layout, args[1])
			if err != nil {
				return fmt.Errorf("from must be a date (YYYY-MM-DD): %w", err)
			}
			to, err := time.Parse(dates.Layout, args[2])
			if err != nil {
				return fmt.Errorf("to must be a date (YYYY-MM-DD): %w", err)
			}

			posting, err := services.DefinePosting(app.Ctx, app.Database, app.Cfg, app.Logger, args[0], title, from, to)
			if err != nil {
				return err
			}

			// Display results
			fmt.Printf("\n✓ Posting created successfully!\n\n")
			fmt.Printf("Posting ID: %s\n", posting.ID)
			fmt.Printf("Title:      %s\n", posting.Title)
			if posting.Location != "" {
				fmt.Printf("Location:   %s\n", posting.Location)
			}
			fmt.Printf("Dates:      %d\n\n", len(posting.DateSpecificRequirements))

			for i, req := range posting.DateSpecificRequirements {
				fmt.Printf("  %2d. %s (%d time slots)\n", i+1, dates.FormatDateDisplay(req.Date.String()), len(req.TimeSlots))
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().String("title", "", "Posting title (defaults to the template name)")

	return cmd
}
