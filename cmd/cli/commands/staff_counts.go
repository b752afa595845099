package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tholdem/holdem-staff/pkg/core/dates"
	"github.com/tholdem/holdem-staff/pkg/core/services"
)

// StaffCountsCmd creates the staffCounts command
func StaffCountsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "staffCounts <posting_id> <role> <time> [date]",
		Short: "Show confirmed and required headcount for a role and time slot",
		Args:  cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			postingID, role, timeSlot := args[0], args[1], args[2]
			var date string
			if len(args) > 3 {
				date = args[3]
			}

			counts, err := services.StaffCounts(app.Ctx, app.Database, app.Logger, postingID, role, timeSlot, date)
			if err != nil {
				return err
			}

			scope := "all dates"
			if date != "" {
				scope = dates.FormatDateDisplay(date)
			}
			fmt.Printf("\n%s %s (%s): %s\n\n", role, timeSlot, scope, formatHeadcount(counts.Confirmed, counts.Required))
			return nil
		},
	}
}
