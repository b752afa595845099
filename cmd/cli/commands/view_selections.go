package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tholdem/holdem-staff/pkg/core/services"
)

// ViewSelectionsCmd creates the viewSelections command
func ViewSelectionsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viewSelections <application_id>",
		Short: "View an applicant's selections grouped by date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			postingID, _ := cmd.Flags().GetString("posting")

			view, err := services.ViewApplicantSelections(
				app.Ctx,
				app.Database,
				app.Normalizer,
				app.Grouper,
				app.Logger,
				postingID,
				args[0],
			)
			if err != nil {
				return err
			}

			fmt.Printf("\n%s (%s) - %s\n", view.ApplicantName, view.ApplicantID, statusLabel(view.Status))
			fmt.Printf("%sRead from %s, %d selections%s\n\n", colorDim, view.Schema, len(view.Selections), colorReset)

			if len(view.Selections) == 0 {
				fmt.Println("No selections found.")
				return nil
			}

			fmt.Println("Groups:")
			for _, g := range view.Groups {
				fmt.Printf("  %s\n", groupLine(g))
			}
			fmt.Println()

			if len(view.MultiDay) > 0 {
				fmt.Println("Multi-day:")
				for _, md := range view.MultiDay {
					fmt.Printf("  %s (%d days)\n", md.DisplayDateRange, md.DayCount)
					for _, tr := range md.TimeSlotRoles {
						fmt.Printf("    %-8s %s\n", tr.TimeSlot, tr.Role)
					}
				}
				fmt.Println()
			}

			if view.Unconfirmed != nil {
				fmt.Println("Unconfirmed:")
				for _, cg := range view.Unconfirmed.ConsecutiveGroups {
					fmt.Printf("  %s (%d days)\n", cg.DisplayDateRange, cg.DayCount)
					for _, tr := range cg.TimeRoleSelections {
						fmt.Printf("    %-8s %-12s x%d\n", tr.Time, tr.Role, len(tr.OriginalSelections))
					}
				}
				for _, dg := range view.Unconfirmed.SingleDateGroups {
					fmt.Printf("  %s\n", dg.DisplayDate)
					for _, s := range dg.Selections {
						fmt.Printf("    %-8s %s\n", s.Time, s.Role)
					}
				}
				fmt.Println()
			}

			return nil
		},
	}

	cmd.Flags().String("posting", "", "Posting to read requirements from (defaults to the application's posting)")

	return cmd
}

// ListApplicantsCmd creates the listApplicants command
func ListApplicantsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listApplicants <posting_id>",
		Short: "List every applicant of a posting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summaries, err := services.ListPostingApplicants(app.Ctx, app.Database, app.Normalizer, app.Logger, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("\nFound %d applicants:\n\n", len(summaries))
			for _, s := range summaries {
				first := ""
				if s.FirstDate != "" {
					first = fmt.Sprintf(" from %s", s.FirstDate)
				}
				fmt.Printf("- %s (%s) - %s - %d selections%s [%s]\n",
					s.ApplicantName,
					s.ApplicationID,
					statusLabel(s.Status),
					s.SelectionCount,
					first,
					s.Schema,
				)
			}

			return nil
		},
	}
}
