package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tholdem/holdem-staff/pkg/core/dates"
	"github.com/tholdem/holdem-staff/pkg/core/model"
	"github.com/tholdem/holdem-staff/pkg/core/services"
)

// readAssignments decodes a JSON array of assignments from path
func readAssignments(path string) ([]model.Assignment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read assignments file: %w", err)
	}
	var assignments []model.Assignment
	if err := json.Unmarshal(data, &assignments); err != nil {
		return nil, fmt.Errorf("failed to parse assignments file: %w", err)
	}
	return assignments, nil
}

// ConfirmCmd creates the confirm command
func ConfirmCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "confirm <application_id>",
		Short: "Confirm an applicant (defaults to everything they selected)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applicationID := args[0]
			file, _ := cmd.Flags().GetString("file")
			notify, _ := cmd.Flags().GetBool("notify")

			var assignments []model.Assignment
			if file != "" {
				var err error
				assignments, err = readAssignments(file)
				if err != nil {
					return err
				}
			} else {
				view, err := services.ViewApplicantSelections(app.Ctx, app.Database, app.Normalizer, app.Grouper, app.Logger, "", applicationID)
				if err != nil {
					return err
				}
				var skipped []model.Selection
				assignments, skipped = services.AssignmentsFromSelections(view.Selections)
				if len(skipped) > 0 {
					fmt.Printf("\n⚠️  Skipping %d selections (one time slot and role per date, use --file to choose):\n", len(skipped))
					for _, s := range skipped {
						fmt.Printf("  ✗ %s %-8s %s\n", strings.Join(s.Dates, ", "), s.Time, s.Role)
					}
					app.Logger.Info("Skipped selections when confirming as selected",
						zap.String("application_id", applicationID),
						zap.Int("skipped", len(skipped)))
				}
			}

			var notifier services.Notifier
			if notify {
				gmail, err := app.GmailClient()
				if err != nil {
					return err
				}
				notifier = gmail
			}

			result, err := services.ConfirmApplication(app.Ctx, app.Database, notifier, app.Logger, applicationID, assignments)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Application confirmed!\n\n")
			fmt.Printf("Applicant: %s (%s)\n", result.Application.ApplicantName, result.Application.ApplicantID)
			fmt.Printf("Entries:   %d\n\n", len(result.Staff))
			for _, s := range result.Staff {
				fmt.Printf("  %s  %-8s %s\n", dates.FormatDateDisplay(s.Date), s.TimeSlot, s.Role)
			}
			fmt.Println()

			if notify {
				if result.Notified {
					fmt.Printf("✓ Notice sent to %s\n\n", result.Application.Email)
				} else {
					fmt.Printf("⚠️  No notice sent (check the log)\n\n")
				}
			}

			app.Logger.Debug("Confirm command finished", zap.Bool("notified", result.Notified))
			return nil
		},
	}

	cmd.Flags().String("file", "", "JSON file of assignments to confirm instead of the current selections")
	cmd.Flags().Bool("notify", false, "Email the applicant a confirmation notice")

	return cmd
}

// CancelConfirmationCmd creates the cancelConfirmation command
func CancelConfirmationCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancelConfirmation <application_id>",
		Short: "Return a confirmed application to applied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := services.CancelConfirmation(app.Ctx, app.Database, app.Logger, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Confirmation cancelled for %s (%s)\n\n", application.ApplicantName, application.ID)
			return nil
		},
	}
}

// CancelApplicationCmd creates the cancelApplication command
func CancelApplicationCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancelApplication <application_id>",
		Short: "Cancel an application and release any confirmed entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := services.CancelApplication(app.Ctx, app.Database, app.Logger, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Application cancelled for %s (%s)\n\n", application.ApplicantName, application.ID)
			return nil
		},
	}
}
