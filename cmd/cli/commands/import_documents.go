package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tholdem/holdem-staff/pkg/core/services"
)

// ImportDocumentsCmd creates the importDocuments command
func ImportDocumentsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "importDocuments <file>",
		Short: "Load a JSON export of postings and applications",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open import file: %w", err)
			}
			defer f.Close()

			result, err := services.ImportDocuments(app.Ctx, app.Database, app.Logger, f)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Import completed!\n\n")
			fmt.Printf("Postings:     %d\n", result.Postings)
			fmt.Printf("Applications: %d\n", result.Applications)
			if result.Incomplete > 0 {
				fmt.Printf("⚠️  %d applications have an incomplete assignment history, see the log\n", result.Incomplete)
			}
			fmt.Println()
			return nil
		},
	}
}
