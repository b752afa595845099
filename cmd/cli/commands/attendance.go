package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tholdem/holdem-staff/pkg/core/model"
	"github.com/tholdem/holdem-staff/pkg/core/services"
)

// AttendanceCmd creates the attendance command
func AttendanceCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "attendance <posting_id> <staff_id> <date> [status]",
		Short: "Show or update a staff member's attendance (not_started, checked_in, checked_out, absent)",
		Args:  cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			postingID, staffID, date := args[0], args[1], args[2]

			var view *services.AttendanceView
			if len(args) > 3 {
				status, err := model.ParseAttendanceStatus(args[3])
				if err != nil {
					return err
				}
				view, err = services.UpdateAttendance(app.Ctx, app.Database, app.Overlay, app.Logger, staffID, postingID, date, status)
				if err != nil {
					return err
				}
				fmt.Printf("\n✓ Attendance updated\n")
			} else {
				var err error
				view, err = services.GetAttendance(app.Ctx, app.Database, app.Overlay, app.Logger, staffID, postingID, date)
				if err != nil {
					return err
				}
			}

			fmt.Printf("\n%s on %s: %s\n", staffID, date, attendanceLabel(view.Effective))
			if view.Effective != view.Record.Status {
				fmt.Printf("%sStored status: %s%s\n", colorDim, view.Record.Status, colorReset)
			}
			fmt.Println()
			return nil
		},
	}
}
