package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/constants"
)

var clearTodayCmd = &cobra.Command{
	Use:   "clear-today",
	Short: "Remove today's attendance records",
	Long: `Remove the attendance rows of today (or of --date) from the CSV file.
Rows of all other dates are kept in their original order.

Example:
  face-attendance clear-today
  face-attendance clear-today --date 2024-03-15 --yes`,
	Args: cobra.NoArgs,
	RunE: runClearToday,
}

func init() {
	rootCmd.AddCommand(clearTodayCmd)
	clearTodayCmd.Flags().String("date", "", "Date to clear (YYYY-MM-DD), defaults to today")
	clearTodayCmd.Flags().Bool("yes", false, "Skip confirmation prompt")
}

func runClearToday(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	date := mustGetString(cmd, "date")
	if date == "" {
		date = attendance.FormatDate(time.Now())
	} else if _, err := time.Parse(constants.DateFormat, date); err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}

	if !mustGetBool(cmd, "yes") && !confirmAction(fmt.Sprintf("Remove all attendance records of %s? [y/N]: ", date)) {
		fmt.Println("Cancelled.")
		return nil
	}
	return a.clearDate(date)
}

// clearDate removes the rows of date and reports the outcome.
func (a *app) clearDate(date string) error {
	removed, err := a.ledger.ClearDate(date)
	if errors.Is(err, attendance.ErrNoData) {
		fmt.Println("[INFO] No attendance data to clear.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to clear attendance of %s: %w", date, err)
	}
	if removed == 0 {
		fmt.Printf("[INFO] No attendance records for %s.\n", date)
		return nil
	}
	fmt.Printf("[INFO] Cleared %d attendance record(s) for %s.\n", removed, date)
	return nil
}
