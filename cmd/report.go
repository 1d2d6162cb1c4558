package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/attendance"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a detailed attendance report",
	Long: `Print totals, the covered date range, today's attendance, the most
frequent attendees and the most recent records.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().Bool("json", false, "Output as JSON")
}

func runReport(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	return a.report(mustGetBool(cmd, "json"))
}

func (a *app) report(jsonOutput bool) error {
	report, err := a.ledger.Report(attendance.FormatDate(time.Now()))
	if errors.Is(err, attendance.ErrNoData) {
		fmt.Println("No attendance data found!")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read attendance: %w", err)
	}
	if jsonOutput {
		return outputJSON(report)
	}

	fmt.Println("\nATTENDANCE REPORT")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Total Records: %d\n", report.TotalRecords)
	fmt.Printf("Unique People: %d\n", report.UniquePeople)
	fmt.Printf("Date Range: %s to %s\n", report.FirstDate, report.LastDate)
	fmt.Printf("Today's Attendance: %d\n", report.TodayCount)

	fmt.Println("\nMost Frequent Attendees:")
	for i, nc := range report.TopAttendees {
		fmt.Printf("%d. %s: %d days\n", i+1, nc.Name, nc.Count)
	}

	fmt.Printf("\nRecent Activity (Last %d records):\n", len(report.Recent))
	for _, rec := range report.Recent {
		fmt.Printf("- %s on %s at %s\n", rec.Name, rec.Date, rec.Time)
	}
	return nil
}
