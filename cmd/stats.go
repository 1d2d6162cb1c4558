package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/attendance"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show attendance statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().Bool("json", false, "Output as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	return a.showStats(mustGetBool(cmd, "json"))
}

func (a *app) showStats(jsonOutput bool) error {
	stats, err := a.ledger.Stats(attendance.FormatDate(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to read attendance: %w", err)
	}
	if jsonOutput {
		return outputJSON(stats)
	}

	fmt.Println("\n----- Attendance Stats -----")
	fmt.Printf("Total Records  : %d\n", stats.TotalRecords)
	fmt.Printf("Unique People  : %d\n", stats.UniquePeople)
	fmt.Printf("Today's Count  : %d\n", stats.TodayCount)
	fmt.Printf("Latest Date    : %s\n", stats.LatestDate)
	fmt.Println("----------------------------")
	return nil
}
