package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up the attendance file and known faces",
	Long: `Copy the attendance file and the known-faces directory into a new
backup_<YYYYMMDD_HHMMSS> directory under the backup directory.`,
	Args: cobra.NoArgs,
	RunE: runBackup,
}

func init() {
	rootCmd.AddCommand(backupCmd)
}

func runBackup(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	return a.backup()
}

func (a *app) backup() error {
	result, err := a.lib.Backup(a.cfg.Storage.BackupDir, a.cfg.Storage.AttendanceFile, time.Now())
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	if result.Attendance {
		fmt.Printf("Backed up %s to %s\n", a.cfg.Storage.AttendanceFile, result.Dir)
	}
	if result.Faces {
		fmt.Printf("Backed up %s (%d files) to %s\n", a.lib.Dir(), result.Files, result.Dir)
	}
	if !result.Attendance && !result.Faces {
		fmt.Println("Nothing to back up.")
	}
	fmt.Printf("Backup completed: %s\n", result.Dir)
	return nil
}
