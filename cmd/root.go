package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "face-attendance",
	Short: "Face recognition attendance system",
	Long: `Face Attendance captures face images of known people, precomputes their
face embeddings and marks attendance in a CSV file when a known face is
recognized on the camera.

Run without a sub-command to open the interactive menu.`,
	SilenceUsage: true,
	RunE:         runMenu,
}

// Execute runs the root command. Ctrl+C cancels the command context, which
// closes open camera windows and stops the server.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file overlaying environment settings")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
