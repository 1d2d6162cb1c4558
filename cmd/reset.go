package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all attendance and face data",
	Long: `Delete the attendance file, the known-faces directory and the stored
embeddings. This cannot be undone; run backup first.

You are asked to type YES unless --yes is given.`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().Bool("yes", false, "Skip confirmation prompt")
}

func runReset(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	return a.reset(cmd.Context(), mustGetBool(cmd, "yes"))
}

func (a *app) reset(ctx context.Context, skipConfirm bool) error {
	if !skipConfirm {
		fmt.Println("WARNING: This will delete ALL attendance and face data!")
		if !confirmExact("Type 'YES' to confirm: ", "YES") {
			fmt.Println("Operation cancelled")
			return nil
		}
	}

	if err := a.ledger.Reset(); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", a.ledger.Path())

	if err := a.lib.Reset(); err != nil {
		return err
	}
	fmt.Printf("Deleted %s directory\n", a.lib.Dir())

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()
	if err := store.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete embeddings: %w", err)
	}
	fmt.Printf("Deleted embeddings (%s)\n", a.storeName())

	fmt.Println("All data cleared successfully!")
	return nil
}
