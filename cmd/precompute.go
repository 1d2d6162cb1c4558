package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/enroll"
)

var precomputeCmd = &cobra.Command{
	Use:   "precompute",
	Short: "Compute mean face embeddings of all known people",
	Long: `Embed every reference image in the known-faces directory and store the
mean embedding of each person. Images without a detectable face are skipped.

The result is kept in the embeddings file, or in PostgreSQL when DATABASE_URL
is set. Existing embeddings are left alone unless --force is given.

Example:
  face-attendance precompute
  face-attendance precompute --force`,
	Args: cobra.NoArgs,
	RunE: runPrecompute,
}

func init() {
	rootCmd.AddCommand(precomputeCmd)
	precomputeCmd.Flags().Bool("force", false, "Recompute even if embeddings already exist")
	precomputeCmd.Flags().BoolP("verbose", "v", false, "List every skipped image")
}

func runPrecompute(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	return a.precompute(cmd.Context(), mustGetBool(cmd, "force"), mustGetBool(cmd, "verbose"))
}

func (a *app) precompute(ctx context.Context, force, verbose bool) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	embedder, closeEmbedder, err := a.newEmbedder()
	if err != nil {
		return err
	}
	defer closeEmbedder()

	fmt.Printf("Computing embeddings with %s for people in %s\n", embedder.Model(), a.lib.Dir())
	result, err := enroll.NewBuilder(a.lib, embedder, store).Run(ctx, enroll.Options{
		Force:    force,
		Progress: os.Stdout,
	})
	if err != nil && !errors.Is(err, enroll.ErrNoEmbeddings) {
		return err
	}
	if result.Skipped {
		fmt.Printf("Embeddings already exist in %s. Use --force to recompute.\n", a.storeName())
		return nil
	}

	fmt.Println()
	for _, p := range result.People {
		status := "ok"
		if p.Embedded == 0 {
			status = "omitted"
		}
		fmt.Printf("  %-24s %d/%d images  %s\n", p.Name, p.Embedded, p.Images, status)
		if verbose {
			for _, f := range p.Failed {
				fmt.Printf("    skipped %s\n", f)
			}
		}
	}
	if err != nil {
		return err
	}

	fmt.Printf("\nEmbeddings precomputed successfully: %d people saved to %s\n", result.Enrolled(), a.storeName())
	return nil
}
