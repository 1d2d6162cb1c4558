package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gocv.io/x/gocv"

	"github.com/kozaktomas/face-attendance/internal/database"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show system information and status",
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	return a.systemInfo(cmd.Context())
}

func (a *app) systemInfo(ctx context.Context) error {
	fmt.Println("\nSYSTEM INFORMATION")
	fmt.Println(strings.Repeat("=", 50))

	info, err := a.lib.Info()
	if err != nil {
		return err
	}
	if !info.Exists {
		fmt.Println("Known People: 0 (no directory)")
	} else {
		fmt.Printf("Known People: %d\n", len(info.People))
		for _, p := range info.People {
			fmt.Printf("  - %s: %d images\n", p.Name, p.Images)
		}
	}

	if fi, err := os.Stat(a.ledger.Path()); err == nil {
		stats, err := a.ledger.Stats("")
		if err != nil {
			return fmt.Errorf("failed to read attendance: %w", err)
		}
		fmt.Printf("Attendance Records: %d\n", stats.TotalRecords)
		fmt.Printf("File Size: %d bytes\n", fi.Size())
	} else {
		fmt.Println("Attendance Records: 0 (no file)")
	}

	a.printEmbeddingsInfo(ctx)

	fmt.Printf("OpenCV Version: %s\n", gocv.OpenCVVersion())
	fmt.Printf("Embedding Backend: %s\n", a.cfg.Embedding.Backend)
	return nil
}

// printEmbeddingsInfo reports the stored known-face table without failing the info command.
func (a *app) printEmbeddingsInfo(ctx context.Context) {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		fmt.Printf("Embeddings: unavailable (%v)\n", err)
		return
	}
	defer closeStore()

	table, err := store.Load(ctx)
	switch {
	case errors.Is(err, database.ErrNoKnownFaces):
		fmt.Printf("Embeddings: none (%s)\n", a.storeName())
	case err != nil:
		fmt.Printf("Embeddings: unreadable (%v)\n", err)
	default:
		fmt.Printf("Embeddings: %d people, %d dimensions, model %s, computed %s (%s)\n",
			table.Len(), table.Dim(), table.Model, table.CreatedAt.Format("2006-01-02 15:04"), a.storeName())
	}
}
