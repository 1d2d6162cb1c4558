package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/camera"
	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/recognizer"
)

var recognizeCmd = &cobra.Command{
	Use:   "recognize",
	Short: "Recognize faces on the camera and mark attendance",
	Long: `Detect faces on the live camera feed, match them against the precomputed
embeddings and mark each recognized person present once per day.

Press ESC or close the window to stop.`,
	Args: cobra.NoArgs,
	RunE: runRecognize,
}

func init() {
	rootCmd.AddCommand(recognizeCmd)
	recognizeCmd.Flags().Float64("threshold", 0, "Override the match threshold (0 uses the configured value)")
}

func runRecognize(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if threshold := mustGetFloat64(cmd, "threshold"); threshold > 0 {
		a.cfg.Matching.Threshold = threshold
		if err := a.cfg.Validate(); err != nil {
			return err
		}
	}
	return a.recognize(cmd.Context())
}

func (a *app) recognize(ctx context.Context) error {
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

	session, err := recognizer.Open(ctx, store, embedder, a.ledger, a.cfg.Matching)
	if errors.Is(err, database.ErrNoKnownFaces) {
		fmt.Println("No known faces loaded! Precompute embeddings first.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("Loaded %d known faces\n", session.KnownFaces())
	fmt.Println("Starting face recognition. Press ESC to exit.")

	if _, err := camera.Recognize(ctx, a.cfg.Camera.Device, a.cfg.Camera.CascadePath, session); err != nil {
		return fmt.Errorf("recognition failed: %w", err)
	}

	c := session.Counters()
	fmt.Printf("Session %s: %d faces, %d recognized, %d unknown, %d errors, %d marked\n",
		session.ID()[:8], c.Faces, c.Recognized, c.Unknown, c.Errors, c.Marked)
	return nil
}
