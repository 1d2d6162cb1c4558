package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/recognizer"
	"github.com/kozaktomas/face-attendance/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Face Attendance HTTP API.
The API serves attendance records, stats and reports, lists known people,
accepts image uploads and recognizes faces in posted images.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (defaults to WEB_PORT or 8080)")
	serveCmd.Flags().String("host", "", "Host to bind to (defaults to WEB_HOST or 0.0.0.0)")
}

// resolveServeHostPort applies flag overrides on top of the loaded config.
func (a *app) resolveServeHostPort(cmd *cobra.Command) {
	if port := mustGetInt(cmd, "port"); port > 0 {
		a.cfg.Web.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		a.cfg.Web.Host = host
	}
}

// openSession loads the known faces for the recognize endpoint.
// A missing table is not fatal, the endpoint answers 503 until embeddings are computed.
func (a *app) openSession(ctx context.Context, store database.KnownFaceReader) (*recognizer.Session, func(), error) {
	embedder, closeEmbedder, err := a.newEmbedder()
	if err != nil {
		return nil, nil, err
	}

	session, err := recognizer.Open(ctx, store, embedder, a.ledger, a.cfg.Matching)
	if errors.Is(err, database.ErrNoKnownFaces) {
		closeEmbedder()
		fmt.Println("Warning: no known faces stored, face recognition is disabled")
		return nil, func() {}, nil
	}
	if err != nil {
		closeEmbedder()
		return nil, nil, err
	}
	fmt.Printf("Face recognition enabled with %d known faces\n", session.KnownFaces())
	return session, closeEmbedder, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	a.resolveServeHostPort(cmd)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()
	fmt.Printf("Using %s for known faces\n", a.storeName())

	session, closeSession, err := a.openSession(ctx, store)
	if err != nil {
		return err
	}
	defer closeSession()

	server := web.NewServer(a.cfg, web.Dependencies{
		Ledger:  a.ledger,
		Library: a.lib,
		Store:   store,
		Session: session,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
		case <-ctx.Done():
		}
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Face Attendance API on http://%s:%d\n", a.cfg.Web.Host, a.cfg.Web.Port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
