package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/camera"
	"github.com/kozaktomas/face-attendance/internal/library"
)

var captureCmd = &cobra.Command{
	Use:   "capture [name]",
	Short: "Capture face images of a person from the camera",
	Long: `Open the camera and save a frame into the person's directory each time
SPACE is pressed. ESC or closing the window ends the capture.

The name is asked for when it is not given as an argument.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCapture,
}

func init() {
	rootCmd.AddCommand(captureCmd)
}

func runCapture(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	var name string
	if len(args) == 1 {
		name = args[0]
	} else {
		if name, err = readLine(stdin, "Enter person's name: "); err != nil {
			return err
		}
	}
	if name, err = library.ValidateName(name); err != nil {
		return err
	}
	return a.capture(cmd.Context(), name)
}

func (a *app) capture(ctx context.Context, name string) error {
	if !camera.Check(a.cfg.Camera.Device) {
		return fmt.Errorf("cannot access camera %d", a.cfg.Camera.Device)
	}

	saved, err := camera.Capture(ctx, a.cfg.Camera.Device, a.lib, name)
	if err != nil {
		return fmt.Errorf("capture failed: %w", err)
	}
	fmt.Printf("[INFO] Capture finished for %s: %d images saved\n", name, saved)
	return nil
}
