package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/camera"
)

var cameraTestCmd = &cobra.Command{
	Use:   "camera-test",
	Short: "Check the camera and take a test picture",
	Long: `Open the camera and show its feed. Press any key to save
test_image_<timestamp>.jpg into the current directory, ESC to exit.`,
	Args: cobra.NoArgs,
	RunE: runCameraTest,
}

func init() {
	rootCmd.AddCommand(cameraTestCmd)
	cameraTestCmd.Flags().String("dir", ".", "Directory for the test image")
}

func runCameraTest(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	return a.testCamera(cmd.Context(), mustGetString(cmd, "dir"))
}

func (a *app) testCamera(ctx context.Context, dir string) error {
	fmt.Println("Testing camera...")
	if !camera.Check(a.cfg.Camera.Device) {
		return fmt.Errorf("cannot access camera %d", a.cfg.Camera.Device)
	}
	fmt.Println("Camera accessible")
	fmt.Println("Press any key to capture test image, ESC to exit")

	path, err := camera.Test(ctx, a.cfg.Camera.Device, dir)
	if err != nil {
		return fmt.Errorf("camera test failed: %w", err)
	}
	if path != "" {
		fmt.Printf("Test image captured: %s\n", path)
	}
	fmt.Println("Camera test completed")
	return nil
}
