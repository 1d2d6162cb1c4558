package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/library"
)

// menuEntry is one numbered line of the interactive menu
type menuEntry struct {
	key    string
	label  string
	action func(m *menu, ctx context.Context) error
}

// menu is the interactive console front end over the sub-command actions
type menu struct {
	app *app
	in  *bufio.Reader
	// capturing is set while a detached capture window is open
	capturing atomic.Bool
}

var menuEntries = []menuEntry{
	{"1", "Capture New Person", (*menu).startCapture},
	{"2", "Recognize Person", func(m *menu, ctx context.Context) error { return m.app.recognize(ctx) }},
	{"3", "Upload Image", (*menu).uploadImage},
	{"4", "Show Attendance Stats", func(m *menu, _ context.Context) error { return m.app.showStats(false) }},
	{"5", "Clear Today's Attendance", func(m *menu, _ context.Context) error {
		return m.app.clearDate(attendance.FormatDate(time.Now()))
	}},
	{"6", "Precompute Embeddings", func(m *menu, ctx context.Context) error { return m.app.precompute(ctx, true, false) }},
	{"7", "List Known Faces", func(m *menu, _ context.Context) error { return m.app.listPeople(false) }},
	{"8", "Generate Report", func(m *menu, _ context.Context) error { return m.app.report(false) }},
	{"9", "System Information", func(m *menu, ctx context.Context) error { return m.app.systemInfo(ctx) }},
	{"10", "Backup Data", func(m *menu, _ context.Context) error { return m.app.backup() }},
	{"11", "Test Camera", func(m *menu, ctx context.Context) error { return m.app.testCamera(ctx, ".") }},
	{"12", "Clear All Data", func(m *menu, ctx context.Context) error { return m.app.reset(ctx, false) }},
}

func runMenu(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	m := &menu{app: a, in: stdin}
	return m.run(cmd.Context())
}

func printMenu() {
	fmt.Println("\n=== Face Recognition Attendance System ===")
	for _, e := range menuEntries {
		fmt.Printf("%s. %s\n", e.key, e.label)
	}
	fmt.Println("0. Exit")
}

func findMenuEntry(choice string) (menuEntry, bool) {
	for _, e := range menuEntries {
		if e.key == choice {
			return e, true
		}
	}
	return menuEntry{}, false
}

// run loops until 0 is chosen, stdin ends or ctx is cancelled.
// Errors of an entry are printed and the menu continues.
func (m *menu) run(ctx context.Context) error {
	for ctx.Err() == nil {
		printMenu()
		choice, err := readLine(m.in, "Enter choice: ")
		if errors.Is(err, io.EOF) {
			fmt.Println("\nExiting...")
			return nil
		}
		if err != nil {
			return err
		}

		if choice == "0" {
			fmt.Println("Exiting...")
			return nil
		}
		entry, ok := findMenuEntry(choice)
		if !ok {
			fmt.Println("[ERROR] Invalid choice, please try again.")
			continue
		}
		if err := entry.action(m, ctx); err != nil {
			fmt.Printf("[ERROR] %v\n", err)
		}
	}
	return nil
}

// startCapture asks for the name and opens the capture window in a detached
// goroutine so the menu stays usable. Only one capture runs at a time.
func (m *menu) startCapture(ctx context.Context) error {
	if m.capturing.Load() {
		return errors.New("a capture session is already running")
	}

	name, err := readLine(m.in, "Enter person's name: ")
	if err != nil {
		return err
	}
	if name, err = library.ValidateName(name); err != nil {
		return err
	}

	if !m.capturing.CompareAndSwap(false, true) {
		return errors.New("a capture session is already running")
	}
	go func() {
		defer m.capturing.Store(false)
		if err := m.app.capture(ctx, name); err != nil {
			fmt.Printf("[ERROR] %v\n", err)
		}
	}()
	fmt.Printf("[INFO] Capture window opened for %s\n", name)
	return nil
}

func (m *menu) uploadImage(_ context.Context) error {
	name, err := readLine(m.in, "Enter person's name: ")
	if err != nil {
		return err
	}
	if name == "" {
		return errors.New("name cannot be empty")
	}
	path, err := readLine(m.in, "Enter full image path: ")
	if err != nil {
		return err
	}
	return m.app.uploadImage(name, path)
}
