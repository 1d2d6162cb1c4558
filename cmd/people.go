package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var peopleCmd = &cobra.Command{
	Use:     "people",
	Aliases: []string{"list"},
	Short:   "List known people and their image counts",
	Args:    cobra.NoArgs,
	RunE:    runPeople,
}

func init() {
	rootCmd.AddCommand(peopleCmd)
	peopleCmd.Flags().Bool("json", false, "Output as JSON")
}

func runPeople(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	return a.listPeople(mustGetBool(cmd, "json"))
}

func (a *app) listPeople(jsonOutput bool) error {
	people, err := a.lib.People()
	if err != nil {
		return err
	}
	if jsonOutput {
		if people == nil {
			return outputJSON([]any{})
		}
		return outputJSON(people)
	}

	if !a.lib.Exists() {
		fmt.Println("[INFO] No known faces directory found.")
		return nil
	}
	if len(people) == 0 {
		fmt.Println("[INFO] No people registered yet.")
		return nil
	}

	fmt.Println("\nKnown people in the system:")
	for i, p := range people {
		fmt.Printf("%d. %s (%d images)\n", i+1, p.Name, p.Images)
	}
	return nil
}
