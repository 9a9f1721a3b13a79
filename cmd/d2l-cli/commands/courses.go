package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(coursesCmd)
}

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "Lists the courses on the home page.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		courses, err := service.Courses(cmd.Context())
		if err != nil {
			return fmt.Errorf("list courses: %w", err)
		}
		if len(courses) == 0 {
			fmt.Println("No courses found.")
			return nil
		}

		t := newTable()
		t.AppendHeader(table.Row{"OU", "Name"})
		for _, c := range courses {
			t.AppendRow(table.Row{c.Id, c.Name})
		}
		t.Render()
		return nil
	},
}
