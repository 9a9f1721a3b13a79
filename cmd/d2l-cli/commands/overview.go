package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(overviewCmd)
}

var overviewCmd = &cobra.Command{
	Use:   "overview <ou>",
	Short: "Prints the grade and the upcoming items of a course, either may fail on its own.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		overview := service.Overview(cmd.Context(), args[0])

		if overview.GradeErr != nil {
			fmt.Printf("Grade: unavailable (%v)\n", overview.GradeErr)
		} else {
			fmt.Printf("Grade: %s\n", overview.Grade)
		}

		if overview.UpcomingErr != nil {
			fmt.Printf("Upcoming: unavailable (%v)\n", overview.UpcomingErr)
			return nil
		}
		renderUpcoming(overview.Upcoming)
		return nil
	},
}
