package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(gradeCmd)
}

var gradeCmd = &cobra.Command{
	Use:   "grade <ou>",
	Short: "Prints the current grade of a course.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		grade, err := service.GetGrade(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("get grade: %w", err)
		}
		fmt.Println(grade)
		return nil
	},
}
