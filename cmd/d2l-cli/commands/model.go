package commands

import (
	"fmt"

	"brightspace-helper/internal/scrapers/d2l"
	"brightspace-helper/internal/whatif"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(modelCmd)
}

func formatPoints(v float64) string {
	return fmt.Sprintf("%g", v)
}

// renderModel prints the items of model, with overridden points marked by a "*".
func renderModel(model d2l.GradesModel, o whatif.Overrides) {
	t := newTable()
	t.AppendHeader(table.Row{"Id", "Name", "Earned", "Possible", "Bonus", "Exempt"})
	for _, item := range model.Items {
		earned := formatPoints(item.Earned)
		possible := formatPoints(item.Possible)
		override, ok := o.Items[item.Id]
		if ok && override.Earned != nil {
			earned = formatPoints(*override.Earned) + "*"
		}
		if ok && override.Possible != nil {
			possible = formatPoints(*override.Possible) + "*"
		}
		t.AppendRow(table.Row{item.Id, item.Name, earned, possible, item.IsBonus, item.IsExempt})
	}
	t.Render()
}

var modelCmd = &cobra.Command{
	Use:   "model <ou>",
	Short: "Lists the grade items read off the grades page of a course.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		model, err := service.GetGradesModel(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("get grades model: %w", err)
		}
		if len(model.Items) == 0 {
			fmt.Println("No grade items found.")
			return nil
		}
		renderModel(model, whatif.Overrides{})
		return nil
	},
}
