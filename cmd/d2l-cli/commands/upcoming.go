package commands

import (
	"fmt"

	"brightspace-helper/internal/scrapers/d2l"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(upcomingCmd)
}

func renderUpcoming(items []d2l.UpcomingItem) {
	if len(items) == 0 {
		fmt.Println("Nothing upcoming.")
		return
	}
	t := newTable()
	t.AppendHeader(table.Row{"Kind", "Status", "Title", "When"})
	for _, item := range items {
		t.AppendRow(table.Row{item.Kind, item.Status, item.Title, item.Display()})
	}
	t.Render()
}

var upcomingCmd = &cobra.Command{
	Use:   "upcoming <ou>",
	Short: "Lists the next calendar items of a course.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := service.GetUpcoming(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("get upcoming items: %w", err)
		}
		renderUpcoming(items)
		return nil
	},
}
