package commands

import (
	"fmt"
	"log/slog"

	"brightspace-helper/internal/whatif"

	"github.com/spf13/cobra"
)

var (
	whatifSet   *[]string
	whatifBonus *float64
	whatifSave  *bool
)

func init() {
	whatifSet = whatifCmd.Flags().StringArray("set", nil, `An override as "<item>=<earned>/<possible>", either side may be "-" to keep it. Repeatable.`)
	whatifBonus = whatifCmd.Flags().Float64("bonus", 0, "Bonus points added to the earned total.")
	whatifSave = whatifCmd.Flags().Bool("save", false, "Persist the resulting overrides.")
	rootCmd.AddCommand(whatifCmd)
}

var whatifCmd = &cobra.Command{
	Use:   `whatif <ou> [--set "<item>=<earned>/<possible>"]... [--bonus <n>] [--save]`,
	Short: "Projects the course percentage with hypothetical scores.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ou := args[0]

		session, err := service.WhatIf(ctx, ou)
		if err != nil {
			return fmt.Errorf("load what-if session: %w", err)
		}
		if len(session.Model.Items) == 0 {
			fmt.Println("No grade items found.")
			return nil
		}

		var assignments []whatif.Assignment
		for _, text := range *whatifSet {
			a, err := whatif.ParseAssignment(text)
			if err != nil {
				return fmt.Errorf("invalid override: %w", err)
			}
			assignments = append(assignments, a)
		}
		o, err := whatif.Apply(session.Model, session.Overrides, assignments)
		if err != nil {
			return fmt.Errorf("apply overrides: %w", err)
		}
		if cmd.Flags().Changed("bonus") {
			o.BonusPoints = *whatifBonus
		}

		result := service.ComputeWhatIf(session.Model, o)
		renderModel(session.Model, o)
		fmt.Printf(
			"Projected: %.2f%% (%g / %g, bonus %g)\n",
			result.Percent,
			result.Numerator,
			result.Denominator,
			o.BonusPoints,
		)

		if !*whatifSave {
			return nil
		}
		err = service.SaveOverrides(ctx, ou, o)
		if err != nil {
			return fmt.Errorf("save overrides: %w", err)
		}
		slog.Info("saved overrides", "ou", ou, "items", len(o.Items))
		return nil
	},
}
