package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shajara-uz/shajara/modules/genealogy"
	"github.com/shajara-uz/shajara/pkg/composables"
	"github.com/shajara-uz/shajara/pkg/configuration"
	"github.com/shajara-uz/shajara/pkg/logging"
)

func newRecalculateCmd() *cobra.Command {
	var branchID string

	cmd := &cobra.Command{
		Use:   "recalculate",
		Short: "Recompute generation numbers for one branch",
		RunE: func(cmd *cobra.Command, args []string) error {
			bid, err := uuid.Parse(branchID)
			if err != nil {
				return fmt.Errorf("invalid --branch: %w", err)
			}

			pool, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			log := logging.ConsoleLogger(configuration.Use().LogrusLevel())
			svc := genealogy.NewServices(log)

			ctx := composables.WithPool(cmd.Context(), pool)
			result, err := svc.Generations.Recalculate(ctx, bid)
			if err != nil {
				return err
			}

			cmd.Printf("branch %s: %d people across %d generations\n", bid, result.TotalPeople, result.TotalGenerations)
			if result.CycleAnomalies > 0 {
				cmd.Printf("warning: %d parent-cycle anomalies forced to generation 1\n", result.CycleAnomalies)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&branchID, "branch", "", "branch id to recalculate")
	_ = cmd.MarkFlagRequired("branch")
	return cmd
}
