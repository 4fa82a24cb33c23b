package main

import (
	"github.com/spf13/cobra"

	"github.com/shajara-uz/shajara/modules/genealogy"
	"github.com/shajara-uz/shajara/pkg/composables"
	"github.com/shajara-uz/shajara/pkg/configuration"
	"github.com/shajara-uz/shajara/pkg/logging"
)

func newBridgeIssuesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bridge-issues",
		Short: "Report branch pairs with ambiguous bridge links",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			log := logging.ConsoleLogger(configuration.Use().LogrusLevel())
			svc := genealogy.NewServices(log)

			ctx := composables.WithPool(cmd.Context(), pool)
			issues, err := svc.Bridges.DetectBridgeIssues(ctx)
			if err != nil {
				return err
			}

			if len(issues) == 0 {
				cmd.Println("no branch pairs with multiple active bridge links")
				return nil
			}
			for _, issue := range issues {
				health := "NO PRIMARY"
				if issue.HasPrimary {
					health = "primary: " + issue.PrimaryLinkID.String()
				}
				cmd.Printf("%s <-> %s: %d links (%s)\n", issue.BranchA, issue.BranchB, issue.TotalLinks, health)
				for _, link := range issue.Links {
					marker := "  -"
					if link.IsPrimaryBridge() {
						marker = "  *"
					}
					cmd.Printf("%s %s %s [%s]\n", marker, link.ID(), link.DisplayName(), link.Status())
				}
			}
			return nil
		},
	}
}
