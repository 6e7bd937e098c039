package commands

import (
	"github.com/spf13/cobra"

	"github.com/kopilka-dev/kopilka/internal/views"
)

func newDashboardCommand(a *app) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Print the main page: greeting, cards, top operations, rates and stocks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), a.service().Dashboard(cmd.Context(), at))
		},
	}

	cmd.Flags().StringVar(&at, "at", "", `timestamp "YYYY-MM-DD HH:MM:SS" to greet for (default now)`)

	return cmd
}

func newReportCommand(a *app) *cobra.Command {
	var category, date string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Total a category's spending over the three months before a date and export the rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), a.service().Report(category, date))
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "spending category (required)")
	_ = cmd.MarkFlagRequired("category")
	cmd.Flags().StringVar(&date, "date", "", "window end date YYYY-MM-DD (default today)")

	return cmd
}

func newInvestCommand(a *app) *cobra.Command {
	var month string
	var limit int

	cmd := &cobra.Command{
		Use:   "invest",
		Short: "Compute the round-up savings for a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), a.service().Investment(month, limit))
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month YYYY-MM (required)")
	_ = cmd.MarkFlagRequired("month")
	cmd.Flags().IntVar(&limit, "limit", 0, "round-up threshold (default from config)")

	return cmd
}

func newAllCommand(a *app) *cobra.Command {
	var req views.ApplicationRequest

	cmd := &cobra.Command{
		Use:   "all",
		Short: "Print the main page, the investment service and the category report together",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), a.service().Application(cmd.Context(), req))
		},
	}

	cmd.Flags().StringVar(&req.At, "at", "", `timestamp "YYYY-MM-DD HH:MM:SS" to greet for (default now)`)
	cmd.Flags().StringVar(&req.Month, "month", "", "investment month YYYY-MM (required)")
	_ = cmd.MarkFlagRequired("month")
	cmd.Flags().IntVar(&req.Limit, "limit", 0, "round-up threshold (default from config)")
	cmd.Flags().StringVar(&req.Category, "category", "", "report category (required)")
	_ = cmd.MarkFlagRequired("category")
	cmd.Flags().StringVar(&req.Date, "date", "", "report window end date YYYY-MM-DD (default today)")

	return cmd
}
