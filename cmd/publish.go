package cmd

import (
    "github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
    Use:   "publish",
    Short: "Rebuild the gold star schema from the silver layer",
    Long: "Rebuild dim_customers, dim_products, and fact_sales with set-based\n" +
        "inserts, dimensions before facts, in one transaction.",
    RunE: func(cmd *cobra.Command, args []string) error {
        return runSingleLayer("Gold Publish", runGold)
    },
}

func init() {
    rootCmd.AddCommand(publishCmd)
}
