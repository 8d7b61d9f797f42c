package cmd

import (
    "github.com/spf13/cobra"
)

var transformCmd = &cobra.Command{
    Use:   "transform",
    Short: "Cleanse the bronze snapshot into the silver layer",
    Long: "Run the six cleansing transforms and atomically replace the silver\n" +
        "tables. Any failure rolls back the whole batch and records one entry\n" +
        "in the failure log.",
    RunE: func(cmd *cobra.Command, args []string) error {
        return runSingleLayer("Silver Transform", runSilver)
    },
}

func init() {
    rootCmd.AddCommand(transformCmd)
}
