package cmd

import (
    "github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
    Use:   "ingest",
    Short: "Load the raw extracts into the bronze layer",
    Long: "Truncate and reload every bronze landing table from the configured\n" +
        "delimited extract files, in one transaction.",
    RunE: func(cmd *cobra.Command, args []string) error {
        return runSingleLayer("Bronze Ingestion", runBronze)
    },
}

func init() {
    rootCmd.AddCommand(ingestCmd)
}
