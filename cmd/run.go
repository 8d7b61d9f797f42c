package cmd

import (
    "time"

    "github.com/spf13/cobra"

    "medallion/internal/ui"
)

var runCmd = &cobra.Command{
    Use:   "run",
    Short: "Run the full pipeline: bronze, silver, gold",
    Long: "Run all three layer batches in order. Each layer is its own\n" +
        "transaction; a failing layer rolls back and stops the run, leaving the\n" +
        "earlier layers committed.",
    RunE: runPipeline,
}

func runPipeline(cmd *cobra.Command, args []string) error {
    cfg, err := loadConfig()
    if err != nil {
        return err
    }

    svc, err := connect(cfg)
    if err != nil {
        return err
    }
    defer svc.Close()

    ctx, cancel := batchContext(cfg)
    defer cancel()

    start := time.Now()
    ui.ShowHeader("Pipeline Run")

    layers := []struct {
        name string
        run  func() error
    }{
        {"bronze", func() error { return runBronze(ctx, svc, cfg) }},
        {"silver", func() error { return runSilver(ctx, svc, cfg) }},
        {"gold", func() error { return runGold(ctx, svc, cfg) }},
    }

    for _, layer := range layers {
        ui.ShowInfo("Starting " + layer.name + " batch")
        if err := layer.run(); err != nil {
            ui.ShowError(err)
            return err
        }
    }

    ui.ShowSuccess("Pipeline completed in " + time.Since(start).Round(time.Millisecond).String())
    return nil
}

func init() {
    rootCmd.AddCommand(runCmd)
}
