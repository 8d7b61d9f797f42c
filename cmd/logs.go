package cmd

import (
    "fmt"

    "github.com/spf13/cobra"

    "medallion/internal/steplog"
    "medallion/internal/ui"
    "medallion/pkg/models"
)

var (
    logsLayer    string
    logsJob      string
    logsFailures bool
    logsSummary  bool
)

var logsCmd = &cobra.Command{
    Use:   "logs",
    Short: "Show step and failure logs of the latest batch runs",
    Long: "Read the per-layer step logs and the cross-layer failure log from\n" +
        "the warehouse. The step log holds the latest run per layer; failures\n" +
        "accumulate across runs.",
    RunE: runLogs,
}

func runLogs(cmd *cobra.Command, args []string) error {
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

    renderer := ui.NewLogRenderer()

    if logsFailures {
        failures, err := steplog.ReadFailures(ctx, svc)
        if err != nil {
            return err
        }
        ui.ShowHeader("Batch Failures")
        fmt.Print(renderer.RenderFailures(failures))
        return nil
    }

    for _, layer := range layerSchemas(cfg) {
        if logsLayer != "" && logsLayer != layer.name {
            continue
        }

        entries, err := steplog.ReadSteps(ctx, svc, layer.schema)
        if err != nil {
            return err
        }
        if logsJob != "" {
            entries = filterByJob(entries, logsJob)
        }

        ui.ShowHeader(layer.name + " steps")
        if len(entries) == 0 {
            fmt.Println("No recorded steps.")
            continue
        }
        if logsSummary {
            fmt.Print(renderer.RenderSummary(steplog.Summarize(entries)))
        } else {
            fmt.Print(renderer.RenderSteps(entries))
        }
    }
    return nil
}

type layerSchema struct {
    name   string
    schema string
}

func filterByJob(entries []steplog.Entry, job string) []steplog.Entry {
    var out []steplog.Entry
    for _, e := range entries {
        if e.Batch == job {
            out = append(out, e)
        }
    }
    return out
}

func layerSchemas(cfg *models.Config) []layerSchema {
    return []layerSchema{
        {"bronze", cfg.Layers.Bronze},
        {"silver", cfg.Layers.Silver},
        {"gold", cfg.Layers.Gold},
    }
}

func init() {
    logsCmd.Flags().StringVar(&logsLayer, "layer", "", "Show only one layer (bronze, silver, gold)")
    logsCmd.Flags().StringVar(&logsJob, "job", "", "Show only steps of one job, e.g. silver.load")
    logsCmd.Flags().BoolVar(&logsFailures, "failures", false, "Show the failure log instead of step logs")
    logsCmd.Flags().BoolVar(&logsSummary, "summary", false, "Aggregate steps by batch name")
    rootCmd.AddCommand(logsCmd)
}
