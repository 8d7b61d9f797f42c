package cmd

import (
    "github.com/spf13/cobra"

    "medallion/internal/schema"
    "medallion/internal/ui"
)

var provisionCmd = &cobra.Command{
    Use:   "provision",
    Short: "Create the layer schemas and tables",
    Long: "Create the bronze, silver, and gold schemas plus every raw,\n" +
        "cleansed, star-schema, and log table. Idempotent: existing objects\n" +
        "are left untouched.",
    RunE: runProvision,
}

func runProvision(cmd *cobra.Command, args []string) error {
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

    ui.ShowHeader("Warehouse Provisioning")

    provisioner := schema.NewProvisioner(svc, cfg)
    provisioner.SetProgress(progressPrintf)
    if err := provisioner.Provision(ctx); err != nil {
        ui.ShowError(err)
        return err
    }

    ui.ShowSuccess("Warehouse provisioned")
    return nil
}

func init() {
    rootCmd.AddCommand(provisionCmd)
}
