package cmd

import (
    "context"
    "fmt"

    "medallion/internal/bronze"
    "medallion/internal/config"
    "medallion/internal/gold"
    "medallion/internal/silver"
    "medallion/internal/steplog"
    "medallion/internal/ui"
    "medallion/internal/warehouse"
    "medallion/pkg/models"
)

// loadConfig reads and validates the pipeline configuration
func loadConfig() (*models.Config, error) {
    cfg, err := config.Load()
    if err != nil {
        return nil, err
    }
    if err := config.Validate(cfg); err != nil {
        return nil, err
    }
    return cfg, nil
}

// connect opens the warehouse connection described by the configuration
func connect(cfg *models.Config) (*warehouse.Service, error) {
    svc := warehouse.NewService(warehouse.ConfigFromModel(cfg.Warehouse, config.Timeout(cfg)))

    spinner := ui.NewSpinner(fmt.Sprintf("Connecting to %s...", cfg.Warehouse.Account))
    spinner.Start()
    if err := svc.Connect(); err != nil {
        spinner.Stop(false, "Connection failed")
        return nil, err
    }
    spinner.Stop(true, fmt.Sprintf("Connected to %s", cfg.Warehouse.Account))
    return svc, nil
}

// batchContext derives the run context from the configured timeout
func batchContext(cfg *models.Config) (context.Context, context.CancelFunc) {
    return context.WithTimeout(context.Background(), config.Timeout(cfg))
}

func runBronze(ctx context.Context, svc *warehouse.Service, cfg *models.Config) error {
    loader := bronze.NewLoader(svc, cfg,
        steplog.NewWarehouseStepSink(svc, cfg.Layers.Bronze),
        steplog.NewWarehouseFailureSink(svc))
    loader.SetProgress(progressPrintf)
    return loader.Run(ctx)
}

func runSilver(ctx context.Context, svc *warehouse.Service, cfg *models.Config) error {
    loader := silver.NewLoader(svc, cfg,
        steplog.NewWarehouseStepSink(svc, cfg.Layers.Silver),
        steplog.NewWarehouseFailureSink(svc))
    loader.SetProgress(progressPrintf)
    return loader.Run(ctx)
}

func runGold(ctx context.Context, svc *warehouse.Service, cfg *models.Config) error {
    builder := gold.NewBuilder(svc, cfg,
        steplog.NewWarehouseStepSink(svc, cfg.Layers.Gold),
        steplog.NewWarehouseFailureSink(svc))
    builder.SetProgress(progressPrintf)
    return builder.Run(ctx)
}

func progressPrintf(format string, args ...interface{}) {
    fmt.Printf(format+"\n", args...)
}

// runSingleLayer is the shared body of the ingest, transform, and publish
// commands.
func runSingleLayer(title string, run func(context.Context, *warehouse.Service, *models.Config) error) error {
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

    ui.ShowHeader(title)
    if err := run(ctx, svc, cfg); err != nil {
        ui.ShowError(err)
        return err
    }
    ui.ShowSuccess(title + " completed")
    return nil
}
