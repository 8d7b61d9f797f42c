package config

import (
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    "medallion/internal/common"
    "medallion/pkg/errors"
    "medallion/pkg/models"
    "gopkg.in/yaml.v3"
)

func GetConfigPath() string {
    // Check for environment variable first
    if configPath := os.Getenv("MEDALLION_CONFIG"); configPath != "" {
        return filepath.Dir(configPath)
    }
    home, _ := os.UserHomeDir()
    return filepath.Join(home, ".medallion")
}

func GetConfigFile() string {
    // Check for environment variable first
    if configFile := os.Getenv("MEDALLION_CONFIG"); configFile != "" {
        // Validate the path to prevent directory traversal
        cleaned, err := common.CleanPath(configFile)
        if err != nil {
            // Fall back to default if invalid
            return filepath.Join(GetConfigPath(), "config.yaml")
        }
        return cleaned
    }
    return filepath.Join(GetConfigPath(), "config.yaml")
}

func Load() (*models.Config, error) {
    configFile := GetConfigFile()

    cleanedPath, err := common.CleanPath(configFile)
    if err != nil {
        return nil, fmt.Errorf("invalid config file path: %w", err)
    }

    if _, err := os.Stat(cleanedPath); os.IsNotExist(err) {
        return &models.Config{}, nil
    }

    data, err := os.ReadFile(cleanedPath) // #nosec G304 - path is validated
    if err != nil {
        return nil, fmt.Errorf("failed to read config file: %w", err)
    }

    var config models.Config
    if err := yaml.Unmarshal(data, &config); err != nil {
        return nil, fmt.Errorf("failed to unmarshal config: %w", err)
    }
    applyDefaults(&config)
    return &config, nil
}

func Save(config *models.Config) error {
    configPath := GetConfigPath()
    if err := os.MkdirAll(configPath, common.DirPermissionSecure); err != nil {
        return fmt.Errorf("failed to create config directory: %w", err)
    }

    configFile := GetConfigFile()

    data, err := yaml.Marshal(config)
    if err != nil {
        return fmt.Errorf("failed to marshal config: %w", err)
    }

    if err := os.WriteFile(configFile, data, common.FilePermissionSecure); err != nil {
        return fmt.Errorf("failed to write config file: %w", err)
    }

    return nil
}

func Exists() bool {
    _, err := os.Stat(GetConfigFile())
    return err == nil
}

// Validate checks that the loaded configuration can drive a batch run.
// Missing connection settings are configuration errors; malformed source
// entries are validation errors, so callers can tell them apart by code.
func Validate(config *models.Config) error {
    wh := config.Warehouse
    if wh.Account == "" {
        return errors.ConfigError("warehouse account is required", "warehouse.account")
    }
    if wh.Username == "" {
        return errors.ConfigError("warehouse username is required", "warehouse.username")
    }
    if wh.Password == "" {
        return errors.ConfigError("warehouse password is required", "warehouse.password")
    }
    if wh.Database == "" {
        return errors.ConfigError("warehouse database is required", "warehouse.database")
    }
    if config.Layers.Bronze == "" || config.Layers.Silver == "" || config.Layers.Gold == "" {
        return errors.ConfigError("all three layer schemas (bronze, silver, gold) are required", "layers")
    }
    for name, src := range config.Sources {
        if !isKnownSource(name) {
            return errors.ValidationError("sources."+name, name,
                fmt.Sprintf("unknown source (expected one of %s)", strings.Join(models.SourceNames, ", ")))
        }
        if src.Path == "" {
            return errors.ValidationError("sources."+name+".path", src.Path, "path is required")
        }
        if len(src.Delimiter) > 1 {
            return errors.ValidationError("sources."+name+".delimiter", src.Delimiter, "delimiter must be a single character")
        }
    }
    return nil
}

// Timeout resolves the configured warehouse timeout, defaulting to 30 minutes.
func Timeout(config *models.Config) time.Duration {
    if config.Warehouse.Timeout == "" {
        return 30 * time.Minute
    }
    d, err := time.ParseDuration(config.Warehouse.Timeout)
    if err != nil || d <= 0 {
        return 30 * time.Minute
    }
    return d
}

func applyDefaults(config *models.Config) {
    if config.Batch.InsertSize <= 0 {
        config.Batch.InsertSize = 500
    }
    for name, src := range config.Sources {
        if src.Delimiter == "" {
            src.Delimiter = ","
            config.Sources[name] = src
        }
    }
}

func isKnownSource(name string) bool {
    for _, n := range models.SourceNames {
        if n == name {
            return true
        }
    }
    return false
}
