package cmd

import (
    "bytes"
    "testing"
    "github.com/stretchr/testify/assert"
    "medallion/internal/steplog"
    "medallion/pkg/models"
)

func testLayersConfig() *models.Config {
    return &models.Config{
        Layers: models.Layers{Bronze: "BRONZE", Silver: "SILVER", Gold: "GOLD"},
    }
}

func TestRootCommand(t *testing.T) {
    // Test root command without arguments
    cmd := rootCmd
    b := bytes.NewBufferString("")
    cmd.SetOut(b)
    cmd.SetErr(b)
    cmd.SetArgs([]string{})

    err := cmd.Execute()
    assert.NoError(t, err)

    output := b.String()
    assert.Contains(t, output, "medallion")
    assert.Contains(t, output, "bronze, silver, and gold")
}

func TestRootCommandHelp(t *testing.T) {
    // Test help flag
    cmd := rootCmd
    b := bytes.NewBufferString("")
    cmd.SetOut(b)
    cmd.SetErr(b)
    cmd.SetArgs([]string{"--help"})

    err := cmd.Execute()
    assert.NoError(t, err)

    output := b.String()
    assert.Contains(t, output, "Available Commands:")
    assert.Contains(t, output, "run")
    assert.Contains(t, output, "ingest")
    assert.Contains(t, output, "transform")
    assert.Contains(t, output, "publish")
    assert.Contains(t, output, "logs")
    assert.Contains(t, output, "provision")
    assert.Contains(t, output, "setup")
}

func TestInvalidCommand(t *testing.T) {
    // Test invalid command
    cmd := rootCmd
    b := bytes.NewBufferString("")
    cmd.SetOut(b)
    cmd.SetErr(b)
    cmd.SetArgs([]string{"invalid-command"})

    err := cmd.Execute()
    assert.Error(t, err)
    assert.Contains(t, err.Error(), "unknown command")
}

func TestFilterByJob(t *testing.T) {
    entries := []steplog.Entry{
        {Batch: "silver.load", Step: "truncate crm_cust_info"},
        {Batch: "bronze.load", Step: "load crm_cust_info"},
        {Batch: "silver.load", Step: "load crm_cust_info"},
    }

    got := filterByJob(entries, "silver.load")
    assert.Len(t, got, 2)
    for _, e := range got {
        assert.Equal(t, "silver.load", e.Batch)
    }
    assert.Empty(t, filterByJob(entries, "gold.load"))
}

func TestLayerSchemasOrder(t *testing.T) {
    cfg := testLayersConfig()
    layers := layerSchemas(cfg)

    assert.Len(t, layers, 3)
    assert.Equal(t, "bronze", layers[0].name)
    assert.Equal(t, "BRONZE", layers[0].schema)
    assert.Equal(t, "gold", layers[2].name)
}
