package cmd

import (
    "fmt"
    "os"

    "github.com/spf13/cobra"
    "github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
    Use:   "medallion",
    Short: "Batch ETL pipeline for a Snowflake warehouse",
    Long: "medallion - A CLI tool that loads raw CRM/ERP extracts into a Snowflake\n" +
        "warehouse and refines them through bronze, silver, and gold layers.",
}

func Execute() {
    if err := rootCmd.Execute(); err != nil {
        fmt.Fprintln(os.Stderr, err)
        os.Exit(1)
    }
}

func init() {
    cobra.OnInitialize(initConfig)
}

func initConfig() {
    viper.SetConfigName("config")
    viper.SetConfigType("yaml")
    viper.AddConfigPath(".")

    home, err := os.UserHomeDir()
    if err == nil {
        viper.AddConfigPath(home + "/.medallion")
    }

    if err := viper.ReadInConfig(); err != nil {
        // Config file not found is okay for now
    }
}
