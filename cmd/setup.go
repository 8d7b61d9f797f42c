package cmd

import (
    "fmt"
    "os"

    "github.com/AlecAivazis/survey/v2"
    "github.com/spf13/cobra"

    "medallion/internal/config"
    "medallion/internal/ui"
)

var setupCmd = &cobra.Command{
    Use:   "setup",
    Short: "Initial configuration setup",
    Run:   runSetup,
}

func runSetup(cmd *cobra.Command, args []string) {
    // Check if config already exists
    if config.Exists() {
        var overwrite bool
        prompt := &survey.Confirm{
            Message: "Configuration already exists. Do you want to overwrite it?",
            Default: false,
        }
        survey.AskOne(prompt, &overwrite)
        if !overwrite {
            fmt.Println("Setup cancelled.")
            return
        }
    }

    wizard := ui.NewConfigWizard()
    cfg, err := wizard.Run()
    if err != nil {
        fmt.Printf("Error: %v\n", err)
        os.Exit(1)
    }

    if err := config.Save(cfg); err != nil {
        fmt.Printf("Error saving configuration: %v\n", err)
        os.Exit(1)
    }

    ui.ShowSuccess("Configuration saved to " + config.GetConfigFile())
    fmt.Println()
    fmt.Println("Next steps:")
    fmt.Println("  medallion provision   Create the layer schemas and tables")
    fmt.Println("  medallion run         Run the full pipeline")
}

func init() {
    rootCmd.AddCommand(setupCmd)
}
