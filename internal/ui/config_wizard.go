package ui

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"medallion/pkg/models"
)

// ConfigWizard provides an interactive configuration setup
type ConfigWizard struct {
	currentStep int
	totalSteps  int
}

// NewConfigWizard creates a new configuration wizard
func NewConfigWizard() *ConfigWizard {
	return &ConfigWizard{
		currentStep: 1,
		totalSteps:  4,
	}
}

// Run executes the configuration wizard
func (w *ConfigWizard) Run() (*models.Config, error) {
	ShowHeader("medallion - Configuration Setup")

	config := &models.Config{
		Sources: make(map[string]models.Source),
	}

	steps := []func(*models.Config) error{
		w.configureWarehouseStep,
		w.configureLayersStep,
		w.configureSourcesStep,
		w.configureBatchStep,
	}
	for _, step := range steps {
		if err := step(config); err != nil {
			if err == terminal.InterruptErr {
				return nil, fmt.Errorf("configuration cancelled")
			}
			return nil, err
		}
	}

	if err := w.reviewConfiguration(config); err != nil {
		return nil, err
	}

	return config, nil
}

func (w *ConfigWizard) configureWarehouseStep(config *models.Config) error {
	w.showProgress("Warehouse Connection")

	questions := []*survey.Question{
		{
			Name: "account",
			Prompt: &survey.Input{
				Message: "Snowflake Account:",
				Help:    "Your Snowflake account identifier (e.g., xy12345.us-east-1)",
			},
			Validate: survey.Required,
		},
		{
			Name: "username",
			Prompt: &survey.Input{
				Message: "Username:",
			},
			Validate: survey.Required,
		},
		{
			Name: "password",
			Prompt: &survey.Password{
				Message: "Password:",
			},
			Validate: survey.Required,
		},
		{
			Name: "role",
			Prompt: &survey.Input{
				Message: "Role:",
				Default: "SYSADMIN",
			},
		},
		{
			Name: "warehouse",
			Prompt: &survey.Input{
				Message: "Warehouse:",
				Default: "COMPUTE_WH",
			},
		},
		{
			Name: "database",
			Prompt: &survey.Input{
				Message: "Database:",
				Default: "DATAWAREHOUSE",
			},
			Validate: survey.Required,
		},
	}

	answers := struct {
		Account   string
		Username  string
		Password  string
		Role      string
		Warehouse string
		Database  string
	}{}

	if err := survey.Ask(questions, &answers); err != nil {
		return err
	}

	config.Warehouse = models.Warehouse{
		Account:   answers.Account,
		Username:  answers.Username,
		Password:  answers.Password,
		Role:      answers.Role,
		Warehouse: answers.Warehouse,
		Database:  answers.Database,
	}
	return nil
}

func (w *ConfigWizard) configureLayersStep(config *models.Config) error {
	w.showProgress("Layer Schemas")

	questions := []*survey.Question{
		{
			Name:   "bronze",
			Prompt: &survey.Input{Message: "Raw layer schema:", Default: "BRONZE"},
		},
		{
			Name:   "silver",
			Prompt: &survey.Input{Message: "Cleansed layer schema:", Default: "SILVER"},
		},
		{
			Name:   "gold",
			Prompt: &survey.Input{Message: "Star schema layer:", Default: "GOLD"},
		},
	}

	answers := struct {
		Bronze string
		Silver string
		Gold   string
	}{}
	if err := survey.Ask(questions, &answers); err != nil {
		return err
	}

	config.Layers = models.Layers{
		Bronze: answers.Bronze,
		Silver: answers.Silver,
		Gold:   answers.Gold,
	}
	return nil
}

func (w *ConfigWizard) configureSourcesStep(config *models.Config) error {
	w.showProgress("Source Extracts")

	var baseDir string
	if err := survey.AskOne(&survey.Input{
		Message: "Directory containing the extract files:",
		Help:    "Each source defaults to <dir>/<source>.csv; paths can be edited per source",
	}, &baseDir, survey.WithValidator(survey.Required)); err != nil {
		return err
	}
	baseDir = strings.TrimRight(baseDir, "/")

	for _, name := range models.SourceNames {
		var path string
		if err := survey.AskOne(&survey.Input{
			Message: fmt.Sprintf("Path for %s:", name),
			Default: fmt.Sprintf("%s/%s.csv", baseDir, name),
		}, &path); err != nil {
			return err
		}

		config.Sources[name] = models.Source{
			Path:       path,
			Delimiter:  ",",
			SkipHeader: 1,
		}
	}
	return nil
}

func (w *ConfigWizard) configureBatchStep(config *models.Config) error {
	w.showProgress("Batch Settings")

	var insertSize int
	if err := survey.AskOne(&survey.Input{
		Message: "Rows per bulk insert statement:",
		Default: "500",
	}, &insertSize); err != nil {
		return err
	}

	config.Batch = models.Batch{InsertSize: insertSize}
	return nil
}

func (w *ConfigWizard) reviewConfiguration(config *models.Config) error {
	ShowHeader("Review Configuration")

	table := NewTable()
	table.AddHeader("Setting", "Value")
	table.AddRow("Account", config.Warehouse.Account)
	table.AddRow("Username", config.Warehouse.Username)
	table.AddRow("Database", config.Warehouse.Database)
	table.AddRow("Warehouse", config.Warehouse.Warehouse)
	table.AddRow("Role", config.Warehouse.Role)
	table.AddRow("Layers", fmt.Sprintf("%s / %s / %s",
		config.Layers.Bronze, config.Layers.Silver, config.Layers.Gold))
	for _, name := range models.SourceNames {
		table.AddRow("Source "+name, config.Sources[name].Path)
	}
	table.Render()

	confirmed := false
	if err := survey.AskOne(&survey.Confirm{
		Message: "Save this configuration?",
		Default: true,
	}, &confirmed); err != nil {
		return err
	}
	if !confirmed {
		return fmt.Errorf("configuration not confirmed")
	}
	return nil
}

func (w *ConfigWizard) showProgress(step string) {
	fmt.Printf("\n%s Step %d/%d: %s\n\n",
		ColorInfo(">>"), w.currentStep, w.totalSteps, ColorBold(step))
	w.currentStep++
}
