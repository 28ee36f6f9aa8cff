package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/supplymatch/orderassign/pkg/config"
)

// ValidateCommand checks a payload file and optional configuration file
// without running the pipeline.
type ValidateCommand struct {
	config Config
}

// NewValidateCommand creates a validate command with the given configuration.
func NewValidateCommand(config Config) *ValidateCommand {
	return &ValidateCommand{config: config}
}

// Execute parses and validates the inputs, reporting problems to stderr.
func (c *ValidateCommand) Execute(ctx context.Context) error {
	conf, err := config.LoadConfiguration(c.config.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	warnings, err := conf.Validate()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	for _, warning := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}

	payload, err := loadPayload(c.config.InputFile)
	if err != nil {
		return err
	}
	if err := payload.Validate(); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}

	fmt.Printf("OK: order %s with %d items\n", payload.OrderID, len(payload.Items))
	return nil
}
