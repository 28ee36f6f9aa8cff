// Package commands implements the CLI commands on top of the processing
// pipeline.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/supplymatch/orderassign/pkg/application/dto"
	"github.com/supplymatch/orderassign/pkg/application/services/orchestration"
	"github.com/supplymatch/orderassign/pkg/config"
	"github.com/supplymatch/orderassign/pkg/domain/repositories"
	"github.com/supplymatch/orderassign/pkg/infrastructure/events"
	"github.com/supplymatch/orderassign/pkg/infrastructure/repositories/memory"
	"github.com/supplymatch/orderassign/pkg/infrastructure/repositories/sqlite"
	"github.com/supplymatch/orderassign/pkg/interfaces/cli/output"
	"github.com/supplymatch/orderassign/pkg/solver"
)

// Config holds configuration for the process command.
type Config struct {
	InputFile        string
	ConfigFile       string
	DatabasePath     string
	Format           string
	LogLevelOverride string
}

// ProcessCommand runs the pipeline on one payload file.
type ProcessCommand struct {
	config Config
}

// NewProcessCommand creates a process command with the given configuration.
func NewProcessCommand(config Config) *ProcessCommand {
	return &ProcessCommand{config: config}
}

// Execute loads configuration and payload, runs the pipeline, and prints
// the result in the requested format.
func (c *ProcessCommand) Execute(ctx context.Context) error {
	conf, err := config.LoadConfiguration(c.config.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := config.NewLogger(conf.Logging, c.config.LogLevelOverride)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	warnings, err := conf.Validate()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	for _, warning := range warnings {
		logger.Warn("configuration warning: " + warning)
	}

	payload, err := loadPayload(c.config.InputFile)
	if err != nil {
		return err
	}

	databasePath := c.config.DatabasePath
	if databasePath == "" {
		databasePath = conf.Storage.DatabasePath
	}
	runs, closeRepo, err := openRunRepository(databasePath, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	pipeline := orchestration.NewPipeline(
		conf.Policy,
		solver.NewBranchAndBound(),
		runs,
		events.NewInMemoryStore(),
		logger,
	)

	result, err := pipeline.ProcessOrder(ctx, payload)
	if err != nil {
		return err
	}

	return output.Render(os.Stdout, result, c.config.Format)
}

func loadPayload(inputFile string) (*dto.OrderPayload, error) {
	if inputFile == "" {
		return nil, fmt.Errorf("no input file specified")
	}
	data, err := os.ReadFile(inputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload %s: %w", inputFile, err)
	}
	var payload dto.OrderPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse payload %s: %w", inputFile, err)
	}
	return &payload, nil
}

func openRunRepository(databasePath string, logger *zap.Logger) (repositories.RunRepository, func(), error) {
	if databasePath == "" {
		return memory.NewRunRepository(), func() {}, nil
	}
	repo, err := sqlite.Open(databasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open run database: %w", err)
	}
	logger.Info("recording runs", zap.String("database", databasePath))
	return repo, func() { _ = repo.Close() }, nil
}
