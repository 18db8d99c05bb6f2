package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/cyclegrid/internal/config"
	"github.com/specialistvlad/cyclegrid/internal/ctxlog"
	"github.com/specialistvlad/cyclegrid/internal/workflow"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	ctx        context.Context
	config     *Config
	workflow   *workflow.Workflow
	httpServer *http.Server
}

// NewApp loads and validates the workflow. outW receives command reports;
// logs go to logW.
func NewApp(outW, logW io.Writer, cfg *Config, loader config.Loader) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, cfg.WorkflowPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Debug("Configuration loaded into unified model.")

	wf, err := workflow.Build(ctx, model)
	if err != nil {
		return nil, fmt.Errorf("invalid workflow: %w", err)
	}
	logger.Debug("Workflow built.", "tasks", len(wf.TaskNames()))

	return &App{
		outW:     outW,
		logger:   logger,
		ctx:      ctx,
		config:   cfg,
		workflow: wf,
	}, nil
}

// Workflow returns the loaded workflow. This is primarily for testing.
func (a *App) Workflow() *workflow.Workflow {
	return a.workflow
}
