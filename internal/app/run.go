package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/cyclegrid/internal/ctxlog"
	"github.com/specialistvlad/cyclegrid/internal/inmemorystore"
	"github.com/specialistvlad/cyclegrid/internal/metrics"
	"github.com/specialistvlad/cyclegrid/internal/scheduler"
)

// Run simulates the workflow: every ready task runs a job that succeeds.
// It writes the event log and the final pool.
func (a *App) Run(ctx context.Context) (err error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	rec := metrics.NewPrometheus()
	a.startMetricsServer(rec)
	defer func() {
		err = errors.Join(err, a.closeMetricsServer())
	}()

	opts := []scheduler.Option{scheduler.WithRecorder(rec)}
	if a.config.RunaheadOverride != "" {
		limit, err := a.workflow.System().ParseInterval(a.config.RunaheadOverride)
		if err != nil {
			return fmt.Errorf("invalid runahead override: %w", err)
		}
		opts = append(opts, scheduler.WithRunahead(limit))
	}

	pool := scheduler.New(a.workflow, inmemorystore.New(), opts...)
	if err := pool.Start(ctx); err != nil {
		return fmt.Errorf("failed to start task pool: %w", err)
	}

	a.logger.Info("Starting simulated run.", "max_steps", a.config.MaxSteps)
	events, err := pool.Simulate(ctx, a.config.MaxSteps)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	report := RunReport{Steps: events, Pool: pool.Snapshot()}
	a.logger.Info("Simulated run finished.", "events", len(events), "remaining", len(report.Pool))

	return a.writeYAML(report)
}
