package cli

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/specialistvlad/cyclegrid/internal/app"
	"github.com/specialistvlad/cyclegrid/internal/config"
)

func validateCommand(flags *globalFlags, outW, errW io.Writer, loader config.Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "validate PATH",
		Short: "Load the workflow and print a summary",
		Args:  onePath,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags, app.Config{}, args[0], outW, errW, loader)
			if err != nil {
				return err
			}
			return a.Validate()
		},
	}
}

func graphCommand(flags *globalFlags, outW, errW io.Writer, loader config.Loader) *cobra.Command {
	var section string
	cmd := &cobra.Command{
		Use:   "graph PATH",
		Short: "Print the trigger map of each graph section as YAML",
		Args:  onePath,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags, app.Config{}, args[0], outW, errW, loader)
			if err != nil {
				return err
			}
			return a.Graph(section)
		},
	}
	cmd.Flags().StringVar(&section, "section", "", "Only print the section with this recurrence.")
	return cmd
}

func pointsCommand(flags *globalFlags, outW, errW io.Writer, loader config.Loader) *cobra.Command {
	var (
		task  string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "points PATH",
		Short: "List the cycle points of one task",
		Args:  onePath,
		RunE: func(cmd *cobra.Command, args []string) error {
			if task == "" {
				return usageError(errors.New("--task is required"))
			}
			if limit <= 0 {
				return usageError(errors.New("--limit must be positive"))
			}
			a, err := newApp(flags, app.Config{}, args[0], outW, errW, loader)
			if err != nil {
				return err
			}
			return a.Points(task, limit)
		},
	}
	cmd.Flags().StringVar(&task, "task", "", "Task name.")
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of points to list.")
	return cmd
}

func runCommand(flags *globalFlags, outW, errW io.Writer, loader config.Loader) *cobra.Command {
	var (
		simulate bool
		cfg      app.Config
	)
	cmd := &cobra.Command{
		Use:   "run PATH",
		Short: "Run the workflow with simulated jobs",
		Args:  onePath,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !simulate {
				return usageError(errors.New("only simulated runs are supported, pass --simulate"))
			}
			a, err := newApp(flags, cfg, args[0], outW, errW, loader)
			if err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&simulate, "simulate", false, "Run every ready task with a job that succeeds.")
	cmd.Flags().IntVar(&cfg.MaxSteps, "steps", app.DefaultMaxSteps, "Maximum number of simulation steps.")
	cmd.Flags().IntVar(&cfg.MetricsPort, "metrics-port", 0, "Port for the /metrics and /health server. 0 is disabled.")
	cmd.Flags().StringVar(&cfg.RunaheadOverride, "runahead", "", "Override the workflow runahead limit, e.g. P2.")
	return cmd
}
