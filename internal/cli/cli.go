package cli

import (
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/specialistvlad/cyclegrid/internal/app"
	"github.com/specialistvlad/cyclegrid/internal/config"
	"github.com/specialistvlad/cyclegrid/internal/hcl_adapter"
)

// Exit codes.
const (
	ExitRuntime = 1
	ExitUsage   = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: ExitUsage, Message: err.Error()}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	logLevel  string
	logFormat string
}

// Execute runs the command line in args. Reports go to outW and logs to
// errW. Every returned error is an *ExitError.
func Execute(args []string, outW, errW io.Writer) error {
	root := NewRootCommand(outW, errW, hcl_adapter.NewLoader())
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	if strings.HasPrefix(err.Error(), "unknown command") {
		return usageError(err)
	}
	return &ExitError{Code: ExitRuntime, Message: err.Error()}
}

// NewRootCommand builds the cyclegrid command tree around loader.
func NewRootCommand(outW, errW io.Writer, loader config.Loader) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "cyclegrid",
		Short: "Cycle-point task-dependency scheduler",
		Long: `cyclegrid loads a cycling workflow (HCL files), validates its graph and
simulates how task instances are spawned and triggered cycle by cycle.

Arguments:
  PATH
    Path to a single .hcl file or a directory containing .hcl files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError(err) })

	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")

	root.AddCommand(
		validateCommand(flags, outW, errW, loader),
		graphCommand(flags, outW, errW, loader),
		pointsCommand(flags, outW, errW, loader),
		runCommand(flags, outW, errW, loader),
	)
	return root
}

// onePath accepts exactly one workflow path.
func onePath(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return usageError(err)
	}
	return nil
}

// newApp validates the flags and loads the workflow at path.
func newApp(flags *globalFlags, cfg app.Config, path string, outW, errW io.Writer, loader config.Loader) (*app.App, error) {
	cfg.WorkflowPath = path
	cfg.LogLevel = strings.ToLower(flags.logLevel)
	cfg.LogFormat = strings.ToLower(flags.logFormat)
	appConfig, err := app.NewConfig(cfg)
	if err != nil {
		return nil, usageError(err)
	}
	return app.NewApp(outW, errW, appConfig, loader)
}
