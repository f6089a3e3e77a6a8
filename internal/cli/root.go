package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// EnvDatabase names the environment variable that supplies the default --db.
const EnvDatabase = "EIGENVIEW_DB"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Database string // snapshot store; empty means snapshot arguments are files

	// TraceID correlates the log lines and JSON response of one invocation.
	TraceID string
	Logger  *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the eigenview CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{Logger: slog.Default()}

	cmd := &cobra.Command{
		Use:   "eigenview",
		Short: "eigenview - render Eigen containers from debugger snapshots",
		Long: `Render dense matrices, arrays, block views, sparse matrices and
quaternions the way a debugger pretty-printer shows them.

Values come from snapshot documents (YAML or CUE) describing a frame, either
read from a file or imported into a snapshot store (--db).`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			id, err := uuid.NewV7()
			if err != nil {
				return fmt.Errorf("generate trace id: %w", err)
			}
			opts.TraceID = id.String()
			opts.Logger = slog.Default().With("trace_id", opts.TraceID, "command", cmd.Name())
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", os.Getenv(EnvDatabase),
		"snapshot store path (default $"+EnvDatabase+")")

	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewShellCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// formatter builds the output formatter for a command invocation.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
		TraceID:   o.TraceID,
	}
}
