package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/eigenview/internal/snapshot"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Name string
}

// ImportResult holds import output.
type ImportResult struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Format  string `json:"format"`
	Values  int    `json:"values"`
	Changed bool   `json:"changed"`
}

// String renders the result for text output.
func (r ImportResult) String() string {
	if !r.Changed {
		return fmt.Sprintf("Snapshot %q unchanged (%s)\n", r.Name, r.ID)
	}
	return fmt.Sprintf("Imported %q (%s, %d value(s)) as %s\n", r.Name, r.Format, r.Values, r.ID)
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Store a snapshot document",
		Long: `Validate a snapshot document and store it in the snapshot store.

The snapshot is stored under --name, or the file name without its extension.
Importing over an existing name replaces the document and keeps its ID.

Examples:
  eigenview import --db ./snapshots.db frame.yaml
  eigenview import --db ./snapshots.db --name before frame.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "snapshot name (default: file name)")

	return cmd
}

func runImport(cmd *cobra.Command, opts *ImportOptions, path string) error {
	f := opts.formatter(cmd)

	format, err := snapshot.FormatFromPath(path)
	if err != nil {
		return f.Fail(ErrCodeSnapshotLoad, "unsupported snapshot file", err)
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return f.Fail(ErrCodeSnapshotLoad, "read snapshot", err)
	}

	name := opts.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	st, err := openStore(opts.RootOptions, f)
	if err != nil {
		return err
	}
	defer st.Close()

	rec, changed, err := st.SaveSnapshot(cmd.Context(), name, format, source)
	if err != nil {
		return f.Fail(ErrCodeSnapshotLoad, fmt.Sprintf("import %s", path), err)
	}
	opts.Logger.Info("snapshot imported", "name", rec.Name, "id", rec.ID, "changed", changed)

	return f.Success(ImportResult{
		ID:      rec.ID,
		Name:    rec.Name,
		Format:  string(rec.Format),
		Values:  len(rec.Values),
		Changed: changed,
	})
}
