package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/eigenview/internal/render"
)

// ListedSnapshot is one stored snapshot in list output.
type ListedSnapshot struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Format string   `json:"format"`
	Seq    int64    `json:"seq"`
	Values []string `json:"values"`
}

// ListResult holds list output.
type ListResult struct {
	Snapshots []ListedSnapshot `json:"snapshots"`
}

// String renders the result for text output.
func (r ListResult) String() string {
	if len(r.Snapshots) == 0 {
		return "No snapshots stored\n"
	}
	rows := make([][]string, 0, len(r.Snapshots))
	for _, s := range r.Snapshots {
		rows = append(rows, []string{s.Name, s.Format, strings.Join(s.Values, ", ")})
	}
	return render.Table(rows)
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots",
		Long: `List the snapshots in the snapshot store, oldest import first.

Examples:
  eigenview list --db ./snapshots.db
  eigenview list --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, rootOpts)
		},
	}

	return cmd
}

func runList(cmd *cobra.Command, opts *RootOptions) error {
	f := opts.formatter(cmd)

	st, err := openStore(opts, f)
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.ListSnapshots(cmd.Context())
	if err != nil {
		return f.Fail(ErrCodeStore, "list snapshots", err)
	}

	result := ListResult{Snapshots: []ListedSnapshot{}}
	for _, r := range records {
		names := make([]string, 0, len(r.Values))
		for _, v := range r.Values {
			names = append(names, v.Name)
		}
		result.Snapshots = append(result.Snapshots, ListedSnapshot{
			ID:     r.ID,
			Name:   r.Name,
			Format: string(r.Format),
			Seq:    r.Seq,
			Values: names,
		})
	}
	return f.Success(result)
}
