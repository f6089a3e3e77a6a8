package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/eigenview/internal/host"
	"github.com/roach88/eigenview/internal/printer"
	"github.com/roach88/eigenview/internal/typedesc"
)

// InspectedValue describes how a value is classified and decoded.
type InspectedValue struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Kind    string `json:"kind"`
	Tag     string `json:"tag,omitempty"`
	Family  string `json:"family,omitempty"`
	Rows    int    `json:"rows,omitempty"`
	Cols    int    `json:"cols,omitempty"`
	Order   string `json:"order,omitempty"`
	Status  string `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// InspectResult holds inspect output.
type InspectResult struct {
	Source string           `json:"source"`
	Values []InspectedValue `json:"values"`
}

// String renders the result for text output.
func (r InspectResult) String() string {
	var b strings.Builder
	for _, v := range r.Values {
		fmt.Fprintf(&b, "%s\n", v.Name)
		if v.Type != "" {
			fmt.Fprintf(&b, "  type:   %s (%s)\n", v.Type, v.Kind)
		}
		if v.Tag != "" && v.Tag != v.Type {
			fmt.Fprintf(&b, "  tag:    %s\n", v.Tag)
		}
		if v.Family != "" {
			fmt.Fprintf(&b, "  family: %s\n", v.Family)
		}
		if v.Order != "" {
			fmt.Fprintf(&b, "  shape:  %d x %d, %s major\n", v.Rows, v.Cols, v.Order)
		}
		b.WriteString("  status: " + v.Status)
		if v.Code != "" {
			b.WriteString(" [" + v.Code + "]")
		}
		if v.Message != "" {
			b.WriteString(" " + v.Message)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <snapshot> [names...]",
		Short: "Show how each value is classified and decoded",
		Long: `Show the declared type, the stripped type tag, the printer family and
the decoded shape of each value. Values that no printer accepts report the
reason (for example MALFORMED_TYPE or UNSUPPORTED_VIEW).

Examples:
  eigenview inspect frame.yaml
  eigenview inspect --db ./snapshots.db frame corner --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, rootOpts, args[0], args[1:])
		},
	}

	return cmd
}

func runInspect(cmd *cobra.Command, opts *RootOptions, source string, names []string) error {
	f := opts.formatter(cmd)

	s, err := openSession(cmd.Context(), opts, f, source)
	if err != nil {
		return err
	}

	result := InspectResult{Source: source, Values: []InspectedValue{}}
	for _, name := range s.names(names) {
		result.Values = append(result.Values, inspectValue(s, name))
	}
	return f.Success(result)
}

func inspectValue(s *session, name string) InspectedValue {
	v, ok := s.lookup(name)
	if !ok {
		return InspectedValue{Name: name, Status: "missing", Code: ErrCodeValueNotFound}
	}

	iv := InspectedValue{
		Name: name,
		Type: v.Type().Name(),
		Kind: v.Type().Kind().String(),
	}
	if t := host.Stripped(v.Type()); t != nil {
		iv.Tag = t.Tag()
	}
	if family, _, ok := s.dispatcher.Classify(v); ok {
		iv.Family = family.String()
	}

	p, err := s.dispatcher.Resolve(v)
	switch {
	case errors.Is(err, printer.ErrNoMatch):
		iv.Status = "no printer"
		return iv
	case err != nil:
		iv.Status = "rejected"
		iv.Code = string(typedesc.CodeOf(err))
		iv.Message = err.Error()
		return iv
	}
	iv.Status = "ok"

	switch p := p.(type) {
	case *printer.DensePrinter:
		iv.Rows, iv.Cols = p.Dims()
		iv.Order = majorName(p.RowMajor())
	case *printer.SparsePrinter:
		st := p.Storage()
		iv.Rows, iv.Cols = st.Rows(), st.Cols()
		iv.Order = majorName(st.RowMajor)
	}
	return iv
}

func majorName(rowMajor bool) string {
	if rowMajor {
		return "row"
	}
	return "column"
}
