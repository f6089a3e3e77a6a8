package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/eigenview/internal/layout"
	"github.com/roach88/eigenview/internal/printer"
	"github.com/roach88/eigenview/internal/render"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Children bool
}

// RenderedValue is one value in render output.
type RenderedValue struct {
	Name     string          `json:"name"`
	Type     string          `json:"type"`
	Family   string          `json:"family,omitempty"`
	Grid     json.RawMessage `json:"grid,omitempty"`
	Summary  string          `json:"summary,omitempty"`
	Children []Child         `json:"children,omitempty"`
	Error    string          `json:"error,omitempty"`

	text string
}

// Child is one entry of a printer's child listing.
type Child struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// RenderResult holds render output.
type RenderResult struct {
	Source string          `json:"source"`
	Values []RenderedValue `json:"values"`
}

// String renders the result for text output.
func (r RenderResult) String() string {
	var b strings.Builder
	for _, v := range r.Values {
		b.WriteString(v.text)
	}
	return b.String()
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <snapshot> [names...]",
		Short: "Render snapshot values with their pretty-printers",
		Long: `Render values of a snapshot the way a debugger pretty-printer shows them.

Dense matrices, arrays and block views render as grids; sparse matrices and
quaternions render as a one-line summary. With --children the entries the
printer exposes are listed too.

Examples:
  eigenview render frame.yaml
  eigenview render frame.yaml m q --children
  eigenview render --db ./snapshots.db frame --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, opts, args[0], args[1:])
		},
	}

	cmd.Flags().BoolVar(&opts.Children, "children", false, "list printer children after each value")

	return cmd
}

func runRender(cmd *cobra.Command, opts *RenderOptions, source string, names []string) error {
	f := opts.formatter(cmd)

	s, err := openSession(cmd.Context(), opts.RootOptions, f, source)
	if err != nil {
		return err
	}

	result := RenderResult{Source: source, Values: []RenderedValue{}}
	failed := 0
	for _, name := range s.names(names) {
		rv := renderValue(s, name, opts.Children)
		if rv.Error != "" {
			failed++
			opts.Logger.Info("value not rendered", "name", name, "error", rv.Error)
		}
		result.Values = append(result.Values, rv)
	}

	if err := f.Success(result); err != nil {
		return err
	}
	if failed > 0 {
		return valuesFailed(failed)
	}
	return nil
}

// renderValue renders one value. Failures are reported on the value, never
// returned, so that one bad value does not hide the others.
func renderValue(s *session, name string, withChildren bool) RenderedValue {
	v, ok := s.lookup(name)
	if !ok {
		return RenderedValue{
			Name:  name,
			Error: ErrCodeValueNotFound,
			text:  fmt.Sprintf("%s: not found\n", name),
		}
	}
	rv := RenderedValue{Name: name, Type: v.Type().Name()}

	p := s.dispatcher.Lookup(v)
	if p == nil {
		rv.Error = ErrCodeNoPrinter
		rv.text = fmt.Sprintf("%s = <no printer for %s>\n", name, rv.Type)
		return rv
	}
	rv.Family = p.Family().String()

	display, err := p.Render()
	if err != nil {
		rv.Error = ErrCodeRenderFailed
		rv.text = fmt.Sprintf("%s = <error: %v>\n", name, err)
		return rv
	}

	var text strings.Builder
	if gp, ok := p.(printer.GridPrinter); ok {
		rv.Grid = json.RawMessage(display)
		grid, err := gp.Grid()
		if err != nil {
			rv.Error = ErrCodeRenderFailed
			rv.text = fmt.Sprintf("%s = <error: %v>\n", name, err)
			return rv
		}
		fmt.Fprintf(&text, "%s = %s\n%s", name, rv.Type, grid.Text())
	} else {
		rv.Summary = display
		fmt.Fprintf(&text, "%s = %s\n", name, display)
	}

	if withChildren {
		children, err := listChildren(p)
		if err != nil {
			rv.Error = ErrCodeRenderFailed
			fmt.Fprintf(&text, "  <error: %v>\n", err)
		}
		rv.Children = children
		for _, c := range children {
			fmt.Fprintf(&text, "  %s = %s\n", c.Label, c.Value)
		}
	}
	rv.text = text.String()
	return rv
}

func listChildren(p printer.Printer) ([]Child, error) {
	it, err := p.Children()
	if err != nil {
		return nil, err
	}
	entries, err := layout.Collect(it)
	children := make([]Child, 0, len(entries))
	for _, e := range entries {
		children = append(children, Child{Label: e.Label, Value: render.FormatScalar(e.Value)})
	}
	return children, err
}
