package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/roach88/eigenview/internal/render"
)

const shellPrompt = "(eigenview) "

// NewShellCommand creates the shell command.
func NewShellCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell <snapshot>",
		Short: "Explore a snapshot interactively",
		Long: `Open an interactive prompt over one snapshot, the way a debugger session
shows locals.

Commands:
  list              list value names
  print NAME...     render values
  children NAME     list the printer's children of a value
  inspect NAME...   show classification details
  help              show this help
  quit              leave the shell

Examples:
  eigenview shell frame.yaml
  eigenview shell --db ./snapshots.db frame`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, rootOpts, args[0])
		},
	}

	return cmd
}

func runShell(cmd *cobra.Command, opts *RootOptions, source string) error {
	f := opts.formatter(cmd)

	s, err := openSession(cmd.Context(), opts, f, source)
	if err != nil {
		return err
	}
	sh := &shell{session: s, out: cmd.OutOrStdout()}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          shellPrompt,
		Stdin:           io.NopCloser(cmd.InOrStdin()),
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
		AutoComplete:    sh.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return f.Fail(ErrCodeGeneric, "start shell", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			if line == "" {
				return nil
			}
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return f.Fail(ErrCodeGeneric, "read input", err)
		}
		if sh.exec(line) {
			return nil
		}
	}
}

// shell executes one command line at a time against a session.
type shell struct {
	session *session
	out     io.Writer
}

func (sh *shell) completer() *readline.PrefixCompleter {
	names := func(string) []string { return sh.session.frame.Names() }
	return readline.NewPrefixCompleter(
		readline.PcItem("list"),
		readline.PcItem("print", readline.PcItemDynamic(names)),
		readline.PcItem("children", readline.PcItemDynamic(names)),
		readline.PcItem("inspect", readline.PcItemDynamic(names)),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}

// exec runs one line and reports whether the shell should exit.
func (sh *shell) exec(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		fmt.Fprintln(sh.out, "commands: list, print NAME..., children NAME, inspect NAME..., help, quit")
	case "list", "ls":
		var rows [][]string
		for _, name := range sh.session.frame.Names() {
			v, _ := sh.session.lookup(name)
			rows = append(rows, []string{name, v.Type().Name()})
		}
		fmt.Fprint(sh.out, render.Table(rows))
	case "print", "p":
		if len(args) == 0 {
			fmt.Fprintln(sh.out, "usage: print NAME...")
			return false
		}
		for _, name := range args {
			fmt.Fprint(sh.out, renderValue(sh.session, name, false).text)
		}
	case "children":
		if len(args) != 1 {
			fmt.Fprintln(sh.out, "usage: children NAME")
			return false
		}
		sh.children(args[0])
	case "inspect":
		if len(args) == 0 {
			fmt.Fprintln(sh.out, "usage: inspect NAME...")
			return false
		}
		result := InspectResult{}
		for _, name := range args {
			result.Values = append(result.Values, inspectValue(sh.session, name))
		}
		fmt.Fprint(sh.out, result.String())
	default:
		fmt.Fprintf(sh.out, "unknown command %q (try help)\n", cmd)
	}
	return false
}

func (sh *shell) children(name string) {
	v, ok := sh.session.lookup(name)
	if !ok {
		fmt.Fprintf(sh.out, "%s: not found\n", name)
		return
	}
	p := sh.session.dispatcher.Lookup(v)
	if p == nil {
		fmt.Fprintf(sh.out, "%s: no printer for %s\n", name, v.Type().Name())
		return
	}
	children, err := listChildren(p)
	if err != nil {
		fmt.Fprintf(sh.out, "%s: %v\n", name, err)
		return
	}
	if len(children) == 0 {
		fmt.Fprintf(sh.out, "%s: no children\n", name)
		return
	}
	for _, c := range children {
		fmt.Fprintf(sh.out, "%s = %s\n", c.Label, c.Value)
	}
}
