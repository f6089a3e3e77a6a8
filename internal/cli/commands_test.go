package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frameFile = "testdata/frame.yaml"

// execute runs the root command with args and returns stdout and the error.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(EnvDatabase, "")

	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func decodeResponse(t *testing.T, out string, data any) CLIResponse {
	t.Helper()
	var raw struct {
		CLIResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &raw))
	if data != nil && raw.Data != nil {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return raw.CLIResponse
}

func TestRenderCommand_Text(t *testing.T) {
	out, err := execute(t, "render", frameFile, "fixed", "dyn", "corner", "rowvec", "s")
	require.NoError(t, err)

	newGoldie(t).Assert(t, "render_text", []byte(out))
}

func TestRenderCommand_JSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "render", frameFile, "fixed", "s", "q")
	require.NoError(t, err)

	var result RenderResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.TraceID)
	assert.Equal(t, frameFile, result.Source)
	require.Len(t, result.Values, 3)

	fixed := result.Values[0]
	assert.Equal(t, "matrix", fixed.Family)
	assert.JSONEq(t,
		`{"kind":{"grid":true},"rows":[`+
			`{"columns":[{"content":"1.0"},{"content":"2.0"},{"content":"3.0"}]},`+
			`{"columns":[{"content":"4.0"},{"content":"5.0"},{"content":"6.0"}]}]}`,
		string(fixed.Grid))
	assert.Empty(t, fixed.Summary)

	s := result.Values[1]
	assert.Equal(t, "sparse_matrix", s.Family)
	assert.Equal(t, "Eigen::SparseMatrix<double>, 3 x 3, column major, compressed", s.Summary)
	assert.Empty(t, s.Grid)

	q := result.Values[2]
	assert.Equal(t, "quaternion", q.Family)
	assert.Equal(t, "const Eigen::Quaternion<double, 0> &", q.Type)
	assert.Regexp(t, `^Eigen::Quaternion<double> \(data ptr: 0x[0-9a-f]+\)$`, q.Summary)
}

func TestRenderCommand_Children(t *testing.T) {
	out, err := execute(t, "render", frameFile, "q", "--children")
	require.NoError(t, err)

	assert.Contains(t, out, "  [x] = 0.1\n")
	assert.Contains(t, out, "  [y] = 0.2\n")
	assert.Contains(t, out, "  [z] = 0.3\n")
	assert.Contains(t, out, "  [w] = 0.9\n")
	assert.Less(t, strings.Index(out, "[x]"), strings.Index(out, "[w]"))
}

func TestRenderCommand_ChildrenJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "render", frameFile, "corner", "--children")
	require.NoError(t, err)

	var result RenderResult
	decodeResponse(t, out, &result)
	require.Len(t, result.Values, 1)
	assert.Equal(t, []Child{
		{Label: "[0,0]", Value: "6.0"},
		{Label: "[1,0]", Value: "10.0"},
		{Label: "[0,1]", Value: "7.0"},
		{Label: "[1,1]", Value: "11.0"},
	}, result.Values[0].Children)
}

func TestRenderCommand_MissingValue(t *testing.T) {
	out, err := execute(t, "render", frameFile, "fixed", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "1 value(s) could not be rendered")

	// The good value is still shown.
	assert.Contains(t, out, "fixed = Eigen::Matrix<double, 2, 3, 0, 2, 3>\n")
	assert.Contains(t, out, "nope: not found\n")
}

func TestRenderCommand_BadSnapshot(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		out, err := execute(t, "render", "testdata/absent.yaml")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, out, "Error [E002]")
	})

	t.Run("unknown store snapshot", func(t *testing.T) {
		db := filepath.Join(t.TempDir(), "snapshots.db")
		out, err := execute(t, "--format", "json", "--db", db, "render", "frame")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))

		resp := decodeResponse(t, out, nil)
		assert.Equal(t, "error", resp.Status)
		require.NotNil(t, resp.Error)
		assert.Equal(t, ErrCodeStore, resp.Error.Code)
	})
}

func TestInspectCommand_Text(t *testing.T) {
	out, err := execute(t, "inspect", frameFile, "dyn", "s", "nope")
	require.NoError(t, err)

	newGoldie(t).Assert(t, "inspect_text", []byte(out))
}

func TestInspectCommand_JSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "inspect", frameFile)
	require.NoError(t, err)

	var result InspectResult
	decodeResponse(t, out, &result)
	require.Len(t, result.Values, 6)

	byName := make(map[string]InspectedValue)
	for _, v := range result.Values {
		byName[v.Name] = v
		assert.Equal(t, "ok", v.Status, v.Name)
	}
	assert.Equal(t, "block", byName["corner"].Family)
	assert.Equal(t, 2, byName["corner"].Rows)
	assert.Equal(t, "array", byName["rowvec"].Family)
	assert.Equal(t, "row", byName["rowvec"].Order)
	assert.Equal(t, "reference", byName["q"].Kind)
	assert.Equal(t, "Eigen::Quaternion<double, 0>", byName["q"].Tag)
	assert.Empty(t, byName["q"].Order)
}

func TestImportAndListCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "snapshots.db")

	out, err := execute(t, "--db", db, "list")
	require.NoError(t, err)
	assert.Equal(t, "No snapshots stored\n", out)

	out, err = execute(t, "--format", "json", "--db", db, "import", frameFile)
	require.NoError(t, err)
	var imported ImportResult
	decodeResponse(t, out, &imported)
	assert.Equal(t, "frame", imported.Name)
	assert.Equal(t, "yaml", imported.Format)
	assert.Equal(t, 6, imported.Values)
	assert.True(t, imported.Changed)

	out, err = execute(t, "--db", db, "import", frameFile)
	require.NoError(t, err)
	assert.Equal(t, `Snapshot "frame" unchanged (`+imported.ID+")\n", out)

	_, err = execute(t, "--db", db, "import", "--name", "other", frameFile)
	require.NoError(t, err)

	out, err = execute(t, "--format", "json", "--db", db, "list")
	require.NoError(t, err)
	var listed ListResult
	decodeResponse(t, out, &listed)
	require.Len(t, listed.Snapshots, 2)
	assert.Equal(t, "frame", listed.Snapshots[0].Name)
	assert.Equal(t, "other", listed.Snapshots[1].Name)
	assert.Equal(t, []string{"fixed", "dyn", "corner", "rowvec", "s", "q"}, listed.Snapshots[0].Values)

	out, err = execute(t, "--db", db, "list")
	require.NoError(t, err)
	assert.Equal(t,
		"frame  yaml  fixed, dyn, corner, rowvec, s, q\n"+
			"other  yaml  fixed, dyn, corner, rowvec, s, q\n",
		out)

	out, err = execute(t, "--db", db, "render", "frame", "fixed")
	require.NoError(t, err)
	assert.Equal(t, "fixed = Eigen::Matrix<double, 2, 3, 0, 2, 3>\n[ 1.0 2.0 3.0 ]\n[ 4.0 5.0 6.0 ]\n", out)
}

func TestImportCommand_Errors(t *testing.T) {
	t.Run("no database", func(t *testing.T) {
		out, err := execute(t, "import", frameFile)
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, out, "Error [E008]")
	})

	t.Run("unsupported extension", func(t *testing.T) {
		db := filepath.Join(t.TempDir(), "snapshots.db")
		out, err := execute(t, "--db", db, "import", "testdata/frame.json")
		require.Error(t, err)
		assert.Contains(t, out, "Error [E002]")
	})
}

func newTestShell(t *testing.T) (*shell, *bytes.Buffer) {
	t.Helper()
	opts := &RootOptions{Format: "text", Logger: slog.Default()}
	f := &OutputFormatter{Format: "text", Writer: &bytes.Buffer{}}

	s, err := openSession(context.Background(), opts, f, frameFile)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	return &shell{session: s, out: out}, out
}

func TestShell_Exec(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		quit     bool
		contains []string
	}{
		{"blank", "   ", false, nil},
		{"quit", "quit", true, nil},
		{"exit", "exit", true, nil},
		{"help", "help", false, []string{"commands: list, print NAME..."}},
		{"list", "list", false, []string{
			"fixed   Eigen::Matrix<double, 2, 3, 0, 2, 3>\n",
			"dyn     Eigen::MatrixXd\n",
			"q       const Eigen::Quaternion<double, 0> &\n",
		}},
		{"print", "print corner", false, []string{"corner = Eigen::Block<", "[ 10.0 11.0 ]\n"}},
		{"print missing", "p nope", false, []string{"nope: not found\n"}},
		{"print usage", "print", false, []string{"usage: print NAME..."}},
		{"children", "children rowvec", false, []string{"[0] = 0.5\n", "[1] = ~0.0\n", "[2] = -2.0\n"}},
		{"children sparse", "children s", false, []string{"[2,1] = 5.0\n", "[0,1] = 0.0\n"}},
		{"children usage", "children", false, []string{"usage: children NAME"}},
		{"inspect", "inspect corner", false, []string{"family: block", "status: ok"}},
		{"unknown", "frobnicate", false, []string{`unknown command "frobnicate"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sh, out := newTestShell(t)
			assert.Equal(t, tt.quit, sh.exec(tt.line))
			for _, want := range tt.contains {
				assert.Contains(t, out.String(), want)
			}
			if tt.contains == nil {
				assert.Empty(t, out.String())
			}
		})
	}
}

func TestShellCommand_BadSnapshot(t *testing.T) {
	out, err := execute(t, "shell", "testdata/absent.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E002]")
}
