package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/eigenview/internal/typedesc"
)

// dimErr is a decode failure as the dispatcher reports it.
var dimErr = fmt.Errorf("resolve dyn: %w", &typedesc.Error{
	Code:    typedesc.ErrCodeInvalidDimension,
	Message: "m_rows holds -2",
})

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{ErrCodeValueNotFound, ExitFailure},
		{ErrCodeNoPrinter, ExitFailure},
		{ErrCodeRenderFailed, ExitFailure},
		{ErrCodeSnapshotLoad, ExitCommandError},
		{ErrCodeMaterialize, ExitCommandError},
		{ErrCodeStore, ExitCommandError},
		{ErrCodeNoDatabase, ExitCommandError},
		{ErrCodeGeneric, ExitCommandError},
		{"E999", ExitCommandError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCodeFor(tt.code))
		})
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitFailure, GetExitCode(valuesFailed(2)))
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("wrapped: %w",
		&ExitError{Code: ExitCommandError, Message: "bad"})))
}

func TestValuesFailed(t *testing.T) {
	err := valuesFailed(3)
	assert.Equal(t, "3 value(s) could not be rendered", err.Error())
	assert.NoError(t, errors.Unwrap(err))
}

func TestOutputFormatter_Success(t *testing.T) {
	result := InspectResult{Source: "frame.yaml", Values: []InspectedValue{
		{Name: "q", Type: "Eigen::Quaterniond", Kind: "typedef", Family: "quaternion", Status: "ok"},
	}}

	t.Run("text uses String", func(t *testing.T) {
		buf := &bytes.Buffer{}
		f := &OutputFormatter{Format: "text", Writer: buf}

		require.NoError(t, f.Success(result))
		assert.Equal(t, result.String(), buf.String())
	})

	t.Run("json envelope carries the trace id", func(t *testing.T) {
		buf := &bytes.Buffer{}
		f := &OutputFormatter{Format: "json", Writer: buf, TraceID: "0192a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b"}

		require.NoError(t, f.Success(result))

		var got InspectResult
		resp := decodeResponse(t, buf.String(), &got)
		assert.Equal(t, "ok", resp.Status)
		assert.Nil(t, resp.Error)
		assert.Equal(t, "0192a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b", resp.TraceID)
		assert.Equal(t, result, got)
	})

	t.Run("plain values print on one line", func(t *testing.T) {
		buf := &bytes.Buffer{}
		f := &OutputFormatter{Format: "text", Writer: buf}

		require.NoError(t, f.Success(4))
		assert.Equal(t, "4\n", buf.String())
	})
}

func TestOutputFormatter_Fail(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		buf := &bytes.Buffer{}
		f := &OutputFormatter{Format: "text", Writer: buf}

		cause := errors.New("no such file")
		err := f.Fail(ErrCodeSnapshotLoad, `load snapshot "frame.yaml"`, cause)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "Error [E002]: load snapshot \"frame.yaml\"\n", buf.String())
	})

	t.Run("text verbose shows cause and decode reason", func(t *testing.T) {
		buf := &bytes.Buffer{}
		f := &OutputFormatter{Format: "text", Writer: buf, Verbose: true}

		err := f.Fail(ErrCodeRenderFailed, "render dyn", dimErr)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Equal(t,
			"Error [E006]: render dyn\n"+
				"Details: resolve dyn: INVALID_DIMENSION: m_rows holds -2\n"+
				"Reason: INVALID_DIMENSION\n",
			buf.String())
	})

	t.Run("json", func(t *testing.T) {
		buf := &bytes.Buffer{}
		f := &OutputFormatter{Format: "json", Writer: buf, TraceID: "t-1"}

		err := f.Fail(ErrCodeRenderFailed, "render dyn", dimErr)
		assert.Equal(t, ExitFailure, GetExitCode(err))

		resp := decodeResponse(t, buf.String(), nil)
		assert.Equal(t, "error", resp.Status)
		assert.Equal(t, "t-1", resp.TraceID)
		assert.Equal(t, &CLIError{
			Code:    ErrCodeRenderFailed,
			Message: "render dyn",
			Reason:  "INVALID_DIMENSION",
			Cause:   "resolve dyn: INVALID_DIMENSION: m_rows holds -2",
		}, resp.Error)
	})

	t.Run("without cause", func(t *testing.T) {
		buf := &bytes.Buffer{}
		f := &OutputFormatter{Format: "json", Writer: buf, Verbose: true}

		err := f.Fail(ErrCodeNoDatabase, "--db is required", nil)
		assert.Equal(t, "--db is required", err.Error())

		var raw struct {
			Error map[string]any `json:"error"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
		assert.Equal(t, ErrCodeNoDatabase, raw.Error["code"])
		assert.NotContains(t, raw.Error, "reason")
		assert.NotContains(t, raw.Error, "cause")
	})
}

func TestOutputFormatter_Verbosef(t *testing.T) {
	out, diag := &bytes.Buffer{}, &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: out, ErrWriter: diag, Verbose: true}

	f.Verbosef("Loaded %d value(s) from %s", 6, "frame.yaml")
	assert.Empty(t, out.String(), "json output stays parseable")
	assert.Equal(t, "Loaded 6 value(s) from frame.yaml\n", diag.String())

	quiet := &bytes.Buffer{}
	(&OutputFormatter{Writer: quiet}).Verbosef("Loaded %d", 1)
	assert.Empty(t, quiet.String())
}
