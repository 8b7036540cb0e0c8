package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCapturesStdout(t *testing.T) {
	out, err := Run("sh", "-c", "echo hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)
}

func TestRunNonzeroExit(t *testing.T) {
	out, err := Run("sh", "-c", "echo partial; echo oops >&2; exit 3")
	require.Error(t, err)
	assert.Equal(t, "partial\n", out)

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, 3, cmdErr.Code)
	assert.Equal(t, "partial\n", cmdErr.Stdout)
	assert.Equal(t, "oops\n", cmdErr.Stderr)
	assert.Contains(t, cmdErr.Error(), "status 3")
	assert.Contains(t, cmdErr.Error(), "oops")
}

func TestRunInputPassesStdinVerbatim(t *testing.T) {
	out, err := RunInput("line1\nline2\n", "cat")
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2\n", out)
}

func TestRunMissingCommand(t *testing.T) {
	_, err := Run("definitely-not-a-real-command-xyz")
	require.Error(t, err)

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, -1, cmdErr.Code)
}

func TestStream(t *testing.T) {
	err := Stream(2, "sh", "-c", "echo line1; echo line2")
	assert.NoError(t, err)
}

func TestStreamNonzeroExit(t *testing.T) {
	err := Stream(0, "sh", "-c", "echo doomed; exit 7")
	require.Error(t, err)

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, 7, cmdErr.Code)
	assert.Contains(t, cmdErr.Stdout, "doomed")
}
