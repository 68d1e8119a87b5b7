package commands

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCommand_Subcommands(t *testing.T) {
	root := NewRootCommand()

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	assert.Equal(t, "serve", serve.Name())
	assert.NotNil(t, serve.Flags().Lookup("skip-migrations"))

	down, _, err := root.Find([]string{"migrate", "down"})
	require.NoError(t, err)
	assert.Equal(t, "1", down.Flags().Lookup("steps").DefValue)

	up, _, err := root.Find([]string{"migrate", "up"})
	require.NoError(t, err)
	assert.Equal(t, "up", up.Name())
}

func TestMigrateDown_RejectsNonPositiveSteps(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	root := NewRootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"migrate", "down", "--steps", "0"})

	err := root.Execute()

	assert.EqualError(t, err, "--steps must be positive")
}
