package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	root := NewRootCommand()

	tests := []struct {
		path  []string
		flags []string
	}{
		{path: []string{"start"}},
		{path: []string{"worker", "run"}},
		{path: []string{"migrate", "up"}},
		{path: []string{"migrate", "down"}, flags: []string{"steps", "all"}},
		{path: []string{"export"}, flags: []string{"shop", "out"}},
		{path: []string{"state", "get"}, flags: []string{"shop", "order"}},
		{path: []string{"state", "set"}, flags: []string{"shop", "order", "processed"}},
		{path: []string{"state", "toggle"}, flags: []string{"shop", "order"}},
		{path: []string{"state", "import"}, flags: []string{"shop", "file"}},
	}

	for _, tt := range tests {
		cmd, _, err := root.Find(tt.path)
		require.NoError(t, err, tt.path)
		require.Equal(t, tt.path[len(tt.path)-1], cmd.Name())
		for _, flag := range tt.flags {
			require.NotNil(t, cmd.Flag(flag), "%v --%s", tt.path, flag)
		}
	}
}

func TestExportRequiresShop(t *testing.T) {
	root := NewRootCommand()
	root.SetArgs([]string{"export"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	err := root.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), `"shop"`)
}

func TestStateLabel(t *testing.T) {
	require.Equal(t, "processed", stateLabel(true))
	require.Equal(t, "unprocessed", stateLabel(false))
}
