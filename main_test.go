package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFlagOverrides(t *testing.T) {
	f := &flags{
		envFile: filepath.Join(t.TempDir(), "missing.env"),
		debug:   true,
		api:     "localhost:9001",
		listen:  ":2300",
		addr:    ":8100",
	}

	cfg, err := loadConfig(f)
	require.NoError(t, err)

	assert.Equal(t, "localhost:9001", cfg.APIBase)
	assert.Equal(t, ":2300", cfg.SSHListen)
	assert.Equal(t, ":8100", cfg.MockAddr)
	assert.Equal(t, "debug", cfg.LogLevel)

	client, err := newBackend(cfg)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9001", client.BaseURL())
}

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"run", "serve", "mock-backend"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestRunRejectsUnknownTopic(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"run", "--env-file", filepath.Join(t.TempDir(), "missing.env"), "--topic", "sports"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown topic "sports"`)
}
