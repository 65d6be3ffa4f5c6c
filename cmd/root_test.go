package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{"appraise", "readiness", "batch", "runs", "version"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "parcel-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestReadinessCommand_Flags(t *testing.T) {
	for _, name := range []string{"engine", "housing-type", "target-units", "json", "no-store"} {
		require.NotNil(t, readinessCmd.Flags().Lookup(name), "readiness should have --%s", name)
	}
}

func TestBatchCommand_Flags(t *testing.T) {
	flag := batchCmd.Flags().Lookup("concurrency")
	require.NotNil(t, flag, "batch command should have --concurrency flag")
	assert.Equal(t, "0", flag.DefValue)

	flag = batchCmd.Flags().Lookup("limit")
	require.NotNil(t, flag)
	assert.Equal(t, "0", flag.DefValue)
}

func TestVersionCommand(t *testing.T) {
	setupEnv(t)

	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "parcel-cli dev")
	assert.Contains(t, out, "readiness engine v42")
	assert.Contains(t, out, "readiness <- [appraisal diagnosis capacity scenario]")
}

func TestRootCommand_InvalidConfig(t *testing.T) {
	setupEnv(t)
	t.Setenv("PARCEL_STORE_DRIVER", "mysql")

	_, err := executeCommand(t, "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate config")
}
