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

	expected := []string{"origin", "params", "isochrone", "check", "show", "serve"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "reach", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestOriginCommand_Flags(t *testing.T) {
	for _, name := range []string{"lat", "lon", "address"} {
		assert.NotNil(t, originCmd.Flags().Lookup(name), "origin should have --%s flag", name)
	}
}

func TestParamsCommand_Flags(t *testing.T) {
	for _, name := range []string{"mode", "minutes"} {
		assert.NotNil(t, paramsCmd.Flags().Lookup(name), "params should have --%s flag", name)
	}
}

func TestIsochroneCommand_Flags(t *testing.T) {
	flag := isochroneCmd.Flags().Lookup("raw")
	require.NotNil(t, flag, "isochrone command should have --raw flag")
	assert.Equal(t, "false", flag.DefValue)
}

func TestCheckCommand_Flags(t *testing.T) {
	require.NotNil(t, checkCmd.Flags().Lookup("file"))
	require.NotNil(t, checkCmd.Flags().Lookup("single"))
}

func TestShowCommand_Flags(t *testing.T) {
	flag := showCmd.Flags().Lookup("format")
	require.NotNil(t, flag, "show command should have --format flag")
	assert.Equal(t, "table", flag.DefValue)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}
