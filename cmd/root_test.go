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

	expected := []string{"report", "geocode", "train", "runs"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "amesgeo", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestReportCommand_Flags(t *testing.T) {
	for _, name := range []string{"boundaries", "save", "xlsx"} {
		require.NotNil(t, reportCmd.Flags().Lookup(name), "report command should have --%s flag", name)
	}
}

func TestTrainCommand_Flags(t *testing.T) {
	flag := trainCmd.Flags().Lookup("variant")
	require.NotNil(t, flag, "train command should have --variant flag")
	assert.Equal(t, "coords", flag.DefValue)
}

func TestGeocodeCommand_Flags(t *testing.T) {
	flag := geocodeCmd.Flags().Lookup("name-field")
	require.NotNil(t, flag, "geocode command should have --name-field flag")
	assert.Equal(t, "Name", flag.DefValue)
}
