package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["import"])
	assert.True(t, names["mapping"])
	assert.True(t, names["serve"])
}

func TestMappingSubcommands(t *testing.T) {
	var mapping *cobra.Command
	for _, c := range rootCmd.Commands() {
		if c.Name() == "mapping" {
			mapping = c
		}
	}
	require.NotNil(t, mapping)

	names := map[string]bool{}
	for _, c := range mapping.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["show"])
	assert.True(t, names["clear"])
}

func TestReadTableUnsupportedExtension(t *testing.T) {
	_, err := readTable("leads.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}
