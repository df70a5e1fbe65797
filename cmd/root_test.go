package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"serve", "queue", "records", "import", "migrate"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "intake-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestRecordsCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range recordsCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"list", "show", "draft", "approve", "reject", "reopen", "refresh", "promote", "stats"} {
		assert.True(t, names[name], "expected records subcommand %q not found", name)
	}
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestRecordsListCommand_Flags(t *testing.T) {
	for _, name := range []string{"status", "q", "sort", "order", "limit", "json"} {
		assert.NotNil(t, recordsListCmd.Flags().Lookup(name), "missing --%s", name)
	}
	assert.Equal(t, "created_at", recordsListCmd.Flags().Lookup("sort").DefValue)
}

func TestRecordsPromoteCommand_Flags(t *testing.T) {
	for _, name := range []string{"account", "title", "contact-phone", "tags"} {
		assert.NotNil(t, recordsPromoteCmd.Flags().Lookup(name), "missing --%s", name)
	}
}

func TestImportCommand_RequiresFile(t *testing.T) {
	assert.Error(t, importCmd.Args(importCmd, nil))
	assert.NoError(t, importCmd.Args(importCmd, []string{"records.json"}))
}
