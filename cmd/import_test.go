package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/intake-cli/internal/model"
)

const importYAML = `records:
  - id: imp-1
    project_title: Water Treatment Plant
    client_name: City of Round Rock
    location: Round Rock, TX
    match_score: 0.64
  - id: imp-2
    project_title: Fire Station 9
    status: approved
`

func TestImportCommand_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	dsn := filepath.Join(dir, "import.db")
	t.Setenv("INTAKE_STORE_DATABASE_URL", dsn)
	t.Setenv("INTAKE_LOG_LEVEL", "error")

	file := filepath.Join(dir, "records.yaml")
	require.NoError(t, os.WriteFile(file, []byte(importYAML), 0o600))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"import", file})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "imported 2 of 2 records")

	env, err := initApp(context.Background(), "cli")
	require.NoError(t, err)
	defer env.Close()

	rec, err := env.Service.GetRecord(context.Background(), "imp-2")
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, rec.Status)

	rec, err = env.Service.GetRecord(context.Background(), "imp-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPendingReview, rec.Status)
	require.NotNil(t, rec.MatchScore)
	assert.InDelta(t, 0.64, *rec.MatchScore, 1e-9)
}

func TestImportCommand_MissingFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("INTAKE_STORE_DATABASE_URL", filepath.Join(dir, "x.db"))

	rootCmd.SetArgs([]string{"import", filepath.Join(dir, "missing.json")})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read import file")
}
