package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/intake-cli/internal/config"
	"github.com/sells-group/intake-cli/internal/model"
)

// useTestConfig points the package config at a temp SQLite database.
func useTestConfig(t *testing.T) string {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "intake.db")
	cfg = &config.Config{
		Store:  config.StoreConfig{Driver: "sqlite", DatabaseURL: dsn},
		Source: config.SourceConfig{TimeoutSecs: 5, MaxRetries: 0},
		Review: config.ReviewConfig{ListLimit: 50, BulkLimit: 4},
		Server: config.ServerConfig{Port: 8080, AllowedOrigins: []string{"*"}},
		Salesforce: config.SalesforceConfig{
			StageName: "Prospecting",
			CloseDays: 90,
		},
		Log: config.LogConfig{Level: "error", Format: "console"},
	}
	return dsn
}

func seedRecords() []model.Record {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	score := 0.72
	return []model.Record{
		{ID: "rec-pending", Status: model.StatusPendingReview, ProjectTitle: "Bridge Repair", ClientName: "TxDOT", Location: "Austin, TX", MatchScore: &score, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "rec-approved", Status: model.StatusApproved, ProjectTitle: "Library Renovation", ClientName: "City of Dallas", ContactName: "Dana Reyes", ContactPhone: "(214) 555-0142", Deadline: "April 30, 2026", CreatedAt: base.Add(time.Hour)},
		{ID: "rec-rejected", Status: model.StatusRejected, ProjectTitle: "Airport Parking", CreatedAt: base},
	}
}

// seededApp opens the test store through initApp and inserts seedRecords.
func seededApp(t *testing.T) *appEnv {
	t.Helper()
	useTestConfig(t)
	env, err := initApp(context.Background(), "cli")
	require.NoError(t, err)
	t.Cleanup(env.Close)

	n, err := env.Service.Import(context.Background(), seedRecords())
	require.NoError(t, err)
	require.Equal(t, 3, n)
	return env
}
