package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/intake-cli/internal/model"
	"github.com/sells-group/intake-cli/internal/source"
	"github.com/sells-group/intake-cli/internal/store"
	"github.com/sells-group/intake-cli/pkg/salesforce"
)

// mockSF implements salesforce.Client.
type mockSF struct {
	mu       sync.Mutex
	accounts map[string]string
	inserts  []sfInsert
	insertFn func(sObjectName string, record map[string]any) (string, error)
}

type sfInsert struct {
	SObject string
	Fields  map[string]any
}

func (m *mockSF) Query(_ context.Context, _ string, out any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	accts := out.(*[]salesforce.Account)
	for id, name := range m.accounts {
		*accts = append(*accts, salesforce.Account{ID: id, Name: name})
	}
	return nil
}

func (m *mockSF) InsertOne(_ context.Context, sObjectName string, record map[string]any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts = append(m.inserts, sfInsert{SObject: sObjectName, Fields: record})
	if m.insertFn != nil {
		return m.insertFn(sObjectName, record)
	}
	if sObjectName == "Contact" {
		return "003CONTACT", nil
	}
	return "006OPP", nil
}

func (m *mockSF) UpdateOne(context.Context, string, string, map[string]any) error {
	return nil
}

func (m *mockSF) insertsOf(sObject string) []sfInsert {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sfInsert
	for _, in := range m.inserts {
		if in.SObject == sObject {
			out = append(out, in)
		}
	}
	return out
}

// mockRefresher implements Refresher.
type mockRefresher struct {
	ext   *source.Extraction
	err   error
	calls int
}

func (m *mockRefresher) Refresh(context.Context, *model.Record) (*source.Extraction, error) {
	m.calls++
	return m.ext, m.err
}

func newTestStore(t *testing.T, recs ...model.Record) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "intake.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	if len(recs) > 0 {
		_, err := st.InsertRecords(context.Background(), recs)
		require.NoError(t, err)
	}
	return st
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
}

func approvedRecord(id string) model.Record {
	return model.Record{
		ID:           id,
		Status:       model.StatusApproved,
		ProjectTitle: "Library Renovation",
		ClientName:   "City of Austin",
		Location:     "Austin, TX",
		Deadline:     "April 1, 2026",
		BudgetText:   "$2.5M",
		SourceURL:    "https://bids.example.com/1",
		ContactName:  "Dana Lee",
		ContactEmail: "dana@austintexas.gov",
		ContactPhone: "+15125550100",
		AISummary:    "Full renovation of the central library.",
		RawPayload:   model.Payload{"url": "https://bids.example.com/1"},
		CreatedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}
