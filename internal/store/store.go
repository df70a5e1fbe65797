// Package store persists ingestion records. SQLiteStore serves local use and
// PostgresStore shared deployments; both implement Store.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/sells-group/intake-cli/internal/model"
)

var (
	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = errors.New("store: record not found")

	// ErrAlreadyPromoted is returned by MarkPromoted for a promoted record.
	ErrAlreadyPromoted = errors.New("store: record already promoted")
)

// RecordFilter specifies criteria for listing records.
type RecordFilter struct {
	Status model.Status `json:"status,omitempty"`
	Limit  int          `json:"limit,omitempty"`
	Offset int          `json:"offset,omitempty"`
}

// PromotionRef identifies the downstream opportunity a record became.
type PromotionRef struct {
	OpportunityID string
	AccountID     string
	PromotedAt    time.Time
}

// Store defines the persistence interface for ingestion records.
type Store interface {
	// InsertRecords adds records, skipping ids that already exist. It returns
	// the number inserted.
	InsertRecords(ctx context.Context, recs []model.Record) (int, error)
	GetRecord(ctx context.Context, id string) (*model.Record, error)
	ListRecords(ctx context.Context, filter RecordFilter) ([]model.Record, error)

	// UpdateRecord applies a partial update and returns the stored record.
	UpdateRecord(ctx context.Context, id string, upd model.RecordUpdate) (*model.Record, error)

	// MarkPromoted moves a record to promoted exactly once and clears
	// promotion_pending.
	MarkPromoted(ctx context.Context, id string, ref PromotionRef) (*model.Record, error)

	// ReplaceExtraction swaps the record's payloads after a refresh.
	ReplaceExtraction(ctx context.Context, id string, aiMetadata, rawPayload model.Payload) (*model.Record, error)

	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}
