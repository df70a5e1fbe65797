package store

import (
	"context"
	"errors"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/intake-cli/internal/db"
	"github.com/sells-group/intake-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS ingestion_records (
	id                TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	status            TEXT NOT NULL DEFAULT 'pending_review',
	project_title     TEXT NOT NULL DEFAULT '',
	client_name       TEXT NOT NULL DEFAULT '',
	location          TEXT NOT NULL DEFAULT '',
	tags              JSONB NOT NULL DEFAULT 'null',
	ai_summary        TEXT NOT NULL DEFAULT '',
	match_score       DOUBLE PRECISION,
	risk_score        DOUBLE PRECISION,
	deadline          TEXT NOT NULL DEFAULT '',
	budget_text       TEXT NOT NULL DEFAULT '',
	source_url        TEXT NOT NULL DEFAULT '',
	contact_name      TEXT NOT NULL DEFAULT '',
	contact_email     TEXT NOT NULL DEFAULT '',
	contact_phone     TEXT NOT NULL DEFAULT '',
	ai_metadata       JSONB NOT NULL DEFAULT 'null',
	raw_payload       JSONB NOT NULL DEFAULT 'null',
	promotion_pending BOOLEAN NOT NULL DEFAULT false,
	opportunity_id    TEXT NOT NULL DEFAULT '',
	account_id        TEXT NOT NULL DEFAULT '',
	promoted_at       TIMESTAMPTZ,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_ingestion_records_status ON ingestion_records(status);
CREATE INDEX IF NOT EXISTS idx_ingestion_records_created_at ON ingestion_records(created_at DESC);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// InsertRecords loads records through COPY, skipping ids already present.
func (s *PostgresStore) InsertRecords(ctx context.Context, recs []model.Record) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(recs))
	for _, rec := range recs {
		vals, err := recordValues(prepareForInsert(rec, now))
		if err != nil {
			return 0, err
		}
		rows = append(rows, vals)
	}

	n, err := db.BulkInsert(ctx, s.pool, db.InsertConfig{
		Table:        recordsTable,
		Columns:      recordColumns,
		ConflictKeys: []string{"id"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: insert records")
	}
	return int(n), nil
}

var (
	returningRecord    = "RETURNING " + strings.Join(recordColumns, ", ")
	postgresSelectByID = `SELECT ` + strings.Join(recordColumns, ", ") + ` FROM ingestion_records WHERE id = $1`
)

func (s *PostgresStore) GetRecord(ctx context.Context, id string) (*model.Record, error) {
	rec, err := scanRecord(s.pool.QueryRow(ctx, postgresSelectByID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get record %s", id)
	}
	return rec, nil
}

func (s *PostgresStore) ListRecords(ctx context.Context, filter RecordFilter) ([]model.Record, error) {
	query, args, err := selectRecords(filter, sq.Dollar)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list records")
	}
	defer rows.Close()

	recs := []model.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan record")
		}
		recs = append(recs, *rec)
	}
	return recs, eris.Wrap(rows.Err(), "postgres: list records iterate")
}

func (s *PostgresStore) UpdateRecord(ctx context.Context, id string, upd model.RecordUpdate) (*model.Record, error) {
	if upd.IsEmpty() {
		return s.GetRecord(ctx, id)
	}

	query, args, err := updateRecordQuery(id, upd, time.Now().UTC(), sq.Dollar)
	if err != nil {
		return nil, err
	}
	rec, err := scanRecord(s.pool.QueryRow(ctx, query+" "+returningRecord, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: update record %s", id)
	}
	return rec, nil
}

func (s *PostgresStore) MarkPromoted(ctx context.Context, id string, ref PromotionRef) (*model.Record, error) {
	promotedAt := ref.PromotedAt
	if promotedAt.IsZero() {
		promotedAt = time.Now().UTC()
	}

	rec, err := scanRecord(s.pool.QueryRow(ctx,
		`UPDATE ingestion_records
		 SET status = $1, promotion_pending = false, opportunity_id = $2, account_id = $3, promoted_at = $4, updated_at = $5
		 WHERE id = $6 AND status <> $1 `+returningRecord,
		string(model.StatusPromoted), ref.OpportunityID, ref.AccountID, promotedAt, time.Now().UTC(), id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		if _, err := s.GetRecord(ctx, id); err != nil {
			return nil, err
		}
		return nil, eris.Wrapf(ErrAlreadyPromoted, "postgres: mark promoted %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: mark promoted %s", id)
	}
	return rec, nil
}

func (s *PostgresStore) ReplaceExtraction(ctx context.Context, id string, aiMetadata, rawPayload model.Payload) (*model.Record, error) {
	ai, raw, err := marshalPayloads(id, aiMetadata, rawPayload)
	if err != nil {
		return nil, err
	}

	rec, err := scanRecord(s.pool.QueryRow(ctx,
		`UPDATE ingestion_records SET ai_metadata = $1, raw_payload = $2, updated_at = $3 WHERE id = $4 `+returningRecord,
		ai, raw, time.Now().UTC(), id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: replace extraction %s", id)
	}
	return rec, nil
}
