package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/intake-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS ingestion_records (
	id                TEXT PRIMARY KEY,
	status            TEXT NOT NULL DEFAULT 'pending_review',
	project_title     TEXT NOT NULL DEFAULT '',
	client_name       TEXT NOT NULL DEFAULT '',
	location          TEXT NOT NULL DEFAULT '',
	tags              TEXT NOT NULL DEFAULT 'null',
	ai_summary        TEXT NOT NULL DEFAULT '',
	match_score       REAL,
	risk_score        REAL,
	deadline          TEXT NOT NULL DEFAULT '',
	budget_text       TEXT NOT NULL DEFAULT '',
	source_url        TEXT NOT NULL DEFAULT '',
	contact_name      TEXT NOT NULL DEFAULT '',
	contact_email     TEXT NOT NULL DEFAULT '',
	contact_phone     TEXT NOT NULL DEFAULT '',
	ai_metadata       TEXT NOT NULL DEFAULT 'null',
	raw_payload       TEXT NOT NULL DEFAULT 'null',
	promotion_pending INTEGER NOT NULL DEFAULT 0,
	opportunity_id    TEXT NOT NULL DEFAULT '',
	account_id        TEXT NOT NULL DEFAULT '',
	promoted_at       DATETIME,
	created_at        DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at        DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_ingestion_records_status ON ingestion_records(status);
CREATE INDEX IF NOT EXISTS idx_ingestion_records_created_at ON ingestion_records(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var sqliteInsert = `INSERT INTO ingestion_records (` + strings.Join(recordColumns, ", ") + `)
VALUES (` + strings.TrimSuffix(strings.Repeat("?, ", len(recordColumns)), ", ") + `)
ON CONFLICT(id) DO NOTHING`

func (s *SQLiteStore) InsertRecords(ctx context.Context, recs []model.Record) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin insert")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, sqliteInsert)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close() //nolint:errcheck

	now := time.Now().UTC()
	inserted := 0
	for _, rec := range recs {
		args, err := recordValues(prepareForInsert(rec, now))
		if err != nil {
			return 0, err
		}
		res, err := stmt.ExecContext(ctx, sqliteArgs(args)...)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert record %s", rec.ID)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: rows affected")
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit insert")
	}
	return inserted, nil
}

var sqliteSelectByID = `SELECT ` + strings.Join(recordColumns, ", ") + ` FROM ingestion_records WHERE id = ?`

func (s *SQLiteStore) GetRecord(ctx context.Context, id string) (*model.Record, error) {
	rec, err := scanRecord(s.db.QueryRowContext(ctx, sqliteSelectByID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get record %s", id)
	}
	return rec, nil
}

func (s *SQLiteStore) ListRecords(ctx context.Context, filter RecordFilter) ([]model.Record, error) {
	query, args, err := selectRecords(filter, sq.Question)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list records")
	}
	defer rows.Close() //nolint:errcheck

	recs := []model.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan record")
		}
		recs = append(recs, *rec)
	}
	return recs, eris.Wrap(rows.Err(), "sqlite: list records iterate")
}

func (s *SQLiteStore) UpdateRecord(ctx context.Context, id string, upd model.RecordUpdate) (*model.Record, error) {
	if upd.IsEmpty() {
		return s.GetRecord(ctx, id)
	}

	query, args, err := updateRecordQuery(id, upd, time.Now().UTC(), sq.Question)
	if err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx, query, sqliteArgs(args)...)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: update record %s", id)
	}
	if err := checkRowsAffected(res, id); err != nil {
		return nil, err
	}
	return s.GetRecord(ctx, id)
}

func (s *SQLiteStore) MarkPromoted(ctx context.Context, id string, ref PromotionRef) (*model.Record, error) {
	promotedAt := ref.PromotedAt
	if promotedAt.IsZero() {
		promotedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE ingestion_records
		 SET status = ?, promotion_pending = 0, opportunity_id = ?, account_id = ?, promoted_at = ?, updated_at = ?
		 WHERE id = ? AND status <> ?`,
		string(model.StatusPromoted), ref.OpportunityID, ref.AccountID, promotedAt, time.Now().UTC(),
		id, string(model.StatusPromoted),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: mark promoted %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		if _, err := s.GetRecord(ctx, id); err != nil {
			return nil, err
		}
		return nil, eris.Wrapf(ErrAlreadyPromoted, "sqlite: mark promoted %s", id)
	}
	return s.GetRecord(ctx, id)
}

func (s *SQLiteStore) ReplaceExtraction(ctx context.Context, id string, aiMetadata, rawPayload model.Payload) (*model.Record, error) {
	ai, raw, err := marshalPayloads(id, aiMetadata, rawPayload)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE ingestion_records SET ai_metadata = ?, raw_payload = ?, updated_at = ? WHERE id = ?`,
		string(ai), string(raw), time.Now().UTC(), id,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: replace extraction %s", id)
	}
	if err := checkRowsAffected(res, id); err != nil {
		return nil, err
	}
	return s.GetRecord(ctx, id)
}

// helpers

func checkRowsAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

// sqliteArgs stores JSON columns as TEXT rather than BLOB.
func sqliteArgs(args []any) []any {
	for i, a := range args {
		if b, ok := a.([]byte); ok {
			args[i] = string(b)
		}
	}
	return args
}
