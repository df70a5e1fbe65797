package store

import (
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/intake-cli/internal/model"
)

const (
	recordsTable     = "ingestion_records"
	defaultListLimit = 100
)

// recordColumns is the column order used by every SELECT and INSERT.
var recordColumns = []string{
	"id", "status", "project_title", "client_name", "location", "tags",
	"ai_summary", "match_score", "risk_score", "deadline", "budget_text",
	"source_url", "contact_name", "contact_email", "contact_phone",
	"ai_metadata", "raw_payload", "promotion_pending", "opportunity_id",
	"account_id", "promoted_at", "created_at", "updated_at",
}

// prepareForInsert fills defaults for a record about to be stored.
func prepareForInsert(rec model.Record, now time.Time) model.Record {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if !rec.Status.Valid() {
		rec.Status = model.StatusPendingReview
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	return rec
}

// recordValues returns the column values of rec in recordColumns order.
// JSON columns are encoded as []byte.
func recordValues(rec model.Record) ([]any, error) {
	tags, err := json.Marshal(rec.Tags)
	if err != nil {
		return nil, eris.Wrap(err, "store: marshal tags")
	}
	ai, raw, err := marshalPayloads(rec.ID, rec.AIMetadata, rec.RawPayload)
	if err != nil {
		return nil, err
	}
	return []any{
		rec.ID, string(rec.Status), rec.ProjectTitle, rec.ClientName, rec.Location, tags,
		rec.AISummary, rec.MatchScore, rec.RiskScore, rec.Deadline, rec.BudgetText,
		rec.SourceURL, rec.ContactName, rec.ContactEmail, rec.ContactPhone,
		ai, raw, rec.PromotionPending, rec.OpportunityID,
		rec.AccountID, rec.PromotedAt, rec.CreatedAt, rec.UpdatedAt,
	}, nil
}

type scannable interface {
	Scan(dest ...any) error
}

// scanRecord reads one row selected with recordColumns.
func scanRecord(row scannable) (*model.Record, error) {
	var (
		r             model.Record
		status        string
		tags, ai, raw []byte
		match, risk   *float64
		promotedAt    *time.Time
	)
	err := row.Scan(
		&r.ID, &status, &r.ProjectTitle, &r.ClientName, &r.Location, &tags,
		&r.AISummary, &match, &risk, &r.Deadline, &r.BudgetText,
		&r.SourceURL, &r.ContactName, &r.ContactEmail, &r.ContactPhone,
		&ai, &raw, &r.PromotionPending, &r.OpportunityID,
		&r.AccountID, &promotedAt, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Status = model.Status(status)
	r.MatchScore, r.RiskScore, r.PromotedAt = match, risk, promotedAt
	if err := unmarshalJSON(tags, &r.Tags); err != nil {
		return nil, eris.Wrapf(err, "store: unmarshal tags for %s", r.ID)
	}
	if err := unmarshalJSON(ai, &r.AIMetadata); err != nil {
		return nil, eris.Wrapf(err, "store: unmarshal ai_metadata for %s", r.ID)
	}
	if err := unmarshalJSON(raw, &r.RawPayload); err != nil {
		return nil, eris.Wrapf(err, "store: unmarshal raw_payload for %s", r.ID)
	}
	return &r, nil
}

func unmarshalJSON(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// selectRecords builds the list query.
func selectRecords(filter RecordFilter, ph sq.PlaceholderFormat) (string, []any, error) {
	q := sq.Select(recordColumns...).From(recordsTable).PlaceholderFormat(ph)
	if filter.Status != "" {
		q = q.Where(sq.Eq{"status": string(filter.Status)})
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	q = q.OrderBy("created_at DESC", "id").Limit(uint64(limit))
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	sql, args, err := q.ToSql()
	return sql, args, eris.Wrap(err, "store: build list query")
}

// updateRecordQuery builds an UPDATE setting only the fields upd carries.
func updateRecordQuery(id string, upd model.RecordUpdate, now time.Time, ph sq.PlaceholderFormat) (string, []any, error) {
	set := map[string]any{"updated_at": now}
	put := func(col string, v *string) {
		if v != nil {
			set[col] = *v
		}
	}
	if upd.Status != nil {
		set["status"] = string(*upd.Status)
	}
	put("project_title", upd.ProjectTitle)
	put("client_name", upd.ClientName)
	put("location", upd.Location)
	put("ai_summary", upd.AISummary)
	put("deadline", upd.Deadline)
	put("budget_text", upd.BudgetText)
	put("source_url", upd.SourceURL)
	put("contact_name", upd.ContactName)
	put("contact_email", upd.ContactEmail)
	put("contact_phone", upd.ContactPhone)
	if upd.Tags != nil {
		tags, err := json.Marshal(*upd.Tags)
		if err != nil {
			return "", nil, eris.Wrap(err, "store: marshal tags")
		}
		set["tags"] = tags
	}
	if upd.PromotionPending != nil {
		set["promotion_pending"] = *upd.PromotionPending
	}

	sql, args, err := sq.Update(recordsTable).
		SetMap(set).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(ph).
		ToSql()
	return sql, args, eris.Wrap(err, "store: build update query")
}

func notFound(id string) error {
	return eris.Wrapf(ErrNotFound, "store: record %s", id)
}

func marshalPayloads(id string, aiMetadata, rawPayload model.Payload) (ai, raw []byte, err error) {
	ai, err = json.Marshal(aiMetadata)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "store: marshal ai_metadata for %s", id)
	}
	raw, err = json.Marshal(rawPayload)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "store: marshal raw_payload for %s", id)
	}
	return ai, raw, nil
}
