// Package model defines the ingestion record, its typed payload views, and
// the derived preview and draft projections.
package model

import (
	"time"
)

// Status is the review state of an ingestion record.
type Status string

const (
	StatusPendingReview Status = "pending_review"
	StatusApproved      Status = "approved"
	StatusRejected      Status = "rejected"
	StatusPromoted      Status = "promoted"
)

// Statuses lists every known status in workflow order.
var Statuses = []Status{StatusPendingReview, StatusApproved, StatusRejected, StatusPromoted}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPendingReview, StatusApproved, StatusRejected, StatusPromoted:
		return true
	}
	return false
}

// Record is an opportunity candidate produced by the upstream scrape/AI
// extraction process. Scalar business fields are optional; empty strings and
// nil pointers mean "not provided".
type Record struct {
	ID           string   `json:"id" yaml:"id"`
	Status       Status   `json:"status" yaml:"status"`
	ProjectTitle string   `json:"project_title,omitempty" yaml:"project_title"`
	ClientName   string   `json:"client_name,omitempty" yaml:"client_name"`
	Location     string   `json:"location,omitempty" yaml:"location"`
	Tags         []string `json:"tags,omitempty" yaml:"tags"`
	AISummary    string   `json:"ai_summary,omitempty" yaml:"ai_summary"`
	MatchScore   *float64 `json:"match_score,omitempty" yaml:"match_score"`
	RiskScore    *float64 `json:"risk_score,omitempty" yaml:"risk_score"`
	Deadline     string   `json:"deadline,omitempty" yaml:"deadline"`
	BudgetText   string   `json:"budget_text,omitempty" yaml:"budget_text"`

	SourceURL    string `json:"source_url,omitempty" yaml:"source_url"`
	ContactName  string `json:"contact_name,omitempty" yaml:"contact_name"`
	ContactEmail string `json:"contact_email,omitempty" yaml:"contact_email"`
	ContactPhone string `json:"contact_phone,omitempty" yaml:"contact_phone"`

	AIMetadata Payload `json:"ai_metadata,omitempty" yaml:"ai_metadata"`
	RawPayload Payload `json:"raw_payload,omitempty" yaml:"raw_payload"`

	// PromotionPending is set together with the pre-promotion update and
	// cleared when the promotion lands. A record with this flag and a status
	// other than promoted was updated but never promoted.
	PromotionPending bool       `json:"promotion_pending" yaml:"promotion_pending"`
	OpportunityID    string     `json:"opportunity_id,omitempty" yaml:"opportunity_id"`
	AccountID        string     `json:"account_id,omitempty" yaml:"account_id"`
	PromotedAt       *time.Time `json:"promoted_at,omitempty" yaml:"promoted_at"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// RecordFromPayload builds a Record from an untyped object, tolerating
// wrong-typed fields the same way payload views do. Numeric strings for
// scores are ignored.
func RecordFromPayload(p Payload) Record {
	rec := Record{
		ID:           p.String("id"),
		Status:       Status(p.String("status")),
		ProjectTitle: p.String("project_title"),
		ClientName:   p.String("client_name"),
		Location:     p.String("location"),
		AISummary:    p.String("ai_summary"),
		Deadline:     p.String("deadline"),
		BudgetText:   p.String("budget_text"),
		SourceURL:    p.String("source_url"),
		ContactName:  p.String("contact_name"),
		ContactEmail: p.String("contact_email"),
		ContactPhone: p.String("contact_phone"),
		AIMetadata:   p.Object("ai_metadata"),
		RawPayload:   p.Object("raw_payload"),
	}
	if tags, ok := p.Strings("tags"); ok {
		rec.Tags = tags
	}
	if v, ok := p.Number("match_score"); ok {
		rec.MatchScore = &v
	}
	if v, ok := p.Number("risk_score"); ok {
		rec.RiskScore = &v
	}
	if !rec.Status.Valid() {
		rec.Status = StatusPendingReview
	}
	if ts := p.String("created_at"); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			rec.CreatedAt = t
		}
	}
	return rec
}

// RecordUpdate is a partial update. Nil fields are left unchanged.
type RecordUpdate struct {
	Status           *Status   `json:"status,omitempty"`
	ProjectTitle     *string   `json:"project_title,omitempty"`
	ClientName       *string   `json:"client_name,omitempty"`
	Location         *string   `json:"location,omitempty"`
	Tags             *[]string `json:"tags,omitempty"`
	AISummary        *string   `json:"ai_summary,omitempty"`
	Deadline         *string   `json:"deadline,omitempty"`
	BudgetText       *string   `json:"budget_text,omitempty"`
	SourceURL        *string   `json:"source_url,omitempty"`
	ContactName      *string   `json:"contact_name,omitempty"`
	ContactEmail     *string   `json:"contact_email,omitempty"`
	ContactPhone     *string   `json:"contact_phone,omitempty"`
	PromotionPending *bool     `json:"promotion_pending,omitempty"`
}

// IsEmpty reports whether the update changes nothing.
func (u RecordUpdate) IsEmpty() bool {
	return u.Status == nil && u.ProjectTitle == nil && u.ClientName == nil &&
		u.Location == nil && u.Tags == nil && u.AISummary == nil &&
		u.Deadline == nil && u.BudgetText == nil && u.SourceURL == nil &&
		u.ContactName == nil && u.ContactEmail == nil && u.ContactPhone == nil &&
		u.PromotionPending == nil
}

// Apply returns a copy of rec with the update applied. Stores use it to keep
// in-memory and persisted views consistent.
func (u RecordUpdate) Apply(rec Record) Record {
	if u.Status != nil {
		rec.Status = *u.Status
	}
	setString(&rec.ProjectTitle, u.ProjectTitle)
	setString(&rec.ClientName, u.ClientName)
	setString(&rec.Location, u.Location)
	setString(&rec.AISummary, u.AISummary)
	setString(&rec.Deadline, u.Deadline)
	setString(&rec.BudgetText, u.BudgetText)
	setString(&rec.SourceURL, u.SourceURL)
	setString(&rec.ContactName, u.ContactName)
	setString(&rec.ContactEmail, u.ContactEmail)
	setString(&rec.ContactPhone, u.ContactPhone)
	if u.Tags != nil {
		rec.Tags = append([]string(nil), (*u.Tags)...)
	}
	if u.PromotionPending != nil {
		rec.PromotionPending = *u.PromotionPending
	}
	return rec
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
