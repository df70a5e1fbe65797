// Package service implements the record collaborator used by the review
// workflow: persistence through store.Store, promotion into Salesforce (or a
// locally minted id), and refresh through the source refresher.
package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/intake-cli/internal/model"
	"github.com/sells-group/intake-cli/internal/normalize"
	"github.com/sells-group/intake-cli/internal/source"
	"github.com/sells-group/intake-cli/internal/store"
	"github.com/sells-group/intake-cli/pkg/salesforce"
)

var (
	// ErrNotApproved is returned when promoting a record that is not approved.
	ErrNotApproved = errors.New("service: only approved records can be promoted")

	// ErrAccountNotFound is returned when the promotion account does not exist.
	ErrAccountNotFound = errors.New("service: salesforce account not found")

	// ErrRefreshDisabled is returned when no refresher is configured.
	ErrRefreshDisabled = errors.New("service: refresh is not configured")
)

// Refresher produces replacement payloads for a record.
type Refresher interface {
	Refresh(ctx context.Context, rec *model.Record) (*source.Extraction, error)
}

// PromotionConfig holds the defaults written to promoted opportunities.
type PromotionConfig struct {
	StageName  string
	LeadSource string

	// CloseDays is added to today when the record has no usable deadline.
	CloseDays int
}

// Option configures a Service.
type Option func(*Service)

// WithSalesforce promotes records into Salesforce Opportunities.
func WithSalesforce(c salesforce.Client, cfg PromotionConfig) Option {
	return func(s *Service) {
		s.sf = c
		s.promo = cfg
	}
}

// WithRefresher enables refresh.
func WithRefresher(r Refresher) Option {
	return func(s *Service) { s.refresher = r }
}

// Service implements review.Mutator.
type Service struct {
	store     store.Store
	sf        salesforce.Client
	promo     PromotionConfig
	refresher Refresher
	now       func() time.Time
}

// New creates a Service over st.
func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store: st,
		promo: PromotionConfig{StageName: "Prospecting", CloseDays: 90},
		now:   time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ListRecords returns records, newest first, optionally filtered by status.
func (s *Service) ListRecords(ctx context.Context, status model.Status, limit int) ([]model.Record, error) {
	return s.store.ListRecords(ctx, store.RecordFilter{Status: status, Limit: limit})
}

// GetRecord returns one record.
func (s *Service) GetRecord(ctx context.Context, id string) (*model.Record, error) {
	return s.store.GetRecord(ctx, id)
}

// UpdateRecord applies a partial update.
func (s *Service) UpdateRecord(ctx context.Context, id string, upd model.RecordUpdate) (*model.Record, error) {
	return s.store.UpdateRecord(ctx, id, upd)
}

// PromoteRecord creates the downstream opportunity for an approved record and
// marks the record promoted. It is not retried.
func (s *Service) PromoteRecord(ctx context.Context, id, accountID string) (*model.Record, error) {
	rec, err := s.store.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	switch rec.Status {
	case model.StatusPromoted:
		return nil, eris.Wrapf(store.ErrAlreadyPromoted, "service: promote %s", id)
	case model.StatusApproved:
	default:
		return nil, eris.Wrapf(ErrNotApproved, "service: promote %s (status %s)", id, rec.Status)
	}

	log := zap.L().With(zap.String("record_id", id), zap.String("account_id", accountID))

	oppID, err := s.createOpportunity(ctx, rec, accountID)
	if err != nil {
		log.Error("create opportunity failed", zap.Error(err))
		return nil, err
	}

	out, err := s.store.MarkPromoted(ctx, id, store.PromotionRef{
		OpportunityID: oppID,
		AccountID:     accountID,
		PromotedAt:    s.now().UTC(),
	})
	if err != nil {
		log.Error("opportunity created but record not marked promoted",
			zap.String("opportunity_id", oppID), zap.Error(err))
		return nil, eris.Wrapf(err, "service: mark %s promoted", id)
	}
	log.Info("record promoted", zap.String("opportunity_id", oppID))
	return out, nil
}

func (s *Service) createOpportunity(ctx context.Context, rec *model.Record, accountID string) (string, error) {
	if s.sf == nil {
		return "local-" + uuid.New().String(), nil
	}

	if accountID != "" {
		acct, err := salesforce.FindAccountByID(ctx, s.sf, accountID)
		if err != nil {
			return "", eris.Wrapf(err, "service: promote %s", rec.ID)
		}
		if acct == nil {
			return "", eris.Wrapf(ErrAccountNotFound, "service: promote %s: account %s", rec.ID, accountID)
		}
	}

	oppID, err := salesforce.CreateOpportunity(ctx, s.sf, s.opportunityFor(rec, accountID))
	if err != nil {
		return "", eris.Wrapf(err, "service: promote %s", rec.ID)
	}

	if accountID != "" && rec.ContactName != "" {
		s.createContact(ctx, rec, accountID)
	}
	return oppID, nil
}

// opportunityFor maps a record onto the Opportunity promotion writes.
func (s *Service) opportunityFor(rec *model.Record, accountID string) salesforce.Opportunity {
	draft := normalize.BuildDraft(rec)

	name := strings.TrimSpace(rec.ProjectTitle)
	if name == "" {
		name = draft.Title
	}

	closeDate := s.now().UTC().AddDate(0, 0, s.promo.CloseDays)
	if d := normalize.CalendarDate(rec.Deadline); d != "" {
		if t, err := time.Parse(normalize.CalendarDateLayout, d); err == nil {
			closeDate = t
		}
	}

	return salesforce.Opportunity{
		Name:        name,
		AccountID:   accountID,
		StageName:   s.promo.StageName,
		CloseDate:   closeDate,
		Amount:      ParseAmount(firstNonEmpty(rec.BudgetText, draft.Budget)),
		Description: draft.Description,
		LeadSource:  s.promo.LeadSource,
		NextStep:    firstNonEmpty(rec.SourceURL, draft.SourceURL),
	}
}

// createContact links the record's contact to the account. Failures are
// logged and do not fail the promotion.
func (s *Service) createContact(ctx context.Context, rec *model.Record, accountID string) {
	first, last := salesforce.SplitName(rec.ContactName)
	fields := map[string]any{"LastName": last}
	if first != "" {
		fields["FirstName"] = first
	}
	if rec.ContactEmail != "" {
		fields["Email"] = rec.ContactEmail
	}
	if rec.ContactPhone != "" {
		fields["Phone"] = normalize.FormatPhoneForDisplay(rec.ContactPhone)
	}
	if _, err := salesforce.CreateContact(ctx, s.sf, accountID, fields); err != nil {
		zap.L().Warn("promotion contact not created",
			zap.String("record_id", rec.ID), zap.Error(err))
	}
}

// RefreshRecord re-extracts the record from its source page and replaces its
// payloads. Status and business fields are unchanged.
func (s *Service) RefreshRecord(ctx context.Context, id string) (*model.Record, error) {
	if s.refresher == nil {
		return nil, ErrRefreshDisabled
	}
	rec, err := s.store.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	ext, err := s.refresher.Refresh(ctx, rec)
	if err != nil {
		return nil, err
	}
	return s.store.ReplaceExtraction(ctx, id, ext.AIMetadata, ext.RawPayload)
}

// Import inserts records, skipping ids that already exist.
func (s *Service) Import(ctx context.Context, recs []model.Record) (int, error) {
	n, err := s.store.InsertRecords(ctx, recs)
	if err != nil {
		return 0, eris.Wrap(err, "service: import")
	}
	zap.L().Info("records imported", zap.Int("received", len(recs)), zap.Int("inserted", n))
	return n, nil
}

// Ping checks the store connection.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// ParseAmount reads a budget such as "$1,250,000" or "2.5M". Ranges use their
// first figure. It returns nil when no amount can be read.
func ParseAmount(text string) *float64 {
	text = strings.ToUpper(strings.TrimSpace(text))
	start := strings.IndexAny(text, "0123456789")
	if start < 0 {
		return nil
	}
	end := start
	for end < len(text) && strings.ContainsRune("0123456789,.", rune(text[end])) {
		end++
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimRight(text[start:end], ".,"), ",", ""), 64)
	if err != nil {
		return nil
	}
	rest := strings.TrimSpace(text[end:])
	switch {
	case strings.HasPrefix(rest, "K"):
		v *= 1e3
	case strings.HasPrefix(rest, "M"):
		v *= 1e6
	case strings.HasPrefix(rest, "B"):
		v *= 1e9
	}
	return &v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
