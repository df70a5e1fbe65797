package normalize

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/sells-group/intake-cli/internal/model"
)

// CalendarDateLayout is the YYYY-MM-DD layout accepted by date inputs.
const CalendarDateLayout = "2006-01-02"

// BuildDraft derives the promotion form defaults from a record snapshot.
func BuildDraft(rec *model.Record) model.Draft {
	s := decode(rec)
	loc := resolveLocation(s)
	meta := extractPreview(s)

	d := model.Draft{
		Title: firstText(s,
			func(s *sources) string { return strings.TrimSpace(s.rec.ProjectTitle) },
			oppText(func(o model.OpportunityBlock) string { return strings.TrimSpace(o.Title) }),
		),
		ClientName: strings.TrimSpace(s.rec.ClientName),
		City:       loc.City,
		State:      loc.State,
		Address:    displayAddress(s, loc),
		Location:   loc.String(),
		Budget: firstText(s,
			func(s *sources) string { return strings.TrimSpace(s.rec.BudgetText) },
			func(s *sources) string { return strings.TrimSpace(s.preview.Budget) },
			oppText(func(o model.OpportunityBlock) string { return strings.TrimSpace(o.Budget) }),
		),
		ExpectedDate: CalendarDate(firstNonEmpty(meta.ExpectedRFPDate, meta.Deadline, s.rec.Deadline)),
		Tags:         append([]string{}, meta.Tags...),
		Description: ComposeDescription(
			meta.Overview,
			meta.Description,
			scopeSection(meta.ScopeSummary),
			scopeItemsSection(meta.ScopeItems),
			meta.Summary,
			s.rec.AISummary,
		),
		Summary:      meta.Summary,
		SourceURL:    firstNonEmpty(strings.TrimSpace(s.rec.SourceURL), meta.SourceURL),
		Probability:  meta.Probability,
		RiskLevel:    meta.RiskLevel,
		MarketSector: meta.MarketSector,
	}
	if d.Location == "" {
		d.Location = d.Address
	}

	switch {
	case len(meta.Tags) > 0:
		d.Tag = meta.Tags[0]
	case len(s.rec.Tags) > 0:
		d.Tag = s.rec.Tags[0]
	}

	d.ContactName, d.ContactEmail, d.ContactPhone = draftContact(s.rec, meta)
	return d
}

// CalendarDate parses a loosely formatted date and renders it as YYYY-MM-DD.
// Unparsable input yields "".
func CalendarDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if t, err := time.Parse(CalendarDateLayout, raw); err == nil {
		return t.Format(CalendarDateLayout)
	}
	t, ok := parseLooseDate(raw)
	if !ok {
		return ""
	}
	return t.Format(CalendarDateLayout)
}

// parseLooseDate wraps dateparse, which can panic on some malformed inputs.
func parseLooseDate(raw string) (t time.Time, ok bool) {
	defer func() {
		if recover() != nil {
			t, ok = time.Time{}, false
		}
	}()
	parsed, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// draftContact picks a contact for the form: values already saved on the
// record, then the first enriched contact, then the flat preview lists.
func draftContact(rec *model.Record, meta model.PreviewMeta) (name, email, phone string) {
	name, email, phone = rec.ContactName, rec.ContactEmail, rec.ContactPhone

	if len(meta.EnrichedContacts) > 0 {
		c := meta.EnrichedContacts[0]
		name = firstNonEmpty(name, c.Name)
		if len(c.Email) > 0 {
			email = firstNonEmpty(email, c.Email[0])
		}
		if len(c.Phone) > 0 {
			phone = firstNonEmpty(phone, c.Phone[0])
		}
	}
	if len(meta.Contacts.Emails) > 0 {
		email = firstNonEmpty(email, meta.Contacts.Emails[0])
	}
	if len(meta.Contacts.Phones) > 0 {
		phone = firstNonEmpty(phone, meta.Contacts.Phones[0])
	}
	return strings.TrimSpace(name), strings.TrimSpace(email), FormatPhoneForInput(phone)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
