package normalize

import (
	"strings"

	"github.com/sells-group/intake-cli/internal/model"
)

// Risk bands applied to a numeric risk_score when no textual level exists.
const (
	highRiskThreshold   = 70
	mediumRiskThreshold = 40
)

// ExtractPreview builds the canonical preview of a record. Each field falls
// back through its own precedence chain, so a gap in one source never blanks
// an unrelated field.
func ExtractPreview(rec *model.Record) model.PreviewMeta {
	return extractPreview(decode(rec))
}

func extractPreview(s *sources) model.PreviewMeta {
	meta := model.PreviewMeta{
		Summary: firstText(s,
			func(s *sources) string { return s.rec.AISummary },
			func(s *sources) string { return s.preview.Summary },
			func(s *sources) string { return s.preview.Description },
			func(s *sources) string { return s.raw.Summary },
		),
		Description: firstText(s,
			func(s *sources) string { return s.preview.Description },
			func(s *sources) string { return s.raw.Description },
			func(s *sources) string { return strings.Join(s.raw.DescriptionSections, sectionSeparator) },
		),
		Probability: firstNumber(s,
			func(s *sources) *float64 { return s.preview.Probability },
			func(s *sources) *float64 { return s.rec.MatchScore },
			func(s *sources) *float64 { return s.raw.MatchScore },
		),
		RiskLevel: firstText(s,
			func(s *sources) string { return s.preview.RiskLevel },
			func(s *sources) string { return s.raw.RiskLevel },
			func(s *sources) string { return riskLevelFromScore(s.rec.RiskScore) },
		),
		ExpectedRFPDate: firstText(s,
			func(s *sources) string { return s.preview.ExpectedRFPDate },
			oppText(func(o model.OpportunityBlock) string { return o.ExpectedRFPDate }),
			func(s *sources) string { return s.raw.ExpectedRFPDate },
		),
		Deadline: firstText(s,
			func(s *sources) string { return s.preview.Deadline },
			oppText(func(o model.OpportunityBlock) string { return o.Deadline }),
			func(s *sources) string { return s.rec.Deadline },
			func(s *sources) string { return s.raw.Deadline },
		),
		MarketSector: firstText(s,
			func(s *sources) string { return s.preview.MarketSector },
			func(s *sources) string { return s.raw.MarketSector },
			func(s *sources) string { return strings.Join(s.rec.Tags, ", ") },
		),
		SourceURL: sourceURL(s),
		Overview: firstText(s,
			oppText(func(o model.OpportunityBlock) string { return o.Overview }),
			oppText(func(o model.OpportunityBlock) string { return o.Description }),
			func(s *sources) string { return s.preview.Summary },
		),
		ScopeSummary: firstText(s,
			oppText(func(o model.OpportunityBlock) string { return o.ScopeSummary }),
			func(s *sources) string { return s.preview.ScopeSummary },
			func(s *sources) string { return s.raw.ScopeSummary },
		),
		Contacts: model.Contacts{
			Emails: firstList(
				listOf(s.preview.Contacts.Emails, s.preview.Contacts.HasEmails),
				listOf(s.ai.Contacts.Emails, s.ai.Contacts.HasEmails),
				listOf(s.raw.Contacts.Emails, s.raw.Contacts.HasEmails),
			),
			Phones: firstList(
				listOf(s.preview.Contacts.Phones, s.preview.Contacts.HasPhones),
				listOf(s.ai.Contacts.Phones, s.ai.Contacts.HasPhones),
				listOf(s.raw.Contacts.Phones, s.raw.Contacts.HasPhones),
			),
		},
		Tags:             []string{},
		ScopeItems:       []string{},
		Documents:        []model.Document{},
		EnrichedContacts: []model.EnrichedContact{},
	}

	switch {
	case s.rec.Tags != nil:
		meta.Tags = append(meta.Tags, s.rec.Tags...)
	case s.raw.HasTags:
		meta.Tags = append(meta.Tags, s.raw.Tags...)
	}

	if o, ok := s.oppWith(func(o model.OpportunityBlock) bool { return o.HasScopeItems }); ok {
		meta.ScopeItems = append(meta.ScopeItems, o.ScopeItems...)
	}
	if o, ok := s.oppWith(func(o model.OpportunityBlock) bool { return o.HasDocuments }); ok {
		meta.Documents = append(meta.Documents, o.Documents...)
	}
	if o, ok := s.oppWith(func(o model.OpportunityBlock) bool { return o.HasContacts }); ok {
		meta.EnrichedContacts = append(meta.EnrichedContacts, o.Contacts...)
	}
	return meta
}

// SourceURL resolves the record's source page from its payloads, or "".
func SourceURL(rec *model.Record) string {
	return sourceURL(decode(rec))
}

// ScrapedSourceURL resolves the source page from raw_payload alone. Refresh
// is only possible when this is non-empty.
func ScrapedSourceURL(rec *model.Record) string {
	s := decode(rec)
	return firstText(s,
		func(s *sources) string { return s.raw.SourceURL },
		func(s *sources) string { return s.raw.URL },
		func(s *sources) string {
			if s.raw.Opportunity == nil {
				return ""
			}
			if s.raw.Opportunity.SourceURL != "" {
				return s.raw.Opportunity.SourceURL
			}
			return s.raw.Opportunity.URL
		},
	)
}

func sourceURL(s *sources) string {
	return firstText(s,
		func(s *sources) string { return s.preview.SourceURL },
		oppText(func(o model.OpportunityBlock) string { return o.SourceURL }),
		oppText(func(o model.OpportunityBlock) string { return o.URL }),
		func(s *sources) string { return s.raw.SourceURL },
		func(s *sources) string { return s.raw.URL },
	)
}

func riskLevelFromScore(score *float64) string {
	if score == nil {
		return ""
	}
	switch {
	case *score >= highRiskThreshold:
		return "High"
	case *score >= mediumRiskThreshold:
		return "Medium"
	default:
		return "Low"
	}
}

type optionalList struct {
	items   []string
	present bool
}

func listOf(items []string, present bool) optionalList {
	return optionalList{items: items, present: present}
}

// firstList returns a copy of the first present list, including an
// explicitly empty one, or an empty list.
func firstList(lists ...optionalList) []string {
	for _, l := range lists {
		if l.present {
			return append([]string{}, l.items...)
		}
	}
	return []string{}
}
