// Package normalize reconciles the heterogeneous payloads attached to an
// ingestion record into canonical preview, location and draft views. Every
// function here is pure and total: malformed input degrades to empty values.
package normalize

import (
	"github.com/sells-group/intake-cli/internal/model"
)

// sources is the decoded view of every payload attached to a record. It is
// rebuilt on each call so derived values never outlive a record update.
type sources struct {
	rec     *model.Record
	ai      model.AIBlock
	raw     model.RawBlock
	preview model.PreviewBlock

	// opps lists the scraped opportunity (raw_payload.opportunity) first,
	// then the AI-extracted one (ai_metadata.opportunity).
	opps []model.OpportunityBlock
}

func decode(rec *model.Record) *sources {
	if rec == nil {
		rec = &model.Record{}
	}
	s := &sources{
		rec: rec,
		ai:  model.DecodeAI(rec.AIMetadata),
		raw: model.DecodeRaw(rec.RawPayload),
	}
	s.preview = s.ai.Preview
	if s.raw.Opportunity != nil {
		s.opps = append(s.opps, *s.raw.Opportunity)
	}
	if s.ai.Opportunity != nil {
		s.opps = append(s.opps, *s.ai.Opportunity)
	}
	return s
}

// text is one link in a string precedence chain.
type text func(s *sources) string

// firstText walks the chain and returns the first non-empty value.
func firstText(s *sources, chain ...text) string {
	for _, get := range chain {
		if v := get(s); v != "" {
			return v
		}
	}
	return ""
}

// number is one link in a numeric precedence chain.
type number func(s *sources) *float64

func firstNumber(s *sources, chain ...number) *float64 {
	for _, get := range chain {
		if v := get(s); v != nil {
			out := *v
			return &out
		}
	}
	return nil
}

// oppText reads a string field from the first opportunity object that has it.
func oppText(field func(o model.OpportunityBlock) string) text {
	return func(s *sources) string {
		for _, o := range s.opps {
			if v := field(o); v != "" {
				return v
			}
		}
		return ""
	}
}

// oppWith returns the first opportunity object for which has reports true.
func (s *sources) oppWith(has func(o model.OpportunityBlock) bool) (model.OpportunityBlock, bool) {
	for _, o := range s.opps {
		if has(o) {
			return o, true
		}
	}
	return model.OpportunityBlock{}, false
}
