package model

import "strings"

// SchemaV1 is the only payload schema version currently understood. Payloads
// declaring another schema_version are decoded with v1 rules.
const SchemaV1 = 1

// LocationDetails is a structured {city, state} pair.
type LocationDetails struct {
	City  string `json:"city"`
	State string `json:"state"`
}

// IsZero reports whether both halves are empty.
func (l LocationDetails) IsZero() bool {
	return l.City == "" && l.State == ""
}

// String renders "City, ST", omitting empty halves.
func (l LocationDetails) String() string {
	var parts []string
	for _, s := range []string{l.City, l.State} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// ContactLists holds flat e-mail and phone lists. The Has flags distinguish an
// explicitly empty array from an absent one.
type ContactLists struct {
	Emails    []string
	HasEmails bool
	Phones    []string
	HasPhones bool
}

// Document is a scraped attachment reference. Absent fields are nil.
type Document struct {
	Title *string `json:"title"`
	URL   *string `json:"url"`
	Type  *string `json:"type"`
}

// EnrichedContact is a named contact attached to a scraped opportunity.
type EnrichedContact struct {
	Name         string   `json:"name"`
	Role         string   `json:"role"`
	Organization string   `json:"organization"`
	Email        []string `json:"email"`
	Phone        []string `json:"phone"`
}

// PreviewBlock is ai_metadata.preview.
type PreviewBlock struct {
	Version         int
	Summary         string
	Description     string
	RiskLevel       string
	ExpectedRFPDate string
	Deadline        string
	MarketSector    string
	SourceURL       string
	ScopeSummary    string
	Location        string
	Budget          string
	Probability     *float64
	Contacts        ContactLists
}

// OpportunityBlock is a scraped or AI-extracted opportunity object, found at
// raw_payload.opportunity or ai_metadata.opportunity.
type OpportunityBlock struct {
	Version         int
	Title           string
	Overview        string
	Description     string
	Location        string
	Address         string
	AddressLine1    string
	ScopeSummary    string
	ExpectedRFPDate string
	Deadline        string
	SourceURL       string
	URL             string
	Budget          string

	// LocationCandidates holds location_details then locationDetails, when
	// present as objects.
	LocationCandidates []LocationDetails

	ScopeItems    []string
	HasScopeItems bool
	Documents     []Document
	HasDocuments  bool
	Contacts      []EnrichedContact
	HasContacts   bool
}

// RawBlock is the top level of raw_payload.
type RawBlock struct {
	Version             int
	Summary             string
	Description         string
	DescriptionSections []string
	RiskLevel           string
	MarketSector        string
	Location            string
	SourceURL           string
	URL                 string
	ExpectedRFPDate     string
	Deadline            string
	ScopeSummary        string
	MatchScore          *float64
	Tags                []string
	HasTags             bool
	LocationCandidates  []LocationDetails
	Contacts            ContactLists
	Opportunity         *OpportunityBlock
}

// AIBlock is the top level of ai_metadata.
type AIBlock struct {
	Version     int
	Preview     PreviewBlock
	Opportunity *OpportunityBlock
	Contacts    ContactLists
}

// DecodeAI decodes ai_metadata. Unknown fields are ignored.
func DecodeAI(p Payload) AIBlock {
	ai := AIBlock{
		Version:  schemaVersion(p),
		Preview:  DecodePreview(p.Object("preview")),
		Contacts: decodeContactLists(p.Object("contacts")),
	}
	if opp := p.Object("opportunity"); opp != nil {
		b := DecodeOpportunity(opp)
		ai.Opportunity = &b
	}
	return ai
}

// DecodePreview decodes ai_metadata.preview.
func DecodePreview(p Payload) PreviewBlock {
	b := PreviewBlock{
		Version:         schemaVersion(p),
		Summary:         p.String("summary"),
		Description:     p.String("description"),
		RiskLevel:       p.String("riskLevel"),
		ExpectedRFPDate: p.String("expectedRfpDate"),
		Deadline:        p.String("deadline"),
		MarketSector:    p.String("marketSector"),
		SourceURL:       p.String("sourceUrl"),
		ScopeSummary:    p.String("scopeSummary"),
		Location:        p.String("location"),
		Budget:          p.String("budget"),
		Contacts:        decodeContactLists(p.Object("contacts")),
	}
	if v, ok := p.Number("probability"); ok {
		b.Probability = &v
	}
	return b
}

// DecodeOpportunity decodes a scraped or AI-extracted opportunity object.
func DecodeOpportunity(p Payload) OpportunityBlock {
	b := OpportunityBlock{
		Version:            schemaVersion(p),
		Title:              p.String("title"),
		Overview:           p.String("overview"),
		Description:        p.String("description"),
		Location:           p.String("location"),
		Address:            p.String("address"),
		ScopeSummary:       p.String("scope_summary"),
		ExpectedRFPDate:    p.String("expected_rfp_date"),
		Deadline:           p.String("deadline"),
		SourceURL:          p.String("source_url"),
		URL:                p.String("url"),
		Budget:             p.String("budget"),
		LocationCandidates: decodeLocationCandidates(p),
	}
	for _, key := range []string{"location_details", "locationDetails"} {
		if line := strings.TrimSpace(p.Object(key).String("line1")); line != "" {
			b.AddressLine1 = line
			break
		}
	}

	if items, ok := p.List("scope_items"); ok {
		b.HasScopeItems = true
		b.ScopeItems = []string{}
		for _, it := range items {
			if s, isStr := it.(string); isStr && strings.TrimSpace(s) != "" {
				b.ScopeItems = append(b.ScopeItems, s)
			}
		}
	}

	if docs, ok := p.List("documents"); ok {
		b.HasDocuments = true
		b.Documents = make([]Document, 0, len(docs))
		for _, d := range docs {
			b.Documents = append(b.Documents, decodeDocument(asPayload(d)))
		}
	}

	if contacts, ok := p.List("contacts"); ok {
		b.HasContacts = true
		b.Contacts = make([]EnrichedContact, 0, len(contacts))
		for _, c := range contacts {
			b.Contacts = append(b.Contacts, decodeEnrichedContact(asPayload(c)))
		}
	}
	return b
}

// DecodeRaw decodes raw_payload.
func DecodeRaw(p Payload) RawBlock {
	b := RawBlock{
		Version:            schemaVersion(p),
		Summary:            p.String("summary"),
		Description:        p.String("description"),
		RiskLevel:          p.String("risk_level"),
		MarketSector:       p.String("market_sector"),
		Location:           p.String("location"),
		SourceURL:          p.String("source_url"),
		URL:                p.String("url"),
		ExpectedRFPDate:    p.String("expected_rfp_date"),
		Deadline:           p.String("deadline"),
		ScopeSummary:       p.String("scope_summary"),
		LocationCandidates: decodeLocationCandidates(p),
		Contacts:           decodeContactLists(p.Object("contacts")),
	}
	if sections, ok := p.Strings("descriptionSections"); ok {
		b.DescriptionSections = sections
	}
	if v, ok := p.Number("match_score"); ok {
		b.MatchScore = &v
	}
	if tags, ok := p.Strings("tags"); ok {
		b.Tags = tags
		b.HasTags = true
	}
	if opp := p.Object("opportunity"); opp != nil {
		ob := DecodeOpportunity(opp)
		b.Opportunity = &ob
	}
	return b
}

func schemaVersion(p Payload) int {
	if v, ok := p.Number("schema_version"); ok && v >= SchemaV1 {
		return int(v)
	}
	return SchemaV1
}

func decodeLocationCandidates(p Payload) []LocationDetails {
	var out []LocationDetails
	for _, key := range []string{"location_details", "locationDetails"} {
		obj := p.Object(key)
		if obj == nil {
			continue
		}
		out = append(out, LocationDetails{
			City:  strings.TrimSpace(obj.String("city")),
			State: strings.TrimSpace(obj.String("state")),
		})
	}
	return out
}

func decodeContactLists(p Payload) ContactLists {
	var c ContactLists
	c.Emails, c.HasEmails = p.Strings("emails")
	c.Phones, c.HasPhones = p.Strings("phones")
	return c
}

func decodeDocument(p Payload) Document {
	return Document{
		Title: optString(p, "title"),
		URL:   optString(p, "url"),
		Type:  optString(p, "type"),
	}
}

func decodeEnrichedContact(p Payload) EnrichedContact {
	return EnrichedContact{
		Name:         p.String("name"),
		Role:         p.String("role"),
		Organization: p.String("organization"),
		Email:        p.StringOrList("email"),
		Phone:        p.StringOrList("phone"),
	}
}

func optString(p Payload, key string) *string {
	s, ok := p[key].(string)
	if !ok {
		return nil
	}
	return &s
}
