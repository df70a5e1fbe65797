package model

// Contacts is the flat contact projection of a preview.
type Contacts struct {
	Emails []string `json:"emails"`
	Phones []string `json:"phones"`
}

// PreviewMeta is the canonical read view reconciling ai_metadata.preview,
// the scraped/AI opportunity objects and raw_payload. It is derived on demand
// and never persisted. Slices are always non-nil.
type PreviewMeta struct {
	Summary          string            `json:"summary"`
	Description      string            `json:"description"`
	Probability      *float64          `json:"probability"`
	RiskLevel        string            `json:"riskLevel"`
	ExpectedRFPDate  string            `json:"expectedRfpDate"`
	Deadline         string            `json:"deadline"`
	MarketSector     string            `json:"marketSector"`
	Contacts         Contacts          `json:"contacts"`
	Tags             []string          `json:"tags"`
	SourceURL        string            `json:"sourceUrl"`
	Overview         string            `json:"overview"`
	ScopeSummary     string            `json:"scopeSummary"`
	ScopeItems       []string          `json:"scopeItems"`
	Documents        []Document        `json:"documents"`
	EnrichedContacts []EnrichedContact `json:"enrichedContacts"`
}

// Draft holds the defaults offered in the promotion form. Every field has a
// usable zero value; nothing is null except an unknown probability.
type Draft struct {
	Title        string   `json:"title"`
	ClientName   string   `json:"client_name"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	Address      string   `json:"address"`
	Location     string   `json:"location"`
	Budget       string   `json:"budget"`
	ExpectedDate string   `json:"expected_date"`
	Tag          string   `json:"tag"`
	Tags         []string `json:"tags"`
	Description  string   `json:"description"`
	Summary      string   `json:"summary"`
	SourceURL    string   `json:"source_url"`
	Probability  *float64 `json:"probability,omitempty"`
	RiskLevel    string   `json:"risk_level"`
	MarketSector string   `json:"market_sector"`
	ContactName  string   `json:"contact_name"`
	ContactEmail string   `json:"contact_email"`
	ContactPhone string   `json:"contact_phone"`
}
