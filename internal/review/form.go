package review

import (
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/sells-group/intake-cli/internal/model"
	"github.com/sells-group/intake-cli/internal/normalize"
)

// PromotionForm is the user-edited promotion form. It starts from a Draft and
// is submitted as the phase 1 update.
type PromotionForm struct {
	Title        string   `json:"title"`
	ClientName   string   `json:"client_name"`
	Location     string   `json:"location"`
	Budget       string   `json:"budget"`
	Deadline     string   `json:"deadline"`
	Tags         []string `json:"tags"`
	Summary      string   `json:"summary"`
	SourceURL    string   `json:"source_url"`
	ContactName  string   `json:"contact_name"`
	ContactEmail string   `json:"contact_email"`
	ContactPhone string   `json:"contact_phone"`
}

// FormFromDraft seeds a form with draft defaults.
func FormFromDraft(d model.Draft) PromotionForm {
	return PromotionForm{
		Title:        d.Title,
		ClientName:   d.ClientName,
		Location:     d.Location,
		Budget:       d.Budget,
		Deadline:     d.ExpectedDate,
		Tags:         append([]string{}, d.Tags...),
		Summary:      d.Description,
		SourceURL:    d.SourceURL,
		ContactName:  d.ContactName,
		ContactEmail: d.ContactEmail,
		ContactPhone: d.ContactPhone,
	}
}

// Update validates the form and converts it to the phase 1 update. Blank
// optional fields are omitted rather than cleared. The returned update always
// sets PromotionPending.
func (f PromotionForm) Update() (model.RecordUpdate, error) {
	var verr ValidationError

	title := strings.TrimSpace(f.Title)
	if title == "" {
		verr.Fields = append(verr.Fields, FieldError{Field: "title", Message: "title is required"})
	}

	phone, err := normalize.FormatPhoneForSubmission(f.ContactPhone)
	if err != nil {
		verr.Fields = append(verr.Fields, FieldError{Field: "contact_phone", Message: err.Error()})
	}

	email := strings.TrimSpace(f.ContactEmail)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			verr.Fields = append(verr.Fields, FieldError{Field: "contact_email", Message: "invalid email address"})
		}
	}

	deadline := strings.TrimSpace(f.Deadline)
	if deadline != "" {
		if _, err := time.Parse(normalize.CalendarDateLayout, deadline); err != nil {
			verr.Fields = append(verr.Fields, FieldError{Field: "deadline", Message: "deadline must be YYYY-MM-DD"})
		}
	}

	sourceURL := strings.TrimSpace(f.SourceURL)
	if sourceURL != "" {
		if u, err := url.Parse(sourceURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			verr.Fields = append(verr.Fields, FieldError{Field: "source_url", Message: "source url must be an http(s) url"})
		}
	}

	if len(verr.Fields) > 0 {
		return model.RecordUpdate{}, &verr
	}

	pending := true
	upd := model.RecordUpdate{
		ProjectTitle:     &title,
		ClientName:       optional(f.ClientName),
		Location:         optional(f.Location),
		BudgetText:       optional(f.Budget),
		Deadline:         optional(deadline),
		AISummary:        optional(f.Summary),
		SourceURL:        optional(sourceURL),
		ContactName:      optional(f.ContactName),
		ContactEmail:     optional(email),
		ContactPhone:     optional(phone),
		PromotionPending: &pending,
	}

	var tags []string
	for _, t := range f.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	if len(tags) > 0 {
		upd.Tags = &tags
	}
	return upd, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
