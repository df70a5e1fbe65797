package salesforce

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// closeDateLayout is the format Salesforce expects for date fields.
const closeDateLayout = "2006-01-02"

// Opportunity is the subset of Opportunity fields promotion writes.
type Opportunity struct {
	Name        string
	AccountID   string
	StageName   string
	CloseDate   time.Time
	Amount      *float64
	Description string
	LeadSource  string
	NextStep    string
}

// Fields renders the opportunity as an sObject body, omitting empty values.
func (o Opportunity) Fields() map[string]any {
	fields := map[string]any{
		"Name":      o.Name,
		"StageName": o.StageName,
		"CloseDate": o.CloseDate.Format(closeDateLayout),
	}
	put := func(k, v string) {
		if v != "" {
			fields[k] = v
		}
	}
	put("AccountId", o.AccountID)
	put("Description", o.Description)
	put("LeadSource", o.LeadSource)
	put("NextStep", o.NextStep)
	if o.Amount != nil {
		fields["Amount"] = *o.Amount
	}
	return fields
}

// CreateOpportunity inserts an Opportunity and returns its Salesforce ID.
func CreateOpportunity(ctx context.Context, c Client, opp Opportunity) (string, error) {
	switch {
	case strings.TrimSpace(opp.Name) == "":
		return "", eris.New("sf: opportunity Name is required")
	case opp.StageName == "":
		return "", eris.New("sf: opportunity StageName is required")
	case opp.CloseDate.IsZero():
		return "", eris.New("sf: opportunity CloseDate is required")
	}
	id, err := c.InsertOne(ctx, "Opportunity", opp.Fields())
	if err != nil {
		return "", eris.Wrap(err, "sf: create opportunity")
	}
	return id, nil
}

// CreateContact creates a Contact linked to the given Account and returns
// the new Salesforce ID.
func CreateContact(ctx context.Context, c Client, accountID string, fields map[string]any) (string, error) {
	if accountID == "" {
		return "", eris.New("sf: account id is required for contact")
	}
	if fields["LastName"] == nil || fields["LastName"] == "" {
		return "", eris.New("sf: contact LastName is required")
	}
	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["AccountId"] = accountID
	id, err := c.InsertOne(ctx, "Contact", body)
	if err != nil {
		return "", eris.Wrapf(err, "sf: create contact for account %s", accountID)
	}
	return id, nil
}

// Account is the subset of Account fields read during promotion.
type Account struct {
	ID   string `json:"Id" salesforce:"Id"`
	Name string `json:"Name" salesforce:"Name"`
}

// FindAccountByID returns the Account with the given ID, or nil when none
// exists.
func FindAccountByID(ctx context.Context, c Client, id string) (*Account, error) {
	soql := fmt.Sprintf("SELECT Id, Name FROM Account WHERE Id = '%s' LIMIT 1", escapeSoql(id))

	var accounts []Account
	if err := c.Query(ctx, soql, &accounts); err != nil {
		return nil, eris.Wrapf(err, "sf: find account by id %s", id)
	}
	if len(accounts) == 0 {
		return nil, nil
	}
	return &accounts[0], nil
}

// SplitName splits a full name into first and last parts for Contact
// records. A single word is treated as the last name.
func SplitName(full string) (first, last string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return "", parts[0]
	}
	return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
}

// escapeSoql escapes single quotes in SOQL string literals to prevent injection.
func escapeSoql(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}
