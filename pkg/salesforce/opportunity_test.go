package salesforce

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOpportunity() Opportunity {
	amount := 250000.0
	return Opportunity{
		Name:        "Library Renovation",
		AccountID:   "001ACCT",
		StageName:   "Prospecting",
		CloseDate:   time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Amount:      &amount,
		Description: "Renovate the central library.",
	}
}

func TestOpportunity_Fields(t *testing.T) {
	assert.Equal(t, map[string]any{
		"Name":        "Library Renovation",
		"AccountId":   "001ACCT",
		"StageName":   "Prospecting",
		"CloseDate":   "2026-03-15",
		"Amount":      250000.0,
		"Description": "Renovate the central library.",
	}, testOpportunity().Fields())

	bare := Opportunity{Name: "X", StageName: "Prospecting", CloseDate: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, map[string]any{"Name": "X", "StageName": "Prospecting", "CloseDate": "2026-01-02"}, bare.Fields())
}

func TestCreateOpportunity(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var capturedObject string
		var capturedFields map[string]any
		mc := &mockClient{
			insertOneFn: func(_ context.Context, sObject string, record map[string]any) (string, error) {
				capturedObject = sObject
				capturedFields = record
				return "006NEW", nil
			},
		}

		id, err := CreateOpportunity(context.Background(), mc, testOpportunity())
		require.NoError(t, err)
		assert.Equal(t, "006NEW", id)
		assert.Equal(t, "Opportunity", capturedObject)
		assert.Equal(t, "2026-03-15", capturedFields["CloseDate"])
	})

	t.Run("required fields", func(t *testing.T) {
		for name, mutate := range map[string]func(*Opportunity){
			"Name is required":      func(o *Opportunity) { o.Name = "  " },
			"StageName is required": func(o *Opportunity) { o.StageName = "" },
			"CloseDate is required": func(o *Opportunity) { o.CloseDate = time.Time{} },
		} {
			opp := testOpportunity()
			mutate(&opp)
			_, err := CreateOpportunity(context.Background(), &mockClient{}, opp)
			require.Error(t, err)
			assert.Contains(t, err.Error(), name)
		}
	})

	t.Run("propagates error", func(t *testing.T) {
		mc := &mockClient{
			insertOneFn: func(context.Context, string, map[string]any) (string, error) {
				return "", errors.New("api error")
			},
		}
		_, err := CreateOpportunity(context.Background(), mc, testOpportunity())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sf: create opportunity")
	})
}

func TestCreateContact(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var captured map[string]any
		mc := &mockClient{
			insertOneFn: func(_ context.Context, sObject string, record map[string]any) (string, error) {
				assert.Equal(t, "Contact", sObject)
				captured = record
				return "003NEW", nil
			},
		}
		fields := map[string]any{"LastName": "Doe", "FirstName": "Jane"}
		id, err := CreateContact(context.Background(), mc, "001ACCT", fields)
		require.NoError(t, err)
		assert.Equal(t, "003NEW", id)
		assert.Equal(t, "001ACCT", captured["AccountId"])
		assert.NotContains(t, fields, "AccountId", "caller map is not mutated")
	})

	t.Run("validation", func(t *testing.T) {
		_, err := CreateContact(context.Background(), &mockClient{}, "", map[string]any{"LastName": "Doe"})
		assert.ErrorContains(t, err, "account id is required")
		_, err = CreateContact(context.Background(), &mockClient{}, "001ACCT", map[string]any{"FirstName": "Jane"})
		assert.ErrorContains(t, err, "LastName is required")
	})
}

func TestFindAccountByID(t *testing.T) {
	var soql string
	mc := &mockClient{
		queryFn: func(_ context.Context, q string, out any) error {
			soql = q
			*(out.(*[]Account)) = []Account{{ID: "001ACCT", Name: "City of Austin"}}
			return nil
		},
	}
	acct, err := FindAccountByID(context.Background(), mc, "001'ACCT")
	require.NoError(t, err)
	require.NotNil(t, acct)
	assert.Equal(t, "City of Austin", acct.Name)
	assert.Contains(t, soql, `Id = '001\'ACCT'`)

	none, err := FindAccountByID(context.Background(), &mockClient{}, "001MISSING")
	require.NoError(t, err)
	assert.Nil(t, none)

	failing := &mockClient{queryFn: func(context.Context, string, any) error { return errors.New("down") }}
	_, err = FindAccountByID(context.Background(), failing, "001ACCT")
	assert.ErrorContains(t, err, "find account by id")
}

func TestSplitName(t *testing.T) {
	tests := []struct{ in, first, last string }{
		{"", "", ""},
		{"Doe", "", "Doe"},
		{"Jane Doe", "Jane", "Doe"},
		{"  Mary  Ann   Smith ", "Mary Ann", "Smith"},
	}
	for _, tt := range tests {
		first, last := SplitName(tt.in)
		assert.Equal(t, tt.first, first, tt.in)
		assert.Equal(t, tt.last, last, tt.in)
	}
}
