package source

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/intake-cli/internal/model"
	"github.com/sells-group/intake-cli/pkg/anthropic"
)

// Extractor turns a fetched page into an opportunity object using the keys
// understood by model.DecodeOpportunity.
type Extractor interface {
	Extract(ctx context.Context, page *Page) (model.Payload, error)
}

// MetaExtractor builds an opportunity from page metadata alone.
type MetaExtractor struct{}

// Extract implements Extractor.
func (MetaExtractor) Extract(_ context.Context, page *Page) (model.Payload, error) {
	opp := model.Payload{"source_url": page.URL}
	if page.Title != "" {
		opp["title"] = page.Title
	}
	if page.Description != "" {
		opp["overview"] = page.Description
	}
	if page.Text != "" {
		opp["description"] = truncateRunes(page.Text, 4000)
	}
	return opp, nil
}

const defaultAIModel = "claude-haiku-4-5-20251001"

const extractSystemPrompt = `You extract public-sector and commercial construction opportunities from web pages.
Reply with a single JSON object and nothing else. Use only these keys and omit any you cannot fill:
title, overview, description, location, address, scope_summary, expected_rfp_date, deadline, budget,
location_details {city, state, line1}, scope_items [string], documents [{title, url, type}],
contacts [{name, role, organization, email, phone}].
Dates use YYYY-MM-DD when the page states a calendar date.`

// AIExtractor extracts an opportunity with a Claude model.
type AIExtractor struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAIExtractor creates an AIExtractor. Empty model and zero maxTokens use
// defaults.
func NewAIExtractor(client anthropic.Client, model string, maxTokens int64) *AIExtractor {
	if model == "" {
		model = defaultAIModel
	}
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	return &AIExtractor{client: client, model: model, maxTokens: maxTokens}
}

// Extract implements Extractor.
func (e *AIExtractor) Extract(ctx context.Context, page *Page) (model.Payload, error) {
	prompt := fmt.Sprintf("URL: %s\nTitle: %s\nDescription: %s\n\nPage text:\n%s",
		page.URL, page.Title, page.Description, page.Text)

	resp, err := e.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     e.model,
		MaxTokens: e.maxTokens,
		System: []anthropic.SystemBlock{{
			Text:         extractSystemPrompt,
			CacheControl: &anthropic.CacheControl{TTL: "5m"},
		}},
		Messages: []anthropic.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, eris.Wrap(err, "source: ai extract")
	}
	resp.Usage.LogCost(e.model, "refresh")

	var opp model.Payload
	if err := json.Unmarshal([]byte(cleanJSON(resp.Text())), &opp); err != nil {
		zap.L().Warn("ai extraction returned invalid json",
			zap.String("url", page.URL),
			zap.String("stop_reason", resp.StopReason),
		)
		return nil, eris.Wrap(err, "source: decode ai extraction")
	}
	if opp == nil {
		opp = model.Payload{}
	}
	opp["source_url"] = page.URL
	return opp, nil
}

// cleanJSON extracts a JSON object from text that may be wrapped in
// markdown code fences or prose.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
