// Package source re-fetches a record's source page and re-extracts its
// opportunity fields for refresh.
package source

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// maxTextRunes caps the page text handed to extractors.
const maxTextRunes = 20000

// Page is a fetched and parsed source page.
type Page struct {
	URL         string    `json:"url"`
	StatusCode  int       `json:"status_code"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Text        string    `json:"text"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// Fetcher retrieves a page by URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// parsePage extracts the title, description, and visible text of doc.
func parsePage(doc *goquery.Document) (title, description, text string) {
	title = metaContent(doc, `meta[property="og:title"]`)
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	description = metaContent(doc, `meta[name="description"]`)
	if description == "" {
		description = metaContent(doc, `meta[property="og:description"]`)
	}

	doc.Find("script, style, noscript, nav, footer, header").Remove()
	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	text = collapseSpace(body.Text())
	if r := []rune(text); len(r) > maxTextRunes {
		text = string(r[:maxTextRunes])
	}
	return title, description, text
}

func metaContent(doc *goquery.Document, selector string) string {
	v, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(v)
}

// collapseSpace joins whitespace runs into single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
