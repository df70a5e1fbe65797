package source

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/intake-cli/internal/model"
	"github.com/sells-group/intake-cli/internal/normalize"
)

// ErrNoSourceURL is returned when a record's raw_payload names no page.
var ErrNoSourceURL = errors.New("source: record has no scraped source url")

// Extraction is the replacement payload pair produced by a refresh.
type Extraction struct {
	AIMetadata model.Payload
	RawPayload model.Payload
}

// Refresher re-fetches a record's source page and re-extracts it.
type Refresher struct {
	fetcher   Fetcher
	extractor Extractor
	now       func() time.Time
}

// NewRefresher creates a Refresher. A nil extractor falls back to
// MetaExtractor.
func NewRefresher(f Fetcher, e Extractor) *Refresher {
	if e == nil {
		e = MetaExtractor{}
	}
	return &Refresher{fetcher: f, extractor: e, now: time.Now}
}

// Refresh fetches the record's scraped source page and returns new payloads.
// The extracted opportunity replaces raw_payload.opportunity and
// ai_metadata.opportunity; every other key is kept.
func (r *Refresher) Refresh(ctx context.Context, rec *model.Record) (*Extraction, error) {
	url := normalize.ScrapedSourceURL(rec)
	if url == "" {
		return nil, eris.Wrapf(ErrNoSourceURL, "source: refresh %s", rec.ID)
	}

	log := zap.L().With(zap.String("record_id", rec.ID), zap.String("url", url))

	page, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		log.Warn("refresh fetch failed", zap.Error(err))
		return nil, eris.Wrapf(err, "source: refresh %s", rec.ID)
	}
	opp, err := r.extractor.Extract(ctx, page)
	if err != nil {
		log.Warn("refresh extraction failed", zap.Error(err))
		return nil, eris.Wrapf(err, "source: refresh %s", rec.ID)
	}

	refreshedAt := r.now().UTC().Format(time.RFC3339)
	stamp := model.Payload{"refreshed_at": refreshedAt}

	raw := rec.RawPayload.Merge(stamp)
	raw["opportunity"] = opp.Clone()
	ai := rec.AIMetadata.Merge(stamp)
	ai["opportunity"] = opp.Clone()

	log.Info("record refreshed", zap.Int("text_len", len(page.Text)))
	return &Extraction{AIMetadata: ai, RawPayload: raw}, nil
}
