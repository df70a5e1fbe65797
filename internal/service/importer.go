package service

import (
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/intake-cli/internal/model"
)

// ParseImport decodes an import file: a JSON array, a YAML list, or an object
// with a "records" list. Records without an id get one on insert.
func ParseImport(data []byte) ([]model.Record, error) {
	var doc any
	if json.Valid(data) {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, eris.Wrap(err, "service: parse import")
		}
	} else if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrap(err, "service: parse import")
	}

	var items []any
	switch v := doc.(type) {
	case []any:
		items = v
	case map[string]any:
		list, ok := v["records"].([]any)
		if !ok {
			return nil, eris.New("service: parse import: expected a list or an object with records")
		}
		items = list
	case nil:
		return []model.Record{}, nil
	default:
		return nil, eris.New("service: parse import: expected a list or an object with records")
	}

	recs := make([]model.Record, 0, len(items))
	for i, it := range items {
		p, err := toPayload(it)
		if err != nil {
			return nil, eris.Wrapf(err, "service: parse import: record %d", i)
		}
		recs = append(recs, model.RecordFromPayload(p))
	}
	return recs, nil
}

// toPayload normalizes a decoded YAML value to JSON types so payloads round
// trip through the store unchanged.
func toPayload(v any) (model.Payload, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, eris.New("not an object")
	}
	data, err := json.Marshal(jsonSafe(m))
	if err != nil {
		return nil, err
	}
	var p model.Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return p, nil
}

func jsonSafe(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = jsonSafe(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = jsonSafe(val)
		}
		return out
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	}
	return v
}
