package review

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/sells-group/intake-cli/internal/model"
)

// StatusAll disables status filtering.
const StatusAll = "all"

// Filter narrows the visible records.
type Filter struct {
	// Query matches case-insensitively as a substring of the title, client
	// name, location or any tag.
	Query string `json:"q"`
	// Status is an exact status, StatusAll or empty.
	Status string `json:"status"`
}

// SortField is a sortable record attribute.
type SortField string

const (
	SortCreatedAt    SortField = "created_at"
	SortMatchScore   SortField = "match_score"
	SortProjectTitle SortField = "project_title"
)

// SortOrder is asc or desc.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Sort orders the visible records.
type Sort struct {
	By    SortField `json:"sort"`
	Order SortOrder `json:"order"`
}

// DefaultSort lists the newest records first.
var DefaultSort = Sort{By: SortCreatedAt, Order: SortDesc}

// ParseSort builds a Sort from user input, falling back to DefaultSort for
// unknown values.
func ParseSort(by, order string) Sort {
	s := DefaultSort
	switch f := SortField(by); f {
	case SortCreatedAt, SortMatchScore, SortProjectTitle:
		s.By = f
	}
	switch o := SortOrder(strings.ToLower(order)); o {
	case SortAsc, SortDesc:
		s.Order = o
	}
	return s
}

// FilterRecords returns the records matching f, preserving input order.
func FilterRecords(records []model.Record, f Filter) []model.Record {
	fold := cases.Fold()
	query := fold.String(strings.TrimSpace(f.Query))
	status := strings.TrimSpace(f.Status)

	out := make([]model.Record, 0, len(records))
	for _, rec := range records {
		if status != "" && status != StatusAll && string(rec.Status) != status {
			continue
		}
		if query != "" && !matchesQuery(fold, rec, query) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func matchesQuery(fold cases.Caser, rec model.Record, query string) bool {
	fields := append([]string{rec.ProjectTitle, rec.ClientName, rec.Location}, rec.Tags...)
	for _, f := range fields {
		if strings.Contains(fold.String(f), query) {
			return true
		}
	}
	return false
}

// SortRecords returns a sorted copy. The sort is stable; desc reverses the
// comparator, so ties keep their input order in both directions.
func SortRecords(records []model.Record, s Sort) []model.Record {
	out := slices.Clone(records)
	fold := cases.Fold()

	var compare func(a, b model.Record) int
	switch s.By {
	case SortMatchScore:
		compare = func(a, b model.Record) int { return cmp.Compare(score(a.MatchScore), score(b.MatchScore)) }
	case SortProjectTitle:
		compare = func(a, b model.Record) int {
			return strings.Compare(fold.String(a.ProjectTitle), fold.String(b.ProjectTitle))
		}
	default:
		compare = func(a, b model.Record) int { return cmp.Compare(a.CreatedAt.UnixMilli(), b.CreatedAt.UnixMilli()) }
	}

	if s.Order == SortDesc {
		asc := compare
		compare = func(a, b model.Record) int { return -asc(a, b) }
	}
	slices.SortStableFunc(out, compare)
	return out
}

func score(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
