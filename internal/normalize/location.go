package normalize

import (
	"strings"

	"github.com/sells-group/intake-cli/internal/model"
)

// siteDelimiter separates a location from a site or building qualifier, as in
// "Downtown Site - Austin, TX" or "Austin, TX - Building 4".
const siteDelimiter = " - "

// ResolveLocation extracts a {city, state} pair from a record. A structured
// location_details object with a non-empty city or state wins verbatim;
// otherwise the first non-empty free-text location is parsed.
func ResolveLocation(rec *model.Record) model.LocationDetails {
	return resolveLocation(decode(rec))
}

func resolveLocation(s *sources) model.LocationDetails {
	var structured []model.LocationDetails
	for _, o := range s.opps {
		structured = append(structured, o.LocationCandidates...)
	}
	structured = append(structured, s.raw.LocationCandidates...)

	for _, loc := range structured {
		if !loc.IsZero() {
			return loc
		}
	}

	freeText := firstText(s,
		oppText(func(o model.OpportunityBlock) string { return strings.TrimSpace(o.Location) }),
		func(s *sources) string { return strings.TrimSpace(s.raw.Location) },
		func(s *sources) string { return strings.TrimSpace(s.rec.Location) },
		func(s *sources) string { return strings.TrimSpace(s.preview.Location) },
	)
	return ParseLocation(freeText)
}

// ParseLocation parses free text such as "Austin, TX" or
// "Downtown, Austin, TX". The last comma segment is the state and everything
// before it is the city. A " - " qualifier is discarded; when the text has
// one, the side that looks like "City, ST" is kept, falling back to the
// leading side.
func ParseLocation(text string) model.LocationDetails {
	primary := primaryLocationPart(text)

	var segments []string
	for _, seg := range strings.Split(primary, ",") {
		if seg = strings.TrimSpace(seg); seg != "" {
			segments = append(segments, seg)
		}
	}

	switch len(segments) {
	case 0:
		return model.LocationDetails{}
	case 1:
		return model.LocationDetails{City: segments[0]}
	default:
		last := len(segments) - 1
		return model.LocationDetails{
			City:  strings.Join(segments[:last], ", "),
			State: segments[last],
		}
	}
}

func primaryLocationPart(text string) string {
	parts := strings.Split(text, siteDelimiter)
	if len(parts) == 1 {
		return text
	}
	for _, p := range parts {
		if strings.Contains(p, ",") {
			return p
		}
	}
	return parts[0]
}

// DisplayAddress picks the address line shown in the promotion form:
// scraped location_details.line1, then scraped address, then the resolved
// "City, ST", then the raw location text.
func DisplayAddress(rec *model.Record) string {
	s := decode(rec)
	return displayAddress(s, resolveLocation(s))
}

func displayAddress(s *sources, loc model.LocationDetails) string {
	return firstText(s,
		oppText(func(o model.OpportunityBlock) string { return o.AddressLine1 }),
		oppText(func(o model.OpportunityBlock) string { return strings.TrimSpace(o.Address) }),
		func(*sources) string { return loc.String() },
		func(s *sources) string { return strings.TrimSpace(s.raw.Location) },
	)
}
