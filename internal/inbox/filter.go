package inbox

import (
	"strings"

	"github.com/nhle/campus-inbox/internal/model"
)

// OriginFilter restricts a listing to one origin.
type OriginFilter string

const (
	FilterAll    OriginFilter = "ALL"
	FilterGlobal OriginFilter = "GLOBAL"
	FilterEvent  OriginFilter = "EVENT"
)

// Next cycles ALL → GLOBAL → EVENT → ALL.
func (f OriginFilter) Next() OriginFilter {
	switch f {
	case FilterAll, "":
		return FilterGlobal
	case FilterGlobal:
		return FilterEvent
	default:
		return FilterAll
	}
}

// Filter narrows a delivery list by origin and a free-text query.
type Filter struct {
	Origin OriginFilter
	Query  string
}

// Active reports whether the filter hides anything.
func (f Filter) Active() bool {
	return (f.Origin != "" && f.Origin != FilterAll) || strings.TrimSpace(f.Query) != ""
}

// Matches reports whether d passes the filter. The query matches title or
// message case-insensitively.
func (f Filter) Matches(d model.Delivery) bool {
	if f.Origin != "" && f.Origin != FilterAll && string(d.Origin) != string(f.Origin) {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(d.Title), q) ||
		strings.Contains(strings.ToLower(d.Message), q)
}

// Apply returns the deliveries passing the filter, preserving order.
func (f Filter) Apply(items []model.Delivery) []model.Delivery {
	out := make([]model.Delivery, 0, len(items))
	for _, d := range items {
		if f.Matches(d) {
			out = append(out, d)
		}
	}
	return out
}
