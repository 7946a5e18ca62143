// Package registration combines the two registration listings shown on
// the dashboard.
package registration

import (
	"time"

	"github.com/nhle/campus-inbox/internal/model"
)

// Merge unions legacy and current registrations keyed by event id.
// Entries without an event id are dropped. When both lists name the same
// event the legacy entry wins. Order follows first appearance: legacy
// events first, then events only present in current.
func Merge(legacy, current []model.Registration) []model.Registration {
	index := make(map[int64]int)
	var out []model.Registration

	for _, r := range legacy {
		if r.EventID == nil {
			continue
		}
		if i, ok := index[*r.EventID]; ok {
			// A repeated legacy entry replaces the value in place.
			out[i] = r
			continue
		}
		index[*r.EventID] = len(out)
		out = append(out, r)
	}

	for _, r := range current {
		if r.EventID == nil {
			continue
		}
		if _, ok := index[*r.EventID]; ok {
			continue
		}
		index[*r.EventID] = len(out)
		out = append(out, r)
	}

	return out
}

// Split partitions registrations into upcoming ones (a start time and an
// end time not yet passed) and past ones (an end time before now).
// Registrations matching neither, such as those missing an end time, are
// omitted from both.
func Split(regs []model.Registration, now time.Time) (upcoming, past []model.Registration) {
	for _, r := range regs {
		ended := !r.EndTime.IsZero() && r.EndTime.Before(now)
		switch {
		case ended:
			past = append(past, r)
		case !r.StartTime.IsZero() && !r.EndTime.IsZero():
			upcoming = append(upcoming, r)
		}
	}
	return upcoming, past
}
