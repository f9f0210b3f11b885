// Package billing turns raw time-tracking records into billable units:
// records that share a project, calendar date and booked status collapse
// into one invoice line with a summed duration and a merged description.
package billing

import (
	"slices"
	"time"
)

// Record is a raw time-tracking entry as reported by Toggl. The core never
// mutates it.
type Record struct {
	ID          int64
	ProjectID   int64 // 0 means the entry has no project reference
	Start       time.Time
	DurationSec int64
	Description string
	Billable    bool
	Tags        []string
}

// Booked reports whether the record carries the reserved marker tag, i.e.
// it was already transferred to the invoicing side on a previous run.
func (r Record) Booked(markerTag string) bool {
	return slices.Contains(r.Tags, markerTag)
}

// Key identifies one billable unit within a run.
type Key struct {
	ProjectID int64
	Date      string // calendar date of the entry start, YYYY-MM-DD
	Booked    bool
}

// Unit is a merged group of records: one invoice line.
type Unit struct {
	Key         Key
	TotalSec    int64
	Description string
	MemberIDs   []int64
	Billable    bool
	Start       time.Time // earliest member start, used for stable display order
}
