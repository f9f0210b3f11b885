package billing

import (
	"strings"

	"github.com/rs/zerolog"
)

const descriptionSeparator = " / "

// Merge groups records by (project, date, booked status) and collapses each
// group into a single Unit. Records without a project reference cannot be
// billed to anything; they are logged and dropped, the run continues.
//
// Total duration is independent of input order. The merged description is
// not: descriptions are appended in first-seen order, and a description is
// only appended when it is not already a substring (case-sensitive) of the
// accumulated text.
//
// A unit stays billable only while every member is billable. Map iteration
// order is unspecified; callers that present units must order them
// themselves.
func Merge(records []Record, markerTag string, log zerolog.Logger) map[Key]*Unit {
	units := make(map[Key]*Unit)
	for _, r := range records {
		if r.ProjectID == 0 {
			log.Warn().
				Int64("entry_id", r.ID).
				Str("description", r.Description).
				Msg("time entry has no associated project, dropping it")
			continue
		}
		key := Key{
			ProjectID: r.ProjectID,
			Date:      r.Start.Format("2006-01-02"),
			Booked:    r.Booked(markerTag),
		}
		u, ok := units[key]
		if !ok {
			units[key] = &Unit{
				Key:         key,
				TotalSec:    r.DurationSec,
				Description: r.Description,
				MemberIDs:   []int64{r.ID},
				Billable:    r.Billable,
				Start:       r.Start,
			}
			continue
		}
		u.TotalSec += r.DurationSec
		u.MemberIDs = append(u.MemberIDs, r.ID)
		u.Billable = u.Billable && r.Billable
		if r.Start.Before(u.Start) {
			u.Start = r.Start
		}
		appendDescription(u, r.Description)
	}
	return units
}

func appendDescription(u *Unit, desc string) {
	if u.Description == "" {
		u.Description = desc
		return
	}
	trimmed := strings.TrimSpace(desc)
	if trimmed == "" || strings.Contains(u.Description, trimmed) {
		return
	}
	u.Description += descriptionSeparator + desc
}
