package bridge

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jdevries/workbridge/pkg/billing"
	"github.com/jdevries/workbridge/pkg/prompt"
)

// Track runs the reconciliation workflow: merge the Toggl entries of the
// past days into billing units and walk the operator through booking them
// into FreshBooks. A days value below 1 asks the operator.
//
// Units are processed independently: an unexpected failure on one unit is
// logged and the remaining units are still processed; Track then returns a
// non-nil error so the run exits non-zero. Only an operator abort stops
// the loop early.
func (b *Bridge) Track(days int) error {
	b.ui.Splash()
	b.ui.Warn("Tip: you can always enter 'skip' when you want to skip a time entry.")

	if days < 1 {
		var err error
		days, err = b.ui.Days(1)
		if err != nil {
			return abortOr(err)
		}
	}
	b.ui.OK(fmt.Sprintf("Running through the Toggl time entries of the past %d day(s).", days))

	since := startOfDay(time.Now(), days)
	records, err := b.tracker.TimeEntries(since)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		b.ui.Warn("No Toggl entries in this time span!")
		return nil
	}

	units := orderUnits(billing.Merge(records, b.cfg.BookedTag, b.log))
	fbProjects, err := b.invoicer.Projects()
	if err != nil {
		return err
	}

	failed := 0
	for _, unit := range units {
		b.ui.Divider()
		state, err := b.processUnit(unit, fbProjects)
		if err != nil {
			if errors.Is(err, ErrAborted) {
				b.ui.Cross("Stopping time tracking.")
				b.log.Info().Msg("run aborted by operator")
				return ErrAborted
			}
			failed++
			b.log.Error().Err(err).
				Int64("project_id", unit.Key.ProjectID).
				Str("date", unit.Key.Date).
				Str("state", state.String()).
				Msg("unit failed, continuing with the next one")
			b.ui.Cross("Failed to process this entry, see the log.")
		}
	}

	b.ui.Divider()
	b.ui.OK("All done! Verify the booked entries at " + b.invoicer.TimesheetURL())
	if failed > 0 {
		return fmt.Errorf("%d of %d units failed", failed, len(units))
	}
	return nil
}

// processUnit runs one billing unit through the state machine and returns
// the state it ended in.
func (b *Bridge) processUnit(unit *billing.Unit, fbProjects map[string]int64) (State, error) {
	project, err := b.tracker.Project(unit.Key.ProjectID)
	if err != nil {
		return StatePending, err
	}
	hours := billing.QuarterHours(unit.TotalSec)
	description := billing.FormatDescription(project.Name, unit.Description)
	b.ui.ShowUnit(description, unit.Key.Date, hours)

	switch {
	case unit.Key.Booked:
		b.ui.Cross("Skipping this entry because it is already in FreshBooks.")
		return StateSkippedBooked, nil
	case hours < 0.25:
		b.ui.Cross("Skipping this entry because there are less than 0.25 hours spent.")
		return StateSkippedTooShort, nil
	case !unit.Billable:
		b.ui.Cross("Skipping this entry because it is not billable.")
		return StateSkippedNotBillable, nil
	}

	query, err := b.tracker.ClientName(project.ClientID)
	if err != nil {
		return StateResolvingProject, err
	}
	if query == "" {
		// No client on the project: search by the project title instead.
		query = project.Name
	}

	fbName, err := b.resolveProject(query, fbProjects)
	if err != nil {
		if errors.Is(err, prompt.ErrInterrupted) {
			skip, confirmErr := b.ui.Confirm("Interrupted! Skip this entry and continue?")
			if confirmErr == nil && skip {
				b.ui.Cross("Skipping this entry.")
				return StateSkippedByUser, nil
			}
			return StateResolvingProject, ErrAborted
		}
		return StateResolvingProject, err
	}
	if fbName == "" {
		b.ui.Cross("Skipping this entry.")
		b.log.Info().Str("query", query).Msg("no FreshBooks project chosen, entry skipped")
		return StateSkippedByUser, nil
	}

	b.ui.OK("Project: " + fbName)
	if err := b.invoicer.CreateTimeEntry(fbProjects[fbName], hours, billing.Asciify(description), unit.Key.Date); err != nil {
		// Booking failed and the members are untagged, so the next run
		// picks the unit up again.
		return StateResolvingProject, fmt.Errorf("booking failed, entries left untagged: %w", err)
	}
	b.ui.OK("Entry added to FreshBooks.")

	if err := b.tracker.TagEntries(unit.MemberIDs, b.cfg.BookedTag); err != nil {
		// The entry is booked but its members are not marked. Retrying the
		// booking would double-bill, so record the discrepancy and move on.
		b.log.Error().Err(err).
			Ints64("entry_ids", unit.MemberIDs).
			Msg("reconciliation discrepancy: entry booked in FreshBooks but Toggl entries could not be tagged")
		b.ui.Warn("Booked, but tagging the Toggl entries failed; see the log.")
		return StateBooked, nil
	}
	b.ui.OK("Tagged Toggl entries " + b.cfg.BookedTag)
	return StateBooked, nil
}

// orderUnits flattens the merge result into a stable presentation order:
// earliest started unit first. The map itself carries no order.
func orderUnits(units map[billing.Key]*billing.Unit) []*billing.Unit {
	ordered := make([]*billing.Unit, 0, len(units))
	for _, u := range units {
		ordered = append(ordered, u)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Start.Before(ordered[j].Start)
	})
	return ordered
}

func abortOr(err error) error {
	if errors.Is(err, prompt.ErrInterrupted) {
		return ErrAborted
	}
	return err
}
