package bridge

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jdevries/workbridge/pkg/billing"
	"github.com/jdevries/workbridge/pkg/match"
	"github.com/jdevries/workbridge/pkg/toggl"
	"github.com/jdevries/workbridge/pkg/zendesk"
)

// Sync mirrors Zendesk tickets of the past days into Toggl projects, one
// project per ticket, titled "#<id> <subject>". Tickets whose project
// already exists are skipped; tickets are isolated from each other, a
// failing one does not stop the rest.
func (b *Bridge) Sync(days int) error {
	b.ui.OK("Syncing...")
	since := startOfDay(time.Now(), days)

	tickets, err := b.helpdesk.SearchTickets(since)
	if err != nil {
		return err
	}
	if len(tickets) == 0 {
		b.ui.Warn("No tickets in this time span!")
		return nil
	}

	// The project catalog is fetched once; projects created below are
	// appended locally so the duplicate check stays current within the run.
	projects, err := b.tracker.Projects()
	if err != nil {
		return err
	}

	failed := 0
	for _, ticket := range tickets {
		b.ui.Divider()
		if err := b.syncTicket(ticket, &projects); err != nil {
			failed++
			b.log.Error().Err(err).
				Int64("ticket_id", ticket.ID).
				Msg("ticket failed, continuing with the next one")
			b.ui.Cross(fmt.Sprintf("Failed to sync ticket #%d, see the log.", ticket.ID))
		}
	}

	b.ui.Divider()
	b.ui.OK("Done!")
	if failed > 0 {
		return fmt.Errorf("%d of %d tickets failed", failed, len(tickets))
	}
	return nil
}

func (b *Bridge) syncTicket(ticket zendesk.Ticket, projects *[]toggl.Project) error {
	title := billing.FormatTitle(ticket.ID, ticket.Subject)

	if AlreadyMirrored(ticket.ID, *projects) {
		b.ui.Cross(fmt.Sprintf("There is already a Toggl project for Zendesk ticket #%d.", ticket.ID))
		b.log.Info().Int64("ticket_id", ticket.ID).Msg("ticket already mirrored, skipping")
		return nil
	}

	var clientID int64
	if ticket.Organization != "" {
		id, err := b.resolveClient(ticket.Organization)
		if err != nil {
			return err
		}
		clientID = id
	} else {
		b.ui.Warn(fmt.Sprintf("Ticket '%s' has no associated organization!", title))
		b.log.Warn().Int64("ticket_id", ticket.ID).Msg("ticket has no organization")
	}

	b.ui.OK(fmt.Sprintf("Creating project '%s'...", title))
	created, err := b.tracker.CreateProject(title, clientID, false)
	if err != nil {
		return err
	}
	*projects = append(*projects, created)
	return nil
}

// resolveClient maps a ticket organization onto a Toggl client id: an
// exact catalog hit first, then a fuzzy match at high confidence, and as a
// last resort a newly created client.
func (b *Bridge) resolveClient(organization string) (int64, error) {
	clients, err := b.tracker.Clients()
	if err != nil {
		return 0, err
	}
	if id, ok := clients[organization]; ok {
		return id, nil
	}

	names := make([]string, 0, len(clients))
	for name := range clients {
		names = append(names, name)
	}
	sort.Strings(names)

	if name, ok := match.Best(organization, names, clientConfidence); ok {
		b.log.Info().
			Str("organization", organization).
			Str("client", name).
			Msg("fuzzy matched organization to Toggl client")
		return clients[name], nil
	}

	b.log.Info().Str("organization", organization).Msg("no Toggl client matches, creating one")
	return b.tracker.CreateClient(organization)
}

// AlreadyMirrored reports whether some Toggl project was already created
// for the ticket. This is a naming-convention contract, not a foreign
// key: the first whitespace token of a mirrored project's name is the
// ticket id behind a leading "#". The comparison is exact; the id is
// authoritative when present verbatim.
func AlreadyMirrored(ticketID int64, projects []toggl.Project) bool {
	want := strconv.FormatInt(ticketID, 10)
	for _, p := range projects {
		fields := strings.Fields(p.Name)
		if len(fields) == 0 {
			continue
		}
		token, ok := strings.CutPrefix(fields[0], "#")
		if !ok {
			continue
		}
		if token == want {
			return true
		}
	}
	return false
}
