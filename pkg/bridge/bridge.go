// Package bridge holds the two workflows that tie the services together:
// Sync mirrors Zendesk tickets into Toggl projects, Track reconciles Toggl
// time entries into FreshBooks invoice lines. The bridge only talks to the
// services through the interfaces below, which keeps the workflows
// testable with fakes.
package bridge

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/jdevries/workbridge/pkg/billing"
	"github.com/jdevries/workbridge/pkg/config"
	"github.com/jdevries/workbridge/pkg/prompt"
	"github.com/jdevries/workbridge/pkg/toggl"
	"github.com/jdevries/workbridge/pkg/zendesk"
)

const (
	// clientConfidence is the minimum score for silently mapping a ticket
	// organization onto an existing Toggl client. Below it a new client is
	// created, so the bar is high.
	clientConfidence = 90

	// projectConfidence is the minimum score for proposing a FreshBooks
	// project without listing alternatives. The operator confirms the
	// proposal either way, so the bar is lower.
	projectConfidence = 50

	// topCandidates is how many candidates a disambiguation prompt shows.
	topCandidates = 10

	// maxSearchRounds bounds the refine-and-retry loop of an interactive
	// project search.
	maxSearchRounds = 8
)

// ErrAborted terminates the run at the operator's request.
var ErrAborted = errors.New("run aborted by operator")

// Helpdesk is the ticket source (Zendesk).
type Helpdesk interface {
	SearchTickets(since time.Time) ([]zendesk.Ticket, error)
}

// TimeTracker is the time-tracking service (Toggl).
type TimeTracker interface {
	Clients() (map[string]int64, error)
	ClientName(id int64) (string, error)
	CreateClient(name string) (int64, error)
	Projects() ([]toggl.Project, error)
	Project(id int64) (toggl.Project, error)
	CreateProject(title string, clientID int64, private bool) (toggl.Project, error)
	TimeEntries(since time.Time) ([]billing.Record, error)
	TagEntries(ids []int64, tag string) error
}

// Invoicer is the invoicing service (FreshBooks).
type Invoicer interface {
	Projects() (map[string]int64, error)
	CreateTimeEntry(projectID int64, hours float64, description, date string) error
	TimesheetURL() string
}

// Bridge drives both workflows. Construct it once per run.
type Bridge struct {
	cfg      *config.Config
	log      zerolog.Logger
	ui       prompt.UI
	helpdesk Helpdesk
	tracker  TimeTracker
	invoicer Invoicer
}

func New(cfg *config.Config, log zerolog.Logger, ui prompt.UI, helpdesk Helpdesk, tracker TimeTracker, invoicer Invoicer) *Bridge {
	return &Bridge{
		cfg:      cfg,
		log:      log,
		ui:       ui,
		helpdesk: helpdesk,
		tracker:  tracker,
		invoicer: invoicer,
	}
}

// startOfDay returns midnight (local time) of the day daysBack-1 days ago,
// so daysBack=1 means the start of today.
func startOfDay(now time.Time, daysBack int) time.Time {
	if daysBack < 1 {
		daysBack = 1
	}
	day := now.AddDate(0, 0, -(daysBack - 1))
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
}
