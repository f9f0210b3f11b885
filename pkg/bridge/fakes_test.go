package bridge

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jdevries/workbridge/pkg/billing"
	"github.com/jdevries/workbridge/pkg/config"
	"github.com/jdevries/workbridge/pkg/match"
	"github.com/jdevries/workbridge/pkg/prompt"
	"github.com/jdevries/workbridge/pkg/toggl"
	"github.com/jdevries/workbridge/pkg/zendesk"
)

const markerTag = "\U0001F343"

type fakeHelpdesk struct {
	tickets []zendesk.Ticket
	err     error
}

func (f *fakeHelpdesk) SearchTickets(time.Time) ([]zendesk.Ticket, error) {
	return f.tickets, f.err
}

type fakeTracker struct {
	clients         map[string]int64
	createdClients  []string
	projects        []toggl.Project
	createdProjects []toggl.Project
	records         []billing.Record
	tagged          map[string][]int64
	tagErr          error
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{
		clients: map[string]int64{},
		tagged:  map[string][]int64{},
	}
}

func (f *fakeTracker) Clients() (map[string]int64, error) {
	return f.clients, nil
}

func (f *fakeTracker) ClientName(id int64) (string, error) {
	for name, clientID := range f.clients {
		if clientID == id {
			return name, nil
		}
	}
	return "", nil
}

func (f *fakeTracker) CreateClient(name string) (int64, error) {
	id := int64(1000 + len(f.createdClients))
	f.createdClients = append(f.createdClients, name)
	f.clients[name] = id // the real client refetches its catalog on create
	return id, nil
}

func (f *fakeTracker) Projects() ([]toggl.Project, error) {
	return f.projects, nil
}

func (f *fakeTracker) Project(id int64) (toggl.Project, error) {
	for _, p := range f.projects {
		if p.ID == id {
			return p, nil
		}
	}
	return toggl.Project{}, fmt.Errorf("no such project %d", id)
}

func (f *fakeTracker) CreateProject(title string, clientID int64, private bool) (toggl.Project, error) {
	p := toggl.Project{
		ID:       int64(2000 + len(f.createdProjects)),
		Name:     title,
		ClientID: clientID,
		Private:  private,
	}
	f.createdProjects = append(f.createdProjects, p)
	return p, nil
}

func (f *fakeTracker) TimeEntries(time.Time) ([]billing.Record, error) {
	return f.records, nil
}

func (f *fakeTracker) TagEntries(ids []int64, tag string) error {
	if f.tagErr != nil {
		return f.tagErr
	}
	f.tagged[tag] = append(f.tagged[tag], ids...)
	return nil
}

type bookedEntry struct {
	projectID   int64
	hours       float64
	description string
	date        string
}

type fakeInvoicer struct {
	projects  map[string]int64
	entries   []bookedEntry
	createErr error
}

func (f *fakeInvoicer) Projects() (map[string]int64, error) {
	return f.projects, nil
}

func (f *fakeInvoicer) CreateTimeEntry(projectID int64, hours float64, description, date string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.entries = append(f.entries, bookedEntry{projectID, hours, description, date})
	return nil
}

func (f *fakeInvoicer) TimesheetURL() string {
	return "https://example.freshbooks.com/timesheet"
}

// fakeUI is a scripted terminal: confirmations and disambiguation answers
// are popped from queues, display calls are recorded.
type fakeUI struct {
	confirmMatch    bool
	confirmMatchErr error
	confirmAnswers  []bool
	answers         []prompt.Answer
	queries         []string
	days            int
	messages        []string
}

func (f *fakeUI) Splash()  {}
func (f *fakeUI) Divider() {}

func (f *fakeUI) ShowUnit(description, date string, hours float64) {
	f.messages = append(f.messages, fmt.Sprintf("unit %s %s %g", description, date, hours))
}

func (f *fakeUI) OK(msg string)    { f.messages = append(f.messages, "ok: "+msg) }
func (f *fakeUI) Cross(msg string) { f.messages = append(f.messages, "cross: "+msg) }
func (f *fakeUI) Warn(msg string)  { f.messages = append(f.messages, "warn: "+msg) }

func (f *fakeUI) ConfirmMatch(query, candidate string) (bool, error) {
	if f.confirmMatchErr != nil {
		return false, f.confirmMatchErr
	}
	return f.confirmMatch, nil
}

func (f *fakeUI) Disambiguate(query string, results []match.Result) (prompt.Answer, error) {
	if len(f.answers) == 0 {
		return prompt.Answer{Skip: true}, nil
	}
	answer := f.answers[0]
	f.answers = f.answers[1:]
	return answer, nil
}

func (f *fakeUI) AskQuery() (string, error) {
	if len(f.queries) == 0 {
		return "", nil
	}
	q := f.queries[0]
	f.queries = f.queries[1:]
	return q, nil
}

func (f *fakeUI) Confirm(message string) (bool, error) {
	if len(f.confirmAnswers) == 0 {
		return false, nil
	}
	answer := f.confirmAnswers[0]
	f.confirmAnswers = f.confirmAnswers[1:]
	return answer, nil
}

func (f *fakeUI) Days(defaultDays int) (int, error) {
	if f.days == 0 {
		return defaultDays, nil
	}
	return f.days, nil
}

func newTestBridge(ui prompt.UI, helpdesk Helpdesk, tracker TimeTracker, invoicer Invoicer) *Bridge {
	cfg := &config.Config{BookedTag: markerTag, FreshbooksTaskID: 2}
	return New(cfg, zerolog.Nop(), ui, helpdesk, tracker, invoicer)
}
