package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdevries/workbridge/pkg/toggl"
	"github.com/jdevries/workbridge/pkg/zendesk"
)

func TestAlreadyMirrored(t *testing.T) {
	projects := []toggl.Project{
		{ID: 1, Name: "#4521 Printer issue"},
		{ID: 2, Name: "4521 Printer issue"}, // missing marker, no match
		{ID: 3, Name: "Internal work"},
		{ID: 4, Name: ""},
	}

	assert.True(t, AlreadyMirrored(4521, projects))
	assert.False(t, AlreadyMirrored(452, projects), "id must match the whole token")
	assert.False(t, AlreadyMirrored(9999, projects))
	assert.False(t, AlreadyMirrored(4521, nil))
}

func TestAlreadyMirroredRequiresMarker(t *testing.T) {
	// A project that happens to start with the bare number is not a
	// mirror; only the "#<id>" convention counts.
	projects := []toggl.Project{{ID: 1, Name: "4521 Printer issue"}}
	assert.False(t, AlreadyMirrored(4521, projects))
}

func TestSyncCreatesProjectForTicket(t *testing.T) {
	tracker := newFakeTracker()
	tracker.clients = map[string]int64{"Acme Corp": 7}
	helpdesk := &fakeHelpdesk{tickets: []zendesk.Ticket{
		{ID: 12, Subject: "Printer issue", Organization: "Acme Corp"},
	}}
	b := newTestBridge(&fakeUI{}, helpdesk, tracker, &fakeInvoicer{})

	require.NoError(t, b.Sync(1))

	require.Len(t, tracker.createdProjects, 1)
	created := tracker.createdProjects[0]
	assert.Equal(t, "#12 Printer issue", created.Name)
	assert.Equal(t, int64(7), created.ClientID)
	assert.False(t, created.Private, "mirrored projects are public")
	assert.Empty(t, tracker.createdClients)
}

func TestSyncFuzzyMatchesOrganization(t *testing.T) {
	tracker := newFakeTracker()
	tracker.clients = map[string]int64{"Acme Corporation": 7}
	helpdesk := &fakeHelpdesk{tickets: []zendesk.Ticket{
		{ID: 12, Subject: "Printer issue", Organization: "Acme Corporation."},
	}}
	b := newTestBridge(&fakeUI{}, helpdesk, tracker, &fakeInvoicer{})

	require.NoError(t, b.Sync(1))

	require.Len(t, tracker.createdProjects, 1)
	assert.Equal(t, int64(7), tracker.createdProjects[0].ClientID)
	assert.Empty(t, tracker.createdClients, "a close name must not create a duplicate client")
}

func TestSyncCreatesClientWhenNothingMatches(t *testing.T) {
	tracker := newFakeTracker()
	tracker.clients = map[string]int64{"Globex": 1}
	helpdesk := &fakeHelpdesk{tickets: []zendesk.Ticket{
		{ID: 12, Subject: "Printer issue", Organization: "Acme Corp"},
	}}
	b := newTestBridge(&fakeUI{}, helpdesk, tracker, &fakeInvoicer{})

	require.NoError(t, b.Sync(1))

	assert.Equal(t, []string{"Acme Corp"}, tracker.createdClients)
	require.Len(t, tracker.createdProjects, 1)
	assert.Equal(t, int64(1000), tracker.createdProjects[0].ClientID)
}

func TestSyncSkipsMirroredTicket(t *testing.T) {
	tracker := newFakeTracker()
	tracker.projects = []toggl.Project{{ID: 1, Name: "#12 Printer issue"}}
	helpdesk := &fakeHelpdesk{tickets: []zendesk.Ticket{
		{ID: 12, Subject: "Printer issue", Organization: "Acme Corp"},
	}}
	b := newTestBridge(&fakeUI{}, helpdesk, tracker, &fakeInvoicer{})

	require.NoError(t, b.Sync(1))
	assert.Empty(t, tracker.createdProjects)
}

func TestSyncTicketWithoutOrganization(t *testing.T) {
	tracker := newFakeTracker()
	helpdesk := &fakeHelpdesk{tickets: []zendesk.Ticket{
		{ID: 12, Subject: "Printer issue"},
	}}
	ui := &fakeUI{}
	b := newTestBridge(ui, helpdesk, tracker, &fakeInvoicer{})

	require.NoError(t, b.Sync(1))

	require.Len(t, tracker.createdProjects, 1)
	assert.Zero(t, tracker.createdProjects[0].ClientID)
	assert.Empty(t, tracker.createdClients)
}

func TestSyncDuplicateCheckSeesProjectsCreatedThisRun(t *testing.T) {
	tracker := newFakeTracker()
	helpdesk := &fakeHelpdesk{tickets: []zendesk.Ticket{
		{ID: 12, Subject: "Printer issue"},
		{ID: 12, Subject: "Printer issue again"},
	}}
	b := newTestBridge(&fakeUI{}, helpdesk, tracker, &fakeInvoicer{})

	require.NoError(t, b.Sync(1))
	assert.Len(t, tracker.createdProjects, 1, "the second ticket must see the project created for the first")
}
