package toggl

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdevries/workbridge/pkg/config"
	"github.com/jdevries/workbridge/pkg/remote"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := NewClient(&config.Config{TogglToken: "secret", TogglWorkspaceID: 1}, zerolog.Nop())
	c.BaseURL = server.URL
	return c
}

func TestClientsAreCachedForTheRun(t *testing.T) {
	calls := 0
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v8/clients", r.URL.Path)
		calls++
		json.NewEncoder(w).Encode([]togglClient{{ID: 7, Name: "Acme Corp"}})
	}))

	first, err := c.Clients()
	require.NoError(t, err)
	second, err := c.Clients()
	require.NoError(t, err)

	assert.Equal(t, map[string]int64{"Acme Corp": 7}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls, "the catalog is fetched once per run")
}

func TestCreateClientRefetchesCatalog(t *testing.T) {
	var created bool
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v8/clients", r.URL.Path)
		if r.Method == http.MethodPost {
			var body struct {
				Client struct {
					Name string `json:"name"`
					WID  int64  `json:"wid"`
				} `json:"client"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "New Corp", body.Client.Name)
			assert.Equal(t, int64(1), body.Client.WID)
			created = true
			json.NewEncoder(w).Encode(map[string]any{"data": togglClient{ID: 9, Name: "New Corp"}})
			return
		}
		clients := []togglClient{{ID: 7, Name: "Acme Corp"}}
		if created {
			clients = append(clients, togglClient{ID: 9, Name: "New Corp"})
		}
		json.NewEncoder(w).Encode(clients)
	}))

	_, err := c.Clients()
	require.NoError(t, err)

	id, err := c.CreateClient("New Corp")
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)

	// The cache must have been invalidated by the write.
	clients, err := c.Clients()
	require.NoError(t, err)
	assert.Contains(t, clients, "New Corp")
}

func TestClientName(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]togglClient{{ID: 7, Name: "Acme Corp"}})
	}))

	name, err := c.ClientName(7)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", name)

	name, err = c.ClientName(99)
	require.NoError(t, err)
	assert.Empty(t, name)

	name, err = c.ClientName(0)
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestTimeEntries(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v8/time_entries", r.URL.Path)
		assert.NotEmpty(t, r.URL.Query().Get("start_date"))
		json.NewEncoder(w).Encode([]timeEntry{
			{
				ID:          1,
				ProjectID:   42,
				Start:       "2026-08-31T09:00:00+02:00",
				DurationSec: 1800,
				Description: "call",
				Billable:    true,
				Tags:        []string{"\U0001F343"},
			},
		})
	}))

	records, err := c.TimeEntries(time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, int64(1), r.ID)
	assert.Equal(t, int64(42), r.ProjectID)
	assert.Equal(t, int64(1800), r.DurationSec)
	assert.Equal(t, "call", r.Description)
	assert.True(t, r.Billable)
	assert.Equal(t, []string{"\U0001F343"}, r.Tags)
	assert.Equal(t, "2026-08-31", r.Start.Format("2006-01-02"))
}

func TestTagEntriesBulkUpdate(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{}`))
	}))

	require.NoError(t, c.TagEntries([]int64{1, 2, 3}, "\U0001F343"))
	assert.Equal(t, "/api/v8/time_entries/1,2,3", gotPath)

	entry := gotBody["time_entry"].(map[string]any)
	assert.Equal(t, []any{"\U0001F343"}, entry["tags"])
}

func TestTagEntriesNoIDs(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an empty id list")
	}))
	require.NoError(t, c.TagEntries(nil, "tag"))
}

func TestProjectEnvelope(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v8/projects/42", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"data": Project{ID: 42, Name: "Acme Support", ClientID: 7}})
	}))

	p, err := c.Project(42)
	require.NoError(t, err)
	assert.Equal(t, "Acme Support", p.Name)
	assert.Equal(t, int64(7), p.ClientID)
}

func TestErrorResponsesCarryThePayload(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no way", http.StatusForbidden)
	}))

	_, err := c.Clients()
	require.Error(t, err)

	var apiErr *remote.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Contains(t, apiErr.Payload, "no way")
}
