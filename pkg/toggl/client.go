// Package toggl is a client for the Toggl time-tracking API (v8). It
// covers the calls both workflows need: client and project CRUD, listing
// time entries, and tagging entries as booked.
package toggl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jdevries/workbridge/pkg/billing"
	"github.com/jdevries/workbridge/pkg/config"
	"github.com/jdevries/workbridge/pkg/remote"
)

const serviceName = "toggl"

// Client talks to the Toggl API. The client catalog is fetched lazily and
// cached for the run; creating a client refetches the catalog so later
// lookups never see stale data.
type Client struct {
	// BaseURL can be overridden in tests.
	BaseURL string

	token       string
	workspaceID int64
	httpClient  *http.Client
	log         zerolog.Logger

	clients map[string]int64
}

func NewClient(cfg *config.Config, log zerolog.Logger) *Client {
	return &Client{
		BaseURL:     "https://www.toggl.com",
		token:       cfg.TogglToken,
		workspaceID: cfg.TogglWorkspaceID,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		log:         log,
	}
}

// Clients returns the client catalog as a name to id mapping, fetching it
// on first use.
func (c *Client) Clients() (map[string]int64, error) {
	if c.clients != nil {
		return c.clients, nil
	}
	return c.reloadClients()
}

func (c *Client) reloadClients() (map[string]int64, error) {
	c.log.Debug().Msg("loading Toggl clients")
	var list []togglClient
	if err := c.do(http.MethodGet, "/api/v8/clients", nil, &list); err != nil {
		return nil, err
	}
	clients := make(map[string]int64, len(list))
	for _, cl := range list {
		clients[cl.Name] = cl.ID
	}
	c.clients = clients
	return clients, nil
}

// ClientName reverse-looks-up a client id in the catalog. Empty when the
// id is unknown (or zero).
func (c *Client) ClientName(id int64) (string, error) {
	if id == 0 {
		return "", nil
	}
	clients, err := c.Clients()
	if err != nil {
		return "", err
	}
	for name, clientID := range clients {
		if clientID == id {
			return name, nil
		}
	}
	return "", nil
}

// CreateClient creates a Toggl client in the configured workspace (or the
// account's first workspace when none is configured) and returns its id.
// The cached catalog is refetched so the new client is visible to the rest
// of the run.
func (c *Client) CreateClient(name string) (int64, error) {
	wid, err := c.workspace()
	if err != nil {
		return 0, err
	}
	body := map[string]any{"client": map[string]any{"name": name, "wid": wid}}
	var created dataEnvelope[togglClient]
	if err := c.do(http.MethodPost, "/api/v8/clients", body, &created); err != nil {
		return 0, err
	}
	c.log.Info().Str("client", name).Int64("id", created.Data.ID).Msg("created Toggl client")
	if _, err := c.reloadClients(); err != nil {
		return 0, err
	}
	return created.Data.ID, nil
}

func (c *Client) workspace() (int64, error) {
	if c.workspaceID != 0 {
		return c.workspaceID, nil
	}
	var workspaces []Workspace
	if err := c.do(http.MethodGet, "/api/v8/workspaces", nil, &workspaces); err != nil {
		return 0, err
	}
	if len(workspaces) == 0 {
		return 0, fmt.Errorf("toggl account has no workspaces")
	}
	c.workspaceID = workspaces[0].ID
	c.log.Warn().Int64("workspace_id", c.workspaceID).
		Msg("no workspace configured, assuming the first one")
	return c.workspaceID, nil
}

// Projects lists every project in the workspace.
func (c *Client) Projects() ([]Project, error) {
	wid, err := c.workspace()
	if err != nil {
		return nil, err
	}
	var projects []Project
	path := fmt.Sprintf("/api/v8/workspaces/%d/projects", wid)
	if err := c.do(http.MethodGet, path, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// Project fetches a single project by id.
func (c *Client) Project(id int64) (Project, error) {
	var envelope dataEnvelope[Project]
	path := fmt.Sprintf("/api/v8/projects/%d", id)
	if err := c.do(http.MethodGet, path, nil, &envelope); err != nil {
		return Project{}, err
	}
	return envelope.Data, nil
}

// CreateProject creates a project with the given title. A clientID of 0
// creates the project without a client.
func (c *Client) CreateProject(title string, clientID int64, private bool) (Project, error) {
	project := map[string]any{"name": title, "is_private": private}
	if clientID != 0 {
		project["cid"] = clientID
	}
	var created dataEnvelope[Project]
	if err := c.do(http.MethodPost, "/api/v8/projects", map[string]any{"project": project}, &created); err != nil {
		return Project{}, err
	}
	c.log.Info().Str("title", title).Int64("id", created.Data.ID).Msg("created Toggl project")
	return created.Data, nil
}

// TimeEntries returns all time entries started at or after since.
func (c *Client) TimeEntries(since time.Time) ([]billing.Record, error) {
	c.log.Debug().Time("since", since).Msg("loading Toggl time entries")
	path := "/api/v8/time_entries?start_date=" + url.QueryEscape(since.Format(time.RFC3339))
	var entries []timeEntry
	if err := c.do(http.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}
	records := make([]billing.Record, 0, len(entries))
	for _, e := range entries {
		start, err := time.Parse(time.RFC3339, e.Start)
		if err != nil {
			return nil, fmt.Errorf("failed to parse time entry start %q: %w", e.Start, err)
		}
		records = append(records, billing.Record{
			ID:          e.ID,
			ProjectID:   e.ProjectID,
			Start:       start,
			DurationSec: e.DurationSec,
			Description: e.Description,
			Billable:    e.Billable,
			Tags:        e.Tags,
		})
	}
	return records, nil
}

// TagEntries sets the given tag on every listed time entry in one bulk
// call.
func (c *Client) TagEntries(ids []int64, tag string) error {
	if len(ids) == 0 {
		return nil
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	path := "/api/v8/time_entries/" + strings.Join(parts, ",")
	body := map[string]any{"time_entry": map[string]any{"tags": []string{tag}}}
	if err := c.do(http.MethodPut, path, body, nil); err != nil {
		return err
	}
	c.log.Info().Ints64("entry_ids", ids).Str("tag", tag).Msg("tagged Toggl entries")
	return nil
}

func (c *Client) do(method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.token, "api_token")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("toggl request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read toggl response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := remote.NewError(serviceName, resp.StatusCode, string(payload))
		c.log.Error().Str("path", path).Msg(apiErr.Error())
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to unmarshal toggl response: %w", err)
	}
	return nil
}
