// Package freshbooks is a client for the classic FreshBooks XML API
// (2.1). The API is request/response XML over a single endpoint; project
// listing is paginated and aggregated client-side.
package freshbooks

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/jdevries/workbridge/pkg/config"
	"github.com/jdevries/workbridge/pkg/remote"
)

const (
	serviceName     = "freshbooks"
	projectPageSize = 100
)

// Client talks to the FreshBooks XML-in endpoint with token auth. The
// project catalog is fetched lazily and cached for the run.
type Client struct {
	// BaseURL can be overridden in tests.
	BaseURL string

	token      string
	taskID     int64
	subdomain  string
	httpClient *http.Client
	log        zerolog.Logger

	projects map[string]int64
}

func NewClient(cfg *config.Config, log zerolog.Logger) *Client {
	return &Client{
		BaseURL:    fmt.Sprintf("https://%s.freshbooks.com", cfg.FreshbooksSubdomain),
		token:      cfg.FreshbooksToken,
		taskID:     cfg.FreshbooksTaskID,
		subdomain:  cfg.FreshbooksSubdomain,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

// TimesheetURL is where a human can verify booked entries.
func (c *Client) TimesheetURL() string {
	return fmt.Sprintf("https://%s.freshbooks.com/timesheet", c.subdomain)
}

type projectListRequest struct {
	XMLName xml.Name `xml:"request"`
	Method  string   `xml:"method,attr"`
	Page    int      `xml:"page"`
	PerPage int      `xml:"per_page"`
}

type projectListResponse struct {
	Status   string `xml:"status,attr"`
	Error    string `xml:"error"`
	Projects []struct {
		ID   int64  `xml:"project_id"`
		Name string `xml:"name"`
	} `xml:"projects>project"`
}

// Projects returns the full project catalog as a name to id mapping. The
// API pages at 100 projects; pages are fetched until one comes back empty.
func (c *Client) Projects() (map[string]int64, error) {
	if c.projects != nil {
		return c.projects, nil
	}
	c.log.Debug().Msg("loading FreshBooks projects")

	projects := make(map[string]int64)
	for page := 1; ; page++ {
		request := projectListRequest{Method: "project.list", Page: page, PerPage: projectPageSize}
		var response projectListResponse
		if err := c.do(request, &response); err != nil {
			return nil, err
		}
		if len(response.Projects) == 0 {
			break
		}
		for _, p := range response.Projects {
			projects[p.Name] = p.ID
		}
	}
	c.projects = projects
	return projects, nil
}

type timeEntryRequest struct {
	XMLName xml.Name `xml:"request"`
	Method  string   `xml:"method,attr"`
	Entry   struct {
		ProjectID int64  `xml:"project_id"`
		TaskID    int64  `xml:"task_id"`
		Hours     string `xml:"hours"`
		Notes     string `xml:"notes"`
		Date      string `xml:"date"`
	} `xml:"time_entry"`
}

type timeEntryResponse struct {
	Status string `xml:"status,attr"`
	Error  string `xml:"error"`
}

// CreateTimeEntry books hours on a project for the given date. The caller
// is responsible for transliterating the description to ASCII first; this
// transport does not declare an encoding reliably.
func (c *Client) CreateTimeEntry(projectID int64, hours float64, description, date string) error {
	request := timeEntryRequest{Method: "time_entry.create"}
	request.Entry.ProjectID = projectID
	request.Entry.TaskID = c.taskID
	request.Entry.Hours = strconv.FormatFloat(hours, 'f', -1, 64)
	request.Entry.Notes = description
	request.Entry.Date = date

	var response timeEntryResponse
	if err := c.do(request, &response); err != nil {
		return err
	}
	c.log.Info().
		Int64("project_id", projectID).
		Float64("hours", hours).
		Str("date", date).
		Msg("added time entry to FreshBooks")
	return nil
}

// do posts an XML request and decodes the response. A transport failure,
// a non-2xx status, or a response with status other than "ok" all become
// errors; the last two carry the raw payload for the run log.
func (c *Client) do(request any, out any) error {
	encoded, err := xml.Marshal(request)
	if err != nil {
		return err
	}
	body := append([]byte(xml.Header), encoded...)

	req, err := http.NewRequest(http.MethodPost, c.BaseURL+"/api/2.1/xml-in", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.token, "X")
	req.Header.Set("Content-Type", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("freshbooks request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read freshbooks response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := remote.NewError(serviceName, resp.StatusCode, string(payload))
		c.log.Error().Msg(apiErr.Error())
		return apiErr
	}
	if err := xml.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to unmarshal freshbooks response: %w", err)
	}
	if status := responseStatus(out); status != "ok" {
		apiErr := remote.NewError(serviceName, resp.StatusCode, string(payload))
		c.log.Error().Str("status", status).Msg(apiErr.Error())
		return apiErr
	}
	return nil
}

func responseStatus(out any) string {
	switch r := out.(type) {
	case *projectListResponse:
		return r.Status
	case *timeEntryResponse:
		return r.Status
	default:
		return "ok"
	}
}
