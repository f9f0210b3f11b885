// Package zendesk is a minimal Zendesk API client: it can search recent
// tickets and resolve the organization they belong to. That is all the
// sync workflow needs.
package zendesk

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/jdevries/workbridge/pkg/config"
	"github.com/jdevries/workbridge/pkg/remote"
)

const serviceName = "zendesk"

// Ticket is a support request. Organization is empty when the requester
// has no organization attached.
type Ticket struct {
	ID           int64
	Subject      string
	Organization string
}

// Client talks to the Zendesk REST API with token auth.
type Client struct {
	// BaseURL can be overridden in tests; it defaults to the subdomain's
	// public endpoint.
	BaseURL string

	email      string
	token      string
	httpClient *http.Client
	log        zerolog.Logger

	// organization names by id, resolved once per run
	orgNames map[int64]string
}

func NewClient(cfg *config.Config, log zerolog.Logger) *Client {
	return &Client{
		BaseURL:    fmt.Sprintf("https://%s.zendesk.com", cfg.ZendeskSubdomain),
		email:      cfg.ZendeskEmail,
		token:      cfg.ZendeskToken,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
		orgNames:   make(map[int64]string),
	}
}

type searchPage struct {
	Results []struct {
		ID             int64  `json:"id"`
		Subject        string `json:"subject"`
		OrganizationID int64  `json:"organization_id"`
	} `json:"results"`
	NextPage string `json:"next_page"`
}

// SearchTickets returns every ticket created at or after since, oldest
// page first. Pagination is followed until the API reports no next page.
func (c *Client) SearchTickets(since time.Time) ([]Ticket, error) {
	query := fmt.Sprintf("type:ticket created>%s", since.UTC().Format("2006-01-02T15:04:05Z"))
	next := fmt.Sprintf("%s/api/v2/search.json?query=%s", c.BaseURL, url.QueryEscape(query))

	var tickets []Ticket
	for next != "" {
		var page searchPage
		if err := c.getJSON(next, &page); err != nil {
			return nil, err
		}
		for _, r := range page.Results {
			t := Ticket{ID: r.ID, Subject: r.Subject}
			if r.OrganizationID != 0 {
				name, err := c.organizationName(r.OrganizationID)
				if err != nil {
					return nil, err
				}
				t.Organization = name
			}
			tickets = append(tickets, t)
		}
		next = page.NextPage
	}
	return tickets, nil
}

// organizationName resolves an organization id to its name. Results are
// cached for the rest of the run; organizations rarely change mid-run and
// the search payload repeats the same ids over and over.
func (c *Client) organizationName(id int64) (string, error) {
	if name, ok := c.orgNames[id]; ok {
		return name, nil
	}
	var payload struct {
		Organization struct {
			Name string `json:"name"`
		} `json:"organization"`
	}
	endpoint := fmt.Sprintf("%s/api/v2/organizations/%d.json", c.BaseURL, id)
	if err := c.getJSON(endpoint, &payload); err != nil {
		return "", err
	}
	c.orgNames[id] = payload.Organization.Name
	return payload.Organization.Name, nil
}

func (c *Client) getJSON(endpoint string, out any) error {
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.email+"/token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("zendesk request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read zendesk response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := remote.NewError(serviceName, resp.StatusCode, string(body))
		c.log.Error().Str("url", endpoint).Msg(apiErr.Error())
		return apiErr
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal zendesk response: %w", err)
	}
	return nil
}
