// Package config loads the immutable per-run configuration. Credentials
// live in ~/.config/workbridge/config.json and can be overridden through
// the environment (a .env file in the working directory is honored), which
// keeps tokens out of shell history when trying things out.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	xdgAppName = "workbridge"
	configFile = "config.json"
	logFile    = "workbridge.log"

	// DefaultBookedTag is the reserved marker tag applied to Toggl time
	// entries once they have been booked into FreshBooks. The original
	// workflow used the leaf emoji and existing accounts still carry it.
	DefaultBookedTag = "\U0001F343"

	// DefaultTaskID is the FreshBooks task a created time entry is filed
	// under when none is configured.
	DefaultTaskID = 2
)

// Config is constructed once at startup and passed by reference into each
// API client. Nothing mutates it afterwards.
type Config struct {
	ZendeskEmail     string `json:"zendesk_email"`
	ZendeskToken     string `json:"zendesk_token"`
	ZendeskSubdomain string `json:"zendesk_subdomain"`

	TogglToken       string `json:"toggl_token"`
	TogglWorkspaceID int64  `json:"toggl_workspace_id,omitempty"`

	FreshbooksToken     string `json:"freshbooks_token"`
	FreshbooksSubdomain string `json:"freshbooks_subdomain"`
	FreshbooksTaskID    int64  `json:"freshbooks_task_id,omitempty"`

	BookedTag string `json:"booked_tag,omitempty"`
}

func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName, configFile), nil
}

// GetLogPath returns the location of the append-only run log, next to the
// config file.
func GetLogPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName, logFile), nil
}

// Load reads the config file at path (the default location when path is
// empty), applies environment overrides and fills in defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = GetConfigPath()
		if err != nil {
			return nil, err
		}
	}

	var cfg Config
	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		// No config file: credentials must come from the environment.
	} else {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
		}
	}

	// A missing .env file is fine; explicit environment always applies.
	_ = godotenv.Load()
	applyEnv(&cfg)

	if cfg.BookedTag == "" {
		cfg.BookedTag = DefaultBookedTag
	}
	if cfg.FreshbooksTaskID == 0 {
		cfg.FreshbooksTaskID = DefaultTaskID
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	overrideString(&cfg.ZendeskEmail, "WORKBRIDGE_ZENDESK_EMAIL")
	overrideString(&cfg.ZendeskToken, "WORKBRIDGE_ZENDESK_TOKEN")
	overrideString(&cfg.ZendeskSubdomain, "WORKBRIDGE_ZENDESK_SUBDOMAIN")
	overrideString(&cfg.TogglToken, "WORKBRIDGE_TOGGL_TOKEN")
	overrideString(&cfg.FreshbooksToken, "WORKBRIDGE_FRESHBOOKS_TOKEN")
	overrideString(&cfg.FreshbooksSubdomain, "WORKBRIDGE_FRESHBOOKS_SUBDOMAIN")
	overrideString(&cfg.BookedTag, "WORKBRIDGE_BOOKED_TAG")
	overrideInt(&cfg.TogglWorkspaceID, "WORKBRIDGE_TOGGL_WORKSPACE_ID")
	overrideInt(&cfg.FreshbooksTaskID, "WORKBRIDGE_FRESHBOOKS_TASK_ID")
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func overrideInt(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

// Validate reports the first missing credential. All three services are
// required: sync touches Zendesk and Toggl, track touches Toggl and
// FreshBooks.
func (c *Config) Validate() error {
	missing := ""
	switch {
	case c.ZendeskEmail == "":
		missing = "zendesk_email"
	case c.ZendeskToken == "":
		missing = "zendesk_token"
	case c.ZendeskSubdomain == "":
		missing = "zendesk_subdomain"
	case c.TogglToken == "":
		missing = "toggl_token"
	case c.FreshbooksToken == "":
		missing = "freshbooks_token"
	case c.FreshbooksSubdomain == "":
		missing = "freshbooks_subdomain"
	}
	if missing != "" {
		return fmt.Errorf("config is missing %q (set it in the config file or as %s)",
			missing, "WORKBRIDGE_"+strings.ToUpper(missing))
	}
	return nil
}
