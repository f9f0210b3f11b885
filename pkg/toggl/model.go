package toggl

// Project is a Toggl project. ClientID is 0 when the project has no
// client attached.
type Project struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ClientID int64  `json:"cid"`
	Private  bool   `json:"is_private"`
}

// Workspace is a Toggl workspace.
type Workspace struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type togglClient struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	WorkspaceID int64  `json:"wid"`
}

type timeEntry struct {
	ID          int64    `json:"id"`
	ProjectID   int64    `json:"pid"`
	Start       string   `json:"start"`
	DurationSec int64    `json:"duration"`
	Description string   `json:"description"`
	Billable    bool     `json:"billable"`
	Tags        []string `json:"tags"`
}

// dataEnvelope matches the {"data": ...} wrapper the Toggl v8 API puts
// around single-object responses.
type dataEnvelope[T any] struct {
	Data T `json:"data"`
}
