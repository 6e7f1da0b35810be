package jira

import "encoding/json"

// Issue represents a JIRA issue from the REST API v2. Description and
// comment bodies arrive as wiki markup strings, not ADF.
type Issue struct {
	Key    string                     `json:"key"`
	Self   string                     `json:"self"`
	Fields Fields                     `json:"fields"`
	Names  map[string]string          `json:"names,omitempty"`
	Raw    map[string]json.RawMessage `json:"-"`
}

// Fields contains the issue fields we care about.
type Fields struct {
	Summary        string       `json:"summary"`
	Description    string       `json:"description,omitempty"`
	Status         Status       `json:"status"`
	IssueType      IssueType    `json:"issuetype"`
	Priority       Priority     `json:"priority,omitempty"`
	Resolution     *Resolution  `json:"resolution,omitempty"`
	Labels         []string     `json:"labels,omitempty"`
	Components     []Named      `json:"components,omitempty"`
	FixVersions    []Named      `json:"fixVersions,omitempty"`
	Versions       []Named      `json:"versions,omitempty"`
	Assignee       *User        `json:"assignee,omitempty"`
	Reporter       *User        `json:"reporter,omitempty"`
	Creator        *User        `json:"creator,omitempty"`
	Created        string       `json:"created,omitempty"`
	Updated        string       `json:"updated,omitempty"`
	ResolutionDate string       `json:"resolutiondate,omitempty"`
	DueDate        string       `json:"duedate,omitempty"`
	Parent         *IssueRef    `json:"parent,omitempty"`
	Subtasks       []IssueRef   `json:"subtasks,omitempty"`
	IssueLinks     []IssueLink  `json:"issuelinks,omitempty"`
	Comment        *Comments    `json:"comment,omitempty"`
	Attachments    []Attachment `json:"attachment,omitempty"`
}

// Status represents a JIRA status.
type Status struct {
	Name           string          `json:"name"`
	StatusCategory *StatusCategory `json:"statusCategory,omitempty"`
}

// StatusCategory represents the high-level category of a JIRA status.
type StatusCategory struct {
	Key  string `json:"key"`  // "new", "indeterminate", "done"
	Name string `json:"name"` // "To Do", "In Progress", "Done"
}

// IssueType represents a JIRA issue type.
type IssueType struct {
	Name string `json:"name"`
}

// Priority represents a JIRA priority.
type Priority struct {
	Name string `json:"name"`
}

// Resolution represents a JIRA resolution.
type Resolution struct {
	Name string `json:"name"`
}

// Named is any JIRA entity referenced only by name (components,
// versions).
type Named struct {
	Name string `json:"name"`
}

// User represents a JIRA user. Server/DC populates Name, Cloud
// populates AccountID.
type User struct {
	Name         string `json:"name,omitempty"`
	AccountID    string `json:"accountId,omitempty"`
	EmailAddress string `json:"emailAddress,omitempty"`
	DisplayName  string `json:"displayName,omitempty"`
}

// Comments wraps the comments array from the JIRA API.
type Comments struct {
	Comments []Comment `json:"comments"`
}

// Comment represents a single JIRA comment with a wiki markup body.
type Comment struct {
	Author  User   `json:"author"`
	Body    string `json:"body"`
	Created string `json:"created"`
	Updated string `json:"updated,omitempty"`
}

// Attachment describes an issue attachment.
type Attachment struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType,omitempty"`
	Content  string `json:"content"` // download URL
	Created  string `json:"created,omitempty"`
}

// IssueRef is a minimal reference to another issue (parent, subtask,
// link target).
type IssueRef struct {
	Key    string    `json:"key"`
	Fields RefFields `json:"fields"`
}

// RefFields carries the summary of a referenced issue.
type RefFields struct {
	Summary string `json:"summary"`
}

// LinkType names a link relation and its two directions.
type LinkType struct {
	Name    string `json:"name"`
	Inward  string `json:"inward"`
	Outward string `json:"outward"`
}

// IssueLink represents a typed link between two issues.
type IssueLink struct {
	Type         LinkType  `json:"type"`
	OutwardIssue *IssueRef `json:"outwardIssue,omitempty"`
	InwardIssue  *IssueRef `json:"inwardIssue,omitempty"`
}

// Field describes an entry from GET /rest/api/2/field.
type Field struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Custom bool   `json:"custom"`
}

// SearchRequest is the body for POST /rest/api/2/search.
type SearchRequest struct {
	JQL        string   `json:"jql"`
	StartAt    int      `json:"startAt"`
	MaxResults int      `json:"maxResults"`
	Fields     []string `json:"fields,omitempty"`
	Expand     []string `json:"expand,omitempty"`
}

// SearchResponse is the response from POST /rest/api/2/search. Issues
// stay raw so each can be decoded with its full field map intact.
type SearchResponse struct {
	StartAt    int               `json:"startAt"`
	MaxResults int               `json:"maxResults"`
	Total      int               `json:"total"`
	Issues     []json.RawMessage `json:"issues"`
}

// ServerInfo is the response from GET /rest/api/2/serverInfo.
type ServerInfo struct {
	BaseURL        string `json:"baseUrl"`
	Version        string `json:"version"`
	DeploymentType string `json:"deploymentType,omitempty"`
	ServerTitle    string `json:"serverTitle,omitempty"`
}

// Myself is the response from GET /rest/api/2/myself.
type Myself struct {
	Name         string `json:"name,omitempty"`
	AccountID    string `json:"accountId,omitempty"`
	EmailAddress string `json:"emailAddress,omitempty"`
	DisplayName  string `json:"displayName,omitempty"`
}
