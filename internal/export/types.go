// Package export renders fetched tickets as self-contained Markdown
// documents.
package export

import "time"

// Ticket is the intermediate representation between JIRA and markdown.
type Ticket struct {
	Key         string
	Summary     string
	Description string
	Status      string
	IssueType   string
	Priority    string
	Resolution  string
	Assignee    string
	Reporter    string

	Created  time.Time
	Updated  time.Time
	Resolved time.Time
	DueDate  time.Time

	Labels          []string
	Components      []string
	FixVersions     []string
	AffectsVersions []string

	Parent       string
	Subtasks     []string
	Comments     []Comment
	Attachments  []Attachment
	Links        []Link
	CustomFields []CustomField

	BaseURL string
	URL     string

	// Mentions maps usernames and account IDs to display names for
	// [~user] resolution; AttachmentURLs maps filenames to download
	// URLs for !image! resolution.
	Mentions       map[string]string
	AttachmentURLs map[string]string
}

// Comment is a single ticket comment.
type Comment struct {
	Author  string
	Created time.Time
	Body    string
}

// Attachment is a file attached to the ticket.
type Attachment struct {
	Filename string
	Size     int64
	URL      string
}

// Link is a typed relation to another issue.
type Link struct {
	Type      string
	Direction string
	Key       string
	Summary   string
}

// CustomField is a named custom field value.
type CustomField struct {
	Name  string
	Value string
}
