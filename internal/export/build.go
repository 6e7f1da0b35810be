package export

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mdtools/jira2md/internal/jira"
)

// BuildTicket maps a JIRA API issue into the renderer's model.
// customNames maps custom field IDs to display names; pass nil to skip
// custom field extraction.
func BuildTicket(issue *jira.Issue, baseURL string, customNames map[string]string) *Ticket {
	baseURL = strings.TrimRight(baseURL, "/")
	f := issue.Fields

	t := &Ticket{
		Key:         issue.Key,
		Summary:     f.Summary,
		Description: f.Description,
		Status:      f.Status.Name,
		IssueType:   f.IssueType.Name,
		Priority:    f.Priority.Name,
		Assignee:    userName(f.Assignee),
		Reporter:    userName(f.Reporter),
		Created:     parseTime(f.Created),
		Updated:     parseTime(f.Updated),
		Resolved:    parseTime(f.ResolutionDate),
		DueDate:     parseTime(f.DueDate),
		Labels:      f.Labels,
		BaseURL:     baseURL,
		URL:         baseURL + "/browse/" + issue.Key,
	}

	if f.Resolution != nil {
		t.Resolution = f.Resolution.Name
	}
	for _, c := range f.Components {
		t.Components = append(t.Components, c.Name)
	}
	for _, v := range f.FixVersions {
		t.FixVersions = append(t.FixVersions, v.Name)
	}
	for _, v := range f.Versions {
		t.AffectsVersions = append(t.AffectsVersions, v.Name)
	}
	if f.Parent != nil {
		t.Parent = f.Parent.Key
	}
	for _, s := range f.Subtasks {
		t.Subtasks = append(t.Subtasks, s.Key)
	}

	t.Mentions = map[string]string{}
	addMention(t.Mentions, f.Assignee)
	addMention(t.Mentions, f.Reporter)
	addMention(t.Mentions, f.Creator)

	if f.Comment != nil {
		for _, c := range f.Comment.Comments {
			author := c.Author
			addMention(t.Mentions, &author)
			t.Comments = append(t.Comments, Comment{
				Author:  userName(&author),
				Created: parseTime(c.Created),
				Body:    c.Body,
			})
		}
	}

	t.AttachmentURLs = map[string]string{}
	for _, a := range f.Attachments {
		t.Attachments = append(t.Attachments, Attachment{
			Filename: a.Filename,
			Size:     a.Size,
			URL:      a.Content,
		})
		t.AttachmentURLs[a.Filename] = a.Content
	}

	for _, l := range f.IssueLinks {
		link := Link{Type: l.Type.Name}
		switch {
		case l.OutwardIssue != nil:
			link.Direction = "outward"
			link.Key = l.OutwardIssue.Key
			link.Summary = l.OutwardIssue.Fields.Summary
		case l.InwardIssue != nil:
			link.Direction = "inward"
			link.Key = l.InwardIssue.Key
			link.Summary = l.InwardIssue.Fields.Summary
		default:
			continue
		}
		t.Links = append(t.Links, link)
	}

	t.CustomFields = extractCustomFields(issue.Raw, customNames)

	return t
}

func userName(u *jira.User) string {
	if u == nil {
		return ""
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if u.Name != "" {
		return u.Name
	}
	return u.EmailAddress
}

func addMention(mentions map[string]string, u *jira.User) {
	if u == nil || u.DisplayName == "" {
		return
	}
	if u.Name != "" {
		mentions[u.Name] = u.DisplayName
	}
	if u.AccountID != "" {
		mentions[u.AccountID] = u.DisplayName
	}
}

// jiraTimeFormats covers the timestamp shapes JIRA emits across
// Server/DC and Cloud, plus the date-only duedate field.
var jiraTimeFormats = []string{
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05.000Z0700",
	time.RFC3339,
	"2006-01-02",
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range jiraTimeFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// extractCustomFields pulls named custom field values out of the raw
// field map, sorted by display name. Values it cannot render to a flat
// string are skipped rather than dumped as JSON.
func extractCustomFields(raw map[string]json.RawMessage, names map[string]string) []CustomField {
	if len(raw) == 0 || len(names) == 0 {
		return nil
	}

	type entry struct {
		id    string
		field CustomField
	}
	var entries []entry
	for id, name := range names {
		value, ok := raw[id]
		if !ok {
			continue
		}
		var decoded any
		if err := json.Unmarshal(value, &decoded); err != nil || decoded == nil {
			continue
		}
		rendered := renderFieldValue(decoded)
		if rendered == "" {
			continue
		}
		entries = append(entries, entry{id: id, field: CustomField{Name: name, Value: rendered}})
	}

	// Field IDs break ties so duplicate display names keep a stable order.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].field.Name != entries[j].field.Name {
			return entries[i].field.Name < entries[j].field.Name
		}
		return entries[i].id < entries[j].id
	})

	fields := make([]CustomField, len(entries))
	for i, e := range entries {
		fields[i] = e.field
	}
	return fields
}

func renderFieldValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []any:
		var parts []string
		for _, item := range val {
			if s := renderFieldValue(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		// Option-style objects carry their label under one of these keys.
		for _, key := range []string{"value", "name", "displayName"} {
			if s, ok := val[key].(string); ok && s != "" {
				return s
			}
		}
		return ""
	default:
		return ""
	}
}
