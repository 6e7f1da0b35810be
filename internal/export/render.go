package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/mdtools/jira2md/internal/wiki"
)

// Options controls which sections Render emits.
type Options struct {
	IncludeMetadataTable bool
	IncludeComments      bool
	IncludeAttachments   bool
	IncludeSubtasks      bool
	IncludeLinks         bool
	ConvertMarkup        bool
	DateFormat           string // Go time layout
	Now                  time.Time
}

// DefaultOptions returns options with every section enabled.
func DefaultOptions() Options {
	return Options{
		IncludeMetadataTable: true,
		IncludeComments:      true,
		IncludeAttachments:   true,
		IncludeSubtasks:      true,
		IncludeLinks:         true,
		ConvertMarkup:        true,
		DateFormat:           "2006-01-02 15:04:05",
	}
}

// Render produces the complete Markdown document for a ticket.
func Render(t *Ticket, opts Options) string {
	if opts.DateFormat == "" {
		opts.DateFormat = "2006-01-02 15:04:05"
	}
	conv := wiki.Converter{Mentions: t.Mentions, Attachments: t.AttachmentURLs}
	markup := func(s string) string {
		if opts.ConvertMarkup {
			return conv.Convert(s)
		}
		return s
	}

	var b strings.Builder

	fmt.Fprintf(&b, "# [%s] %s\n\n", t.Key, t.Summary)

	if opts.IncludeMetadataTable {
		renderMetadataTable(&b, t, opts)
		b.WriteString("\n")
	}

	b.WriteString("## Description\n\n")
	if t.Description != "" {
		desc := markup(t.Description)
		b.WriteString(desc)
		if !strings.HasSuffix(desc, "\n") {
			b.WriteString("\n")
		}
	} else {
		b.WriteString("_No description provided._\n")
	}
	b.WriteString("\n")

	if opts.IncludeComments && len(t.Comments) > 0 {
		b.WriteString("## Comments\n\n")
		for _, c := range t.Comments {
			author := c.Author
			if author == "" {
				author = "Unknown"
			}
			fmt.Fprintf(&b, "### %s - %s\n\n", author, formatTime(c.Created, opts.DateFormat))
			body := markup(c.Body)
			b.WriteString(body)
			if !strings.HasSuffix(body, "\n") {
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}
	}

	if len(t.CustomFields) > 0 {
		b.WriteString("## Custom Fields\n\n")
		for _, f := range t.CustomFields {
			fmt.Fprintf(&b, "- **%s**: %s\n", f.Name, f.Value)
		}
		b.WriteString("\n")
	}

	if opts.IncludeAttachments && len(t.Attachments) > 0 {
		b.WriteString("## Attachments\n\n")
		for _, a := range t.Attachments {
			fmt.Fprintf(&b, "- [%s](%s) (%s)\n", a.Filename, a.URL, humanSize(a.Size))
		}
		b.WriteString("\n")
	}

	if opts.IncludeSubtasks && len(t.Subtasks) > 0 {
		b.WriteString("## Subtasks\n\n")
		for _, key := range t.Subtasks {
			fmt.Fprintf(&b, "- [ ] %s\n", key)
		}
		b.WriteString("\n")
	}

	if opts.IncludeLinks && (len(t.Links) > 0 || t.Parent != "" || t.URL != "") {
		b.WriteString("## Links\n\n")
		if t.Parent != "" {
			fmt.Fprintf(&b, "- **Parent Issue**: [%s](%s/browse/%s)\n", t.Parent, t.BaseURL, t.Parent)
		}
		for _, l := range t.Links {
			linkType := l.Type
			if linkType == "" {
				linkType = "Related"
			}
			fmt.Fprintf(&b, "- **%s** (%s): [%s](%s/browse/%s) - %s\n",
				linkType, l.Direction, l.Key, t.BaseURL, l.Key, l.Summary)
		}
		if t.URL != "" {
			fmt.Fprintf(&b, "- **View in JIRA**: [%s](%s)\n", t.Key, t.URL)
		}
		b.WriteString("\n")
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	fmt.Fprintf(&b, "---\n*Generated on %s by jira2md*\n", now.Format("2006-01-02 15:04:05"))

	return b.String()
}

func renderMetadataTable(b *strings.Builder, t *Ticket, opts Options) {
	b.WriteString("## Metadata\n\n")
	b.WriteString("| Field | Value |\n")
	b.WriteString("|-------|-------|\n")

	row := func(field, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(b, "| **%s** | %s |\n", field, strings.ReplaceAll(value, "|", `\|`))
	}

	row("Key", t.Key)
	row("Status", orDash(t.Status))
	row("Type", orDash(t.IssueType))
	row("Priority", orDash(t.Priority))
	if t.Assignee != "" {
		row("Assignee", t.Assignee)
	} else {
		row("Assignee", "Unassigned")
	}
	row("Reporter", t.Reporter)
	row("Created", formatTime(t.Created, opts.DateFormat))
	row("Updated", formatTime(t.Updated, opts.DateFormat))
	row("Resolved", formatTime(t.Resolved, opts.DateFormat))
	row("Due Date", formatTime(t.DueDate, opts.DateFormat))
	row("Resolution", t.Resolution)
	row("Labels", strings.Join(t.Labels, ", "))
	row("Components", strings.Join(t.Components, ", "))
	row("Fix Versions", strings.Join(t.FixVersions, ", "))
	row("Affects Versions", strings.Join(t.AffectsVersions, ", "))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatTime(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(layout)
}

func humanSize(size int64) string {
	value := float64(size)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if value < 1024.0 {
			return fmt.Sprintf("%.1f %s", value, unit)
		}
		value /= 1024.0
	}
	return fmt.Sprintf("%.1f TB", value)
}
