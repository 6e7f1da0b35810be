package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/mdtools/jira2md/internal/export"
	"github.com/mdtools/jira2md/internal/jira"
	"github.com/mdtools/jira2md/internal/writer"
)

// exporter ties the fetch-convert-write pipeline together for the
// fetch, query, and bulk commands.
type exporter struct {
	client *jira.Client
	writer *writer.Writer
	names  map[string]string
	opts   export.Options
}

// newClient builds a JIRA client from the loaded configuration.
func newClient() *jira.Client {
	return jira.NewClient(appConfig.Jira, log)
}

// newExporter builds the pipeline from the loaded configuration.
// outputDir and overwrite, when set, take precedence over the config
// values.
func newExporter(outputDir string, overwrite bool) (*exporter, error) {
	client := newClient()

	dir := appConfig.Output.Directory
	if outputDir != "" {
		dir = outputDir
	}
	w, err := writer.New(dir, overwrite || appConfig.Output.Overwrite, appConfig.Output.FilenameFormat)
	if err != nil {
		return nil, fmt.Errorf("preparing output directory: %w", err)
	}

	names, err := client.CustomFields()
	if err != nil {
		log.Warn("could not fetch custom field names", "error", err)
		names = nil
	}

	md := appConfig.Markdown
	opts := export.Options{
		IncludeMetadataTable: md.IncludeMetadataTable,
		IncludeComments:      md.IncludeComments,
		IncludeAttachments:   md.IncludeAttachments,
		IncludeSubtasks:      md.IncludeSubtasks,
		IncludeLinks:         md.IncludeLinks,
		ConvertMarkup:        md.ConvertMarkup,
		DateFormat:           md.DateFormat,
	}

	return &exporter{client: client, writer: w, names: names, opts: opts}, nil
}

// render converts one issue to its markdown document.
func (e *exporter) render(issue *jira.Issue) (key, content string, meta writer.Meta) {
	t := export.BuildTicket(issue, e.client.BaseURL(), e.names)
	content = export.Render(t, e.opts)
	meta = writer.Meta{Summary: t.Summary, Created: t.Created, Updated: t.Updated}
	return t.Key, content, meta
}

// exportKey fetches a single issue by key and writes it out.
func (e *exporter) exportKey(key string) (string, error) {
	start := time.Now()
	issue, err := e.client.GetIssue(key)
	if err != nil {
		return "", err
	}
	path, err := e.exportIssue(issue)
	if err != nil {
		return path, err
	}
	log.Debug("exported ticket", "key", key, "elapsed", time.Since(start).String())
	return path, nil
}

// exportIssue writes an already-fetched issue out.
func (e *exporter) exportIssue(issue *jira.Issue) (string, error) {
	key, content, meta := e.render(issue)
	path, err := e.writer.WriteTicket(key, content, meta)
	if errors.Is(err, writer.ErrExists) {
		return path, fmt.Errorf("%s exists, use --overwrite to replace it", path)
	}
	return path, err
}
