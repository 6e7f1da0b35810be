// Package jira is a thin client for the JIRA REST API v2, the API
// generation whose description and comment fields carry wiki markup.
package jira

import (
	"bytes"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mdtools/jira2md/internal/config"
	"github.com/mdtools/jira2md/internal/logging"
)

// Sentinel errors callers can match with errors.Is.
var (
	ErrNotFound     = errors.New("issue not found")
	ErrUnauthorized = errors.New("authentication failed")
)

// Client is a JIRA REST API v2 client.
type Client struct {
	baseURL    string
	authHeader string
	httpClient *http.Client
	log        logging.Logger
}

// NewClient creates a new JIRA client from the given connection config.
func NewClient(cfg config.JiraConfig, log logging.Logger) *Client {
	creds := base64.StdEncoding.EncodeToString([]byte(cfg.Username + ":" + cfg.APIToken))

	transport := http.DefaultTransport
	if !cfg.VerifySSL {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		authHeader: "Basic " + creds,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
		log: log,
	}
}

// BaseURL returns the configured JIRA base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetIssue fetches a single issue by key with all fields, keeping the
// raw field map so custom fields can be extracted later.
func (c *Client) GetIssue(key string) (*Issue, error) {
	url := fmt.Sprintf("%s/rest/api/2/issue/%s?expand=names", c.baseURL, key)

	c.log.Debug("fetching issue", "key", key)

	body, err := c.get(url)
	if err != nil {
		return nil, err
	}

	issue, err := decodeIssue(body)
	if err != nil {
		return nil, fmt.Errorf("decoding issue %s: %w", key, err)
	}
	return issue, nil
}

// Search runs a JQL query. max limits the number of issues returned;
// max <= 0 fetches every match, paginating as needed.
func (c *Client) Search(jql string, max int) ([]Issue, error) {
	url := c.baseURL + "/rest/api/2/search"

	const pageSize = 50
	var issues []Issue
	startAt := 0

	for {
		want := pageSize
		if max > 0 && max-len(issues) < want {
			want = max - len(issues)
		}

		payload := SearchRequest{
			JQL:        jql,
			StartAt:    startAt,
			MaxResults: want,
			Expand:     []string{"names"},
		}
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshalling search request: %w", err)
		}

		c.log.Debug("searching issues", "jql", jql, "startAt", startAt)

		body, err := c.post(url, data)
		if err != nil {
			return nil, err
		}

		var page SearchResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decoding search response: %w", err)
		}

		for _, raw := range page.Issues {
			issue, err := decodeIssue(raw)
			if err != nil {
				return nil, fmt.Errorf("decoding search result: %w", err)
			}
			issues = append(issues, *issue)
		}

		startAt += len(page.Issues)
		if len(page.Issues) == 0 || startAt >= page.Total {
			break
		}
		if max > 0 && len(issues) >= max {
			issues = issues[:max]
			break
		}
	}

	c.log.Info("search complete", "jql", jql, "count", len(issues))
	return issues, nil
}

// Fields returns all field definitions, used to map custom field IDs to
// display names.
func (c *Client) Fields() ([]Field, error) {
	body, err := c.get(c.baseURL + "/rest/api/2/field")
	if err != nil {
		return nil, err
	}

	var fields []Field
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("decoding fields: %w", err)
	}
	return fields, nil
}

// CustomFields returns a map of custom field IDs to their display
// names.
func (c *Client) CustomFields() (map[string]string, error) {
	fields, err := c.Fields()
	if err != nil {
		return nil, err
	}

	custom := make(map[string]string)
	for _, f := range fields {
		if f.Custom {
			custom[f.ID] = f.Name
		}
	}
	c.log.Debug("loaded custom field mapping", "count", len(custom))
	return custom, nil
}

// Myself verifies credentials by fetching the authenticated user.
func (c *Client) Myself() (*Myself, error) {
	body, err := c.get(c.baseURL + "/rest/api/2/myself")
	if err != nil {
		return nil, err
	}

	var me Myself
	if err := json.Unmarshal(body, &me); err != nil {
		return nil, fmt.Errorf("decoding myself response: %w", err)
	}
	return &me, nil
}

// ServerInfo fetches JIRA server metadata (version, deployment type).
func (c *Client) ServerInfo() (*ServerInfo, error) {
	body, err := c.get(c.baseURL + "/rest/api/2/serverInfo")
	if err != nil {
		return nil, err
	}

	var info ServerInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("decoding server info: %w", err)
	}
	return &info, nil
}

// Download streams an attachment or image. The caller must close the
// returned reader. Authentication is sent only for URLs on the
// configured JIRA host.
func (c *Client) Download(url string) (io.ReadCloser, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if strings.HasPrefix(url, c.baseURL) {
		req.Header.Set("Authorization", c.authHeader)
	}
	req.Header.Set("User-Agent", "jira2md/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("download returned %d for %s", resp.StatusCode, url)
	}
	return resp.Body, nil
}

func (c *Client) get(url string) ([]byte, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	return c.do(req)
}

func (c *Client) post(url string, payload []byte) ([]byte, error) {
	req, err := http.NewRequest("POST", url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, errorMessages(body))
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%w: check username and API token", ErrUnauthorized)
	default:
		return nil, fmt.Errorf("JIRA API returned %d: %s", resp.StatusCode, errorMessages(body))
	}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

// errorMessages extracts JIRA's {errorMessages: [...]} payload for
// error wrapping, falling back to the raw body.
func errorMessages(body []byte) string {
	var payload struct {
		ErrorMessages []string `json:"errorMessages"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.ErrorMessages) > 0 {
		return strings.Join(payload.ErrorMessages, "; ")
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

// decodeIssue unmarshals an issue twice: once into the typed struct and
// once into a raw field map so custom fields survive.
func decodeIssue(body []byte) (*Issue, error) {
	if body == nil {
		return nil, fmt.Errorf("empty issue body")
	}

	var issue Issue
	if err := json.Unmarshal(body, &issue); err != nil {
		return nil, err
	}

	var envelope struct {
		Fields map[string]json.RawMessage `json:"fields"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		issue.Raw = envelope.Fields
	}
	return &issue, nil
}
