// Package confluence implements the page store boundary against the
// Confluence Cloud REST API.
package confluence

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fyrsmithlabs/docsmith/internal/actions"
	"github.com/fyrsmithlabs/docsmith/internal/config"
)

var (
	// ErrPageNotFound indicates the page id (or title) does not resolve.
	ErrPageNotFound = errors.New("page not found")

	// ErrVersionConflict indicates an update raced a newer page version.
	ErrVersionConflict = errors.New("page version conflict")
)

// Client is a Confluence REST client. It is safe for concurrent use by
// independent pipeline runs.
type Client struct {
	baseURL    string
	username   string
	token      config.Secret
	httpClient *http.Client
}

// NewClient creates a client for the given site.
func NewClient(cfg config.ConfluenceConfig) *Client {
	return &Client{
		baseURL:  cfg.BaseURL,
		username: cfg.Username,
		token:    cfg.APIToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type pageBody struct {
	Storage struct {
		Value          string `json:"value"`
		Representation string `json:"representation"`
	} `json:"storage"`
}

type pageResponse struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Version struct {
		Number int `json:"number"`
	} `json:"version"`
	Body pageBody `json:"body"`
}

type searchResponse struct {
	Results []pageResponse `json:"results"`
}

// GetPage fetches a page with its storage body and version number.
func (c *Client) GetPage(ctx context.Context, pageID string) (*actions.Page, error) {
	endpoint := fmt.Sprintf("/rest/api/content/%s?expand=body.storage,version", url.PathEscape(pageID))

	var resp pageResponse
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching page %s: %w", pageID, err)
	}

	return &actions.Page{
		ID:      resp.ID,
		Title:   resp.Title,
		Version: resp.Version.Number,
		Content: resp.Body.Storage.Value,
	}, nil
}

// FindPageByTitle resolves a page id by exact title within a space.
func (c *Client) FindPageByTitle(ctx context.Context, spaceID, title string) (string, error) {
	endpoint := fmt.Sprintf("/rest/api/content?spaceKey=%s&title=%s&limit=1",
		url.QueryEscape(spaceID), url.QueryEscape(title))

	var resp searchResponse
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return "", fmt.Errorf("searching for page %q: %w", title, err)
	}
	if len(resp.Results) == 0 {
		return "", fmt.Errorf("no page titled %q in space %s: %w", title, spaceID, ErrPageNotFound)
	}
	return resp.Results[0].ID, nil
}

// CreatePage creates a page and returns its id.
func (c *Client) CreatePage(ctx context.Context, spaceID, title, content, parentID string) (string, error) {
	payload := map[string]any{
		"type":  "page",
		"title": title,
		"space": map[string]string{"key": spaceID},
		"body": map[string]any{
			"storage": map[string]string{
				"value":          content,
				"representation": "storage",
			},
		},
	}
	if parentID != "" {
		payload["ancestors"] = []map[string]string{{"id": parentID}}
	}

	var resp pageResponse
	if err := c.do(ctx, http.MethodPost, "/rest/api/content", payload, &resp); err != nil {
		return "", fmt.Errorf("creating page %q: %w", title, err)
	}
	return resp.ID, nil
}

// UpdatePage replaces a page's content. version is the page's current
// version number, as returned by GetPage; the stored version becomes
// version+1. A stale version fails with ErrVersionConflict.
func (c *Client) UpdatePage(ctx context.Context, pageID, title, content string, version int) (string, error) {
	payload := map[string]any{
		"id":      pageID,
		"type":    "page",
		"title":   title,
		"version": map[string]int{"number": version + 1},
		"body": map[string]any{
			"storage": map[string]string{
				"value":          content,
				"representation": "storage",
			},
		},
	}

	endpoint := "/rest/api/content/" + url.PathEscape(pageID)
	var resp pageResponse
	if err := c.do(ctx, http.MethodPut, endpoint, payload, &resp); err != nil {
		return "", fmt.Errorf("updating page %s: %w", pageID, err)
	}
	return resp.ID, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.SetBasicAuth(c.username, c.token.Value())
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling confluence: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return statusError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	switch resp.StatusCode {
	case http.StatusNotFound:
		return ErrPageNotFound
	case http.StatusConflict:
		return ErrVersionConflict
	default:
		return fmt.Errorf("confluence returned %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}
}
