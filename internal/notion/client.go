package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/damilare-ak/clinicnote/internal/common"
	"github.com/damilare-ak/clinicnote/internal/format"
)

const apiVersion = "2022-06-28"

// API is the slice of the document store the Store adapter needs. The real
// HTTP client and test fakes both satisfy it.
type API interface {
	SearchDatabase(ctx context.Context, title string) (string, error)
	CreateDatabase(ctx context.Context, title string) (string, error)
	CreatePage(ctx context.Context, databaseID, title string, sessionDate time.Time, filename string, blocks []format.Block) (string, error)
	AppendBlocks(ctx context.Context, pageID string, blocks []format.Block) error
}

// Client is the HTTP implementation of API against the Notion REST surface.
type Client struct {
	cfg    common.NotionConfig
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg common.NotionConfig, httpClient *http.Client, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.notion.com/v1"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, http: httpClient, logger: logger}
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		"Authorization":  "Bearer " + c.cfg.Token,
		"Notion-Version": apiVersion,
	}
}

func (c *Client) url(path string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + path
}

// SearchDatabase looks for a database whose title exactly equals the given
// title. Returns "" when nothing matches.
func (c *Client) SearchDatabase(ctx context.Context, title string) (string, error) {
	body := map[string]any{
		"query":  title,
		"filter": map[string]any{"property": "object", "value": "database"},
	}
	raw, status, err := common.SendJSON(ctx, c.http, http.MethodPost, c.url("/search"), body, c.headers(), c.logger)
	if err != nil {
		return "", fmt.Errorf("search database: status %d: %w", status, err)
	}

	var sr struct {
		Results []struct {
			ID    string `json:"id"`
			Title []struct {
				PlainText string `json:"plain_text"`
			} `json:"title"`
		} `json:"results"`
	}
	if err := json.Unmarshal(raw, &sr); err != nil {
		return "", fmt.Errorf("decode search response: %w", err)
	}
	for _, r := range sr.Results {
		var sb strings.Builder
		for _, t := range r.Title {
			sb.WriteString(t.PlainText)
		}
		if sb.String() == title {
			return r.ID, nil
		}
	}
	return "", nil
}

// CreateDatabase creates the per-client database with the fixed schema:
// title, session date, filename, and notes properties.
func (c *Client) CreateDatabase(ctx context.Context, title string) (string, error) {
	body := map[string]any{
		"parent": map[string]any{"type": "page_id", "page_id": c.cfg.ParentPageID},
		"title":  []map[string]any{{"type": "text", "text": map[string]any{"content": title}}},
		"properties": map[string]any{
			"Name":         map[string]any{"title": map[string]any{}},
			"Session Date": map[string]any{"date": map[string]any{}},
			"Filename":     map[string]any{"rich_text": map[string]any{}},
			"Notes":        map[string]any{"rich_text": map[string]any{}},
		},
	}
	raw, status, err := common.SendJSON(ctx, c.http, http.MethodPost, c.url("/databases"), body, c.headers(), c.logger)
	if err != nil {
		return "", fmt.Errorf("create database: status %d: %w", status, err)
	}

	var cr struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &cr); err != nil {
		return "", fmt.Errorf("decode create database response: %w", err)
	}
	if cr.ID == "" {
		return "", fmt.Errorf("create database: empty id in response")
	}
	return cr.ID, nil
}

// CreatePage creates one session entry with its first batch of blocks.
func (c *Client) CreatePage(ctx context.Context, databaseID, title string, sessionDate time.Time, filename string, blocks []format.Block) (string, error) {
	body := map[string]any{
		"parent": map[string]any{"database_id": databaseID},
		"properties": map[string]any{
			"Name": map[string]any{
				"title": []map[string]any{{"text": map[string]any{"content": title}}},
			},
			"Session Date": map[string]any{
				"date": map[string]any{"start": sessionDate.Format("2006-01-02")},
			},
			"Filename": map[string]any{
				"rich_text": []map[string]any{{"text": map[string]any{"content": filename}}},
			},
		},
		"children": encodeBlocks(blocks),
	}
	raw, status, err := common.SendJSON(ctx, c.http, http.MethodPost, c.url("/pages"), body, c.headers(), c.logger)
	if err != nil {
		return "", fmt.Errorf("create page: status %d: %w", status, err)
	}

	var pr struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &pr); err != nil {
		return "", fmt.Errorf("decode create page response: %w", err)
	}
	if pr.ID == "" {
		return "", fmt.Errorf("create page: empty id in response")
	}
	return pr.ID, nil
}

// AppendBlocks appends one batch of blocks to an existing page.
func (c *Client) AppendBlocks(ctx context.Context, pageID string, blocks []format.Block) error {
	body := map[string]any{"children": encodeBlocks(blocks)}
	endpoint := c.url("/blocks/" + pageID + "/children")
	_, status, err := common.SendJSON(ctx, c.http, http.MethodPatch, endpoint, body, c.headers(), c.logger)
	if err != nil {
		return fmt.Errorf("append blocks: status %d: %w", status, err)
	}
	return nil
}

// encodeBlocks maps formatter blocks onto the store's block payloads.
func encodeBlocks(blocks []format.Block) []map[string]any {
	out := make([]map[string]any, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, encodeBlock(b))
	}
	return out
}

func encodeBlock(b format.Block) map[string]any {
	rich := []map[string]any{{
		"type": "text",
		"text": map[string]any{"content": b.Text},
	}}
	if b.Italic {
		rich[0]["annotations"] = map[string]any{"italic": true}
	}

	var kind string
	switch b.Type {
	case format.BlockHeading:
		if b.Level <= 2 {
			kind = "heading_2"
		} else {
			kind = "heading_3"
		}
	case format.BlockBullet:
		kind = "bulleted_list_item"
	case format.BlockQuote:
		kind = "quote"
	default:
		kind = "paragraph"
	}

	return map[string]any{
		"object": "block",
		"type":   kind,
		kind:     map[string]any{"rich_text": rich},
	}
}
