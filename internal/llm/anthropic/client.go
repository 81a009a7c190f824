package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/damilare-ak/clinicnote/internal/common"
)

const apiVersion = "2023-06-01"

// Client calls the Anthropic messages API.
type Client struct {
	cfg    common.ProviderConfig
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg common.ProviderConfig, httpClient *http.Client, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "claude-3-5-sonnet-20241022"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4000
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, http: httpClient, logger: logger}
}

func (c *Client) Name() string { return "anthropic" }

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	body := map[string]any{
		"model":       c.cfg.Model,
		"max_tokens":  c.cfg.MaxTokens,
		"temperature": c.cfg.Temperature,
		"messages": []map[string]any{
			{"role": "user", "content": prompt},
		},
	}
	headers := map[string]string{
		"x-api-key":         c.cfg.APIKey,
		"anthropic-version": apiVersion,
	}
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/messages"

	raw, status, err := common.SendJSON(ctx, c.http, http.MethodPost, endpoint, body, headers, c.logger)
	if err != nil {
		return "", fmt.Errorf("%w: anthropic status %d: %v", common.ErrProviderUnavailable, status, err)
	}

	var mr struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &mr); err != nil {
		return "", fmt.Errorf("%w: decode anthropic response: %v", common.ErrProviderMalformed, err)
	}
	for _, block := range mr.Content {
		if block.Type == "text" && block.Text != "" {
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", fmt.Errorf("%w: no text content in anthropic response", common.ErrProviderMalformed)
}
