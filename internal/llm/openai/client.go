package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/damilare-ak/clinicnote/internal/common"
)

// Client calls the OpenAI chat completions API.
type Client struct {
	cfg    common.ProviderConfig
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg common.ProviderConfig, httpClient *http.Client, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
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

func (c *Client) Name() string { return "openai" }

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"max_tokens":  c.cfg.MaxTokens,
		"messages": []map[string]any{
			{"role": "user", "content": prompt},
		},
	}
	headers := map[string]string{
		"Authorization": "Bearer " + c.cfg.APIKey,
	}
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"

	raw, status, err := common.SendJSON(ctx, c.http, http.MethodPost, endpoint, body, headers, c.logger)
	if err != nil {
		return "", fmt.Errorf("%w: openai status %d: %v", common.ErrProviderUnavailable, status, err)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return "", fmt.Errorf("%w: decode openai response: %v", common.ErrProviderMalformed, err)
	}
	if len(cc.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in openai response", common.ErrProviderMalformed)
	}
	return strings.TrimSpace(cc.Choices[0].Message.Content), nil
}
