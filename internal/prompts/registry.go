package prompts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/docuglot/docuglot/internal/config"
)

// httpRegistry talks to the prompt registry's public HTTP API.
type httpRegistry struct {
	baseURL    string
	apiKey     string
	projectTag string
	listLimit  int
	client     *http.Client
}

// NewRegistry creates a Registry backed by the configured HTTP endpoint.
func NewRegistry(cfg *config.PromptsConfig) Registry {
	return &httpRegistry{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		projectTag: cfg.ProjectTag,
		listLimit:  cfg.ListLimit,
		client:     &http.Client{Timeout: cfg.RequestTimeoutDuration()},
	}
}

type listResponse struct {
	Data []Meta `json:"data"`
}

func (r *httpRegistry) ListPrompts(ctx context.Context) ([]Meta, error) {
	endpoint := fmt.Sprintf("%s/api/public/v2/prompts?tag=%s&limit=%s",
		r.baseURL,
		url.QueryEscape(r.projectTag),
		strconv.Itoa(r.listLimit),
	)

	body, err := r.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse prompt list: %w", err)
	}

	return resp.Data, nil
}

type promptResponse struct {
	Name   string          `json:"name"`
	Type   string          `json:"type"`
	Prompt json.RawMessage `json:"prompt"`
	Tags   []string        `json:"tags"`
}

func (r *httpRegistry) GetChatPrompt(ctx context.Context, name string) ([]ChatMessage, error) {
	resp, err := r.getPrompt(ctx, name)
	if err != nil {
		return nil, err
	}
	if resp.Type != TypeChat {
		return nil, fmt.Errorf("prompt %q has type %q, expected chat", name, resp.Type)
	}

	var messages []ChatMessage
	if err := json.Unmarshal(resp.Prompt, &messages); err != nil {
		return nil, fmt.Errorf("parse chat prompt %q: %w", name, err)
	}

	return messages, nil
}

func (r *httpRegistry) GetTextPrompt(ctx context.Context, name string) (string, error) {
	resp, err := r.getPrompt(ctx, name)
	if err != nil {
		return "", err
	}
	if resp.Type != TypeText {
		return "", fmt.Errorf("prompt %q has type %q, expected text", name, resp.Type)
	}

	var text string
	if err := json.Unmarshal(resp.Prompt, &text); err != nil {
		return "", fmt.Errorf("parse text prompt %q: %w", name, err)
	}

	return text, nil
}

func (r *httpRegistry) getPrompt(ctx context.Context, name string) (*promptResponse, error) {
	endpoint := fmt.Sprintf("%s/api/public/v2/prompts/%s", r.baseURL, url.PathEscape(name))

	body, err := r.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var resp promptResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse prompt %q: %w", name, err)
	}

	return &resp, nil
}

func (r *httpRegistry) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("prompt registry request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read registry response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("prompt registry returned %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
