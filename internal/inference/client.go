// Package inference provides the chat-completion client used for the single
// per-batch model call and for vision-model text recognition, plus cleanup
// of raw model output.
package inference

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/docuglot/docuglot/internal/config"
	"github.com/sashabaranov/go-openai"
)

// Message is a role-tagged prompt message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Message roles.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// visionInstruction is the fixed prompt for vision-model text recognition.
const visionInstruction = "Extract all text from the attached page images. " +
	"Return only the extracted text with no commentary. Preserve the original " +
	"language exactly. Use a literal dash (-) for illegible segments."

// Client defines the inference endpoint operations.
type Client interface {
	// ChatComplete sends the resolved prompt messages and returns the raw
	// model output.
	ChatComplete(ctx context.Context, messages []Message) (string, error)

	// RecognizeText sends page images to the vision model and returns the
	// recognized text.
	RecognizeText(ctx context.Context, pages [][]byte) (string, error)
}

type client struct {
	api             *openai.Client
	model           string
	visionModel     string
	temperature     float32
	maxOutputTokens int
	logger          *slog.Logger
}

// New creates an inference client from the endpoint configuration.
func New(cfg *config.InferenceConfig, logger *slog.Logger) Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	return &client{
		api:             openai.NewClientWithConfig(apiCfg),
		model:           cfg.Model,
		visionModel:     cfg.VisionModel,
		temperature:     cfg.Temperature,
		maxOutputTokens: cfg.MaxOutputTokens,
		logger:          logger.With("system", "inference"),
	}
}

func (c *client) ChatComplete(ctx context.Context, messages []Message) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxOutputTokens,
		Messages:    make([]openai.ChatCompletionMessage, len(messages)),
	}

	for i, m := range messages {
		req.Messages[i] = openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty response")
	}

	c.logger.Debug("chat completion finished",
		"model", c.model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)

	return resp.Choices[0].Message.Content, nil
}

func (c *client) RecognizeText(ctx context.Context, pages [][]byte) (string, error) {
	parts := make([]openai.ChatMessagePart, 0, len(pages)+1)
	parts = append(parts, openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeText,
		Text: visionInstruction,
	})

	for _, page := range pages {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    "data:image/png;base64," + base64.StdEncoding.EncodeToString(page),
				Detail: openai.ImageURLDetailHigh,
			},
		})
	}

	req := openai.ChatCompletionRequest{
		Model:       c.visionModel,
		Temperature: 0,
		MaxTokens:   c.maxOutputTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, MultiContent: parts},
		},
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("vision recognition: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("vision recognition: empty response")
	}

	return resp.Choices[0].Message.Content, nil
}
