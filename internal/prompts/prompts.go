// Package prompts resolves the mode- and language-specific instruction
// messages sent to the model. Prompt text lives in an external registry;
// this package looks prompts up by tag, selects the best match, and
// composes the final message sequence.
package prompts

import (
	"context"
	"errors"
)

// Prompt types stored in the registry.
const (
	TypeChat = "chat"
	TypeText = "text"
)

// glossaryTag marks registry text prompts carrying domain glossaries.
const glossaryTag = "glossary"

// anyLanguageTag marks chat prompts applicable to any source language.
const anyLanguageTag = "any"

// Meta describes a registry prompt without its body.
type Meta struct {
	Name string   `json:"name"`
	Type string   `json:"type"`
	Tags []string `json:"tags"`
}

// ChatMessage is one role-tagged message of a chat prompt body.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Registry defines the external prompt registry operations.
type Registry interface {
	// ListPrompts returns metadata for all prompts carrying the project tag.
	ListPrompts(ctx context.Context) ([]Meta, error)

	// GetChatPrompt fetches a chat prompt's message sequence by name.
	GetChatPrompt(ctx context.Context, name string) ([]ChatMessage, error)

	// GetTextPrompt fetches a text prompt's raw body by name.
	GetTextPrompt(ctx context.Context, name string) (string, error)
}

// ErrInvalidPromptConfig indicates no chat prompt in the registry matches
// the requested mode and language pair. A missing prompt is a configuration
// failure, never a soft-fail path.
var ErrInvalidPromptConfig = errors.New("prompts: no chat prompt matches mode and language pair")
