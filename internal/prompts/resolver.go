package prompts

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/docuglot/docuglot/internal/inference"
	"github.com/docuglot/docuglot/internal/processing"
)

// Resolver composes the prompt messages for a processing run.
type Resolver struct {
	registry Registry
	logger   *slog.Logger
}

// NewResolver creates a Resolver backed by the given registry.
func NewResolver(registry Registry, logger *slog.Logger) *Resolver {
	return &Resolver{
		registry: registry,
		logger:   logger.With("system", "prompts"),
	}
}

// Resolve selects and fetches the chat prompt for (mode, source, target),
// appends any matching glossary prompts as additional system messages, and
// returns the ordered message sequence to prepend to the model call.
func (r *Resolver) Resolve(ctx context.Context, mode processing.Mode, source, target processing.Language) ([]inference.Message, error) {
	metas, err := r.registry.ListPrompts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}

	chatName, err := SelectChatPrompt(metas, mode, source, target)
	if err != nil {
		return nil, err
	}

	chat, err := r.registry.GetChatPrompt(ctx, chatName)
	if err != nil {
		return nil, fmt.Errorf("get chat prompt %q: %w", chatName, err)
	}

	messages := make([]inference.Message, 0, len(chat)+2)
	for _, m := range chat {
		messages = append(messages, inference.Message{Role: m.Role, Content: m.Content})
	}

	for _, name := range SelectGlossaries(metas, source, target) {
		text, err := r.registry.GetTextPrompt(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("get glossary prompt %q: %w", name, err)
		}
		messages = append(messages, inference.Message{Role: inference.RoleSystem, Content: text})
	}

	r.logger.Debug("prompt resolved",
		"chat_prompt", chatName,
		"mode", string(mode),
		"messages", len(messages),
	)

	return messages, nil
}

// SelectChatPrompt picks the chat prompt name for the given mode and
// language pair from prompt metadata. Candidates must carry the mode tag;
// modes with a translation target additionally require the target language
// tag. A prompt tagged with the concrete source language outranks a generic
// any-source variant, and among equals the name that orders the source code
// before the target code wins. Returns ErrInvalidPromptConfig when nothing
// matches.
func SelectChatPrompt(metas []Meta, mode processing.Mode, source, target processing.Language) (string, error) {
	modeTag := mode.PromptTag()

	var exact, generic []Meta
	for _, m := range metas {
		if m.Type != TypeChat || !slices.Contains(m.Tags, modeTag) {
			continue
		}
		if mode.RequiresTarget() && !slices.Contains(m.Tags, string(target)) {
			continue
		}

		switch {
		case !source.IsAuto() && slices.Contains(m.Tags, string(source)):
			exact = append(exact, m)
		case slices.Contains(m.Tags, anyLanguageTag) || source.IsAuto():
			generic = append(generic, m)
		}
	}

	candidates := exact
	if len(candidates) == 0 {
		candidates = generic
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: mode=%s source=%s target=%s",
			ErrInvalidPromptConfig, mode, source, target)
	}

	slices.SortFunc(candidates, func(a, b Meta) int {
		ra, rb := nameRank(a.Name, source, target), nameRank(b.Name, source, target)
		if ra != rb {
			return ra - rb
		}
		return strings.Compare(a.Name, b.Name)
	})

	return candidates[0].Name, nil
}

// SelectGlossaries returns the names of glossary text prompts tagged with
// the source and/or target language, sorted for deterministic ordering.
func SelectGlossaries(metas []Meta, source, target processing.Language) []string {
	var names []string
	for _, m := range metas {
		if m.Type != TypeText || !slices.Contains(m.Tags, glossaryTag) {
			continue
		}
		if slices.Contains(m.Tags, string(source)) || slices.Contains(m.Tags, string(target)) {
			names = append(names, m.Name)
		}
	}

	slices.Sort(names)
	return names
}

// nameRank orders prompt names: 0 if the name mentions the source code
// before the target code, 1 otherwise. Lower ranks sort first.
func nameRank(name string, source, target processing.Language) int {
	si := strings.Index(name, string(source))
	ti := strings.Index(name, string(target))
	if si >= 0 && ti >= 0 && si < ti {
		return 0
	}
	return 1
}
