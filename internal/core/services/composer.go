package services

import (
	"context"
	"errors"
	"strings"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
	"github.com/custodia-labs/weldsafe/internal/core/ports/driven"
	"github.com/custodia-labs/weldsafe/internal/policy"
	"github.com/custodia-labs/weldsafe/internal/tracing"
)

// Generation defaults.
const (
	DefaultAnswerMaxTokens = 1024
	DefaultMaxEmoji        = 2
)

var errEmptyCompletion = errors.New("empty completion")

// ComposerConfig tunes answer composition.
type ComposerConfig struct {
	// BlockThreshold is the visible length above which answers are split into blocks.
	BlockThreshold int

	// MaxTokens bounds the completion length.
	MaxTokens int

	// Persona overrides the default persona when its Role is set.
	Persona policy.Persona
}

// Composer turns retrieved chunks into a finished answer with one model call.
type Composer struct {
	llm      driven.LLMService
	prompts  driven.PromptStore
	persona  policy.Persona
	markup   policy.Markup
	cites    policy.CitationFormatter
	layout   policy.Layout
	emoji    policy.Emoji
	escalate policy.Escalation
	opts     driven.ChatOptions
}

// NewComposer creates a composer. prompts supplies the answer policy text.
func NewComposer(llm driven.LLMService, prompts driven.PromptStore, cfg ComposerConfig) *Composer {
	if cfg.BlockThreshold <= 0 {
		cfg.BlockThreshold = domain.DefaultBlockThreshold
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultAnswerMaxTokens
	}
	persona := cfg.Persona
	if persona.Role == "" {
		persona = policy.DefaultPersona()
	}
	return &Composer{
		llm:     llm,
		prompts: prompts,
		persona: persona,
		layout:  policy.Layout{Threshold: cfg.BlockThreshold},
		emoji:   policy.Emoji{Max: DefaultMaxEmoji},
		opts:    driven.ChatOptions{MaxTokens: cfg.MaxTokens},
	}
}

// Compose calls the model once and applies the answer policies to the
// completion: markup, citations, layout, emoji and, for emergencies,
// the stop-work directive. Blocks never hold the directive; an emergency
// Text is the directive followed by the rendered blocks.
func (c *Composer) Compose(
	ctx context.Context, query string, chunks []domain.RetrievedChunk, emergency policy.Emergency,
) (_ *domain.Answer, err error) {
	ctx, span := tracing.Start(ctx, "generate")
	defer func() { tracing.End(span, err) }()

	policyText, err := c.prompts.Load(driven.PromptAnswerPolicy)
	if err != nil {
		return nil, domain.NewGenerationCallError("load answer policy", err)
	}

	prompt := policy.PromptBuilder{Persona: c.persona, Policy: policyText}.Build(query, chunks, emergency)
	completion, err := c.llm.Chat(ctx, []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: prompt.System},
		{Role: driven.RoleUser, Content: prompt.User},
	}, c.opts)
	if err != nil {
		return nil, domain.NewGenerationCallError("chat", err)
	}

	text := strings.TrimSpace(completion)
	if text == "" {
		return nil, domain.NewGenerationCallError("chat", errEmptyCompletion)
	}

	text = c.markup.Sanitize(text)
	if emergency.Detected {
		text = c.escalate.Strip(text)
	}
	text, citations := c.cites.Enforce(text, chunks)
	text, blocks := c.layout.Apply(text)
	if blocks != nil {
		blocks = c.emoji.LimitBlocks(blocks)
		text = policy.Render(blocks)
	} else {
		text = c.emoji.Limit(text)
	}
	if emergency.Detected {
		text = c.escalate.Apply(text)
	}
	if strings.TrimSpace(policy.StripTags(text)) == "" {
		return nil, domain.NewGenerationCallError("compose", errEmptyCompletion)
	}

	return &domain.Answer{
		Text:      text,
		Blocks:    blocks,
		Emergency: emergency.Detected,
		Citations: citations,
		Sources:   chunks,
	}, nil
}
