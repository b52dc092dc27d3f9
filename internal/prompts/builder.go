package prompts

import (
	"fmt"
	"strings"

	"github.com/quillworks/quill/internal/orchestrator"
)

// PromptBuilder composes a registered prompt with fragments and {{key}}
// variable substitution.
type PromptBuilder struct {
	basePrompt *Prompt
	fragments  []string
	variables  map[string]string
}

// NewPromptBuilder starts a builder from a registered prompt.
func NewPromptBuilder(registry *PromptRegistry, id string, version PromptVersion) (*PromptBuilder, error) {
	basePrompt, err := registry.Get(id, version)
	if err != nil {
		return nil, fmt.Errorf("failed to get base prompt: %w", err)
	}
	return &PromptBuilder{
		basePrompt: basePrompt,
		fragments:  []string{basePrompt.Content},
		variables:  make(map[string]string),
	}, nil
}

// AddFragment appends text to the prompt.
func (b *PromptBuilder) AddFragment(text string) *PromptBuilder {
	b.fragments = append(b.fragments, text)
	return b
}

// SetVariable sets a {{key}} substitution.
func (b *PromptBuilder) SetVariable(key, value string) *PromptBuilder {
	b.variables[key] = value
	return b
}

// Build produces the final prompt string.
func (b *PromptBuilder) Build() (string, error) {
	result := strings.Join(b.fragments, "\n\n")
	for key, value := range b.variables {
		result = strings.ReplaceAll(result, fmt.Sprintf("{{%s}}", key), value)
	}
	return result, nil
}

// UnifiedSystemPrompt renders the orchestrator system prompt with the
// request's structured context folded in.
func UnifiedSystemPrompt(req *orchestrator.GenerationRequest) (string, error) {
	b, err := NewPromptBuilder(DefaultRegistry(), "unified", PromptV1)
	if err != nil {
		return "", err
	}
	b.SetVariable("request_context", renderRequestContext(req))
	return b.Build()
}

func renderRequestContext(req *orchestrator.GenerationRequest) string {
	if req == nil {
		return ""
	}

	var lines []string
	if req.ContentTypeHint != "" {
		lines = append(lines, fmt.Sprintf("- Preferred content type: %s", req.ContentTypeHint))
	}
	if c := req.Context; c != nil {
		add := func(label, value string) {
			if value != "" {
				lines = append(lines, fmt.Sprintf("- %s: %s", label, value))
			}
		}
		add("Topic", c.Topic)
		add("Instructions", c.Instructions)
		add("Audience", c.Audience)
		add("Tone", c.Tone)
		add("Difficulty", c.Difficulty)
		add("Resource name", c.ResourceName)
		add("Official URL", c.OfficialURL)
		add("Docs URL", c.DocsURL)
		add("GitHub URL", c.GithubURL)
		if c.WordCount > 0 {
			lines = append(lines, fmt.Sprintf("- Target word count: %d", c.WordCount))
		}
		if c.ResourceID != 0 {
			lines = append(lines, fmt.Sprintf("- Associate content with resource id %d", c.ResourceID))
		}
		if c.CategoryID != 0 {
			lines = append(lines, fmt.Sprintf("- Use category id %d", c.CategoryID))
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return "\n\nRequest context:\n" + strings.Join(lines, "\n")
}
