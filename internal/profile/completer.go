package profile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"gopkg.in/yaml.v3"
)

// Usage is the token accounting for one completion.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// Completion is the result of one LLM request.
type Completion struct {
	Text  string
	Usage Usage
}

// CompleteOptions bound a single request.
type CompleteOptions struct {
	Model       string
	MaxTokens   int64
	Temperature float64
}

// Completer is the LLM capability the generator depends on. It has a
// single operation; the generator never sees a vendor SDK directly.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userMessage string, opts CompleteOptions) (Completion, error)
}

// Rates price completions in KRW per million tokens. Rates are
// configuration, not code.
type Rates struct {
	InputKRWPerMTok  float64 `yaml:"input_krw_per_mtok"`
	OutputKRWPerMTok float64 `yaml:"output_krw_per_mtok"`
}

// DefaultRates applies when no pricing file is configured.
var DefaultRates = Rates{
	InputKRWPerMTok:  4_200,
	OutputKRWPerMTok: 21_000,
}

// LoadRates reads a YAML pricing file.
func LoadRates(path string) (Rates, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Rates{}, fmt.Errorf("read rates: %w", err)
	}
	var r Rates
	if err := yaml.Unmarshal(raw, &r); err != nil {
		return Rates{}, fmt.Errorf("parse rates: %w", err)
	}
	if r.InputKRWPerMTok <= 0 || r.OutputKRWPerMTok <= 0 {
		return Rates{}, errors.New("rates must be positive")
	}
	return r, nil
}

// CostKRW prices a usage record, rounded down to whole won.
func (r Rates) CostKRW(u Usage) int64 {
	in := float64(u.InputTokens) / 1_000_000 * r.InputKRWPerMTok
	out := float64(u.OutputTokens) / 1_000_000 * r.OutputKRWPerMTok
	return int64(in + out)
}

// AnthropicMessager is the slice of the vendor client the completer
// needs; tests substitute fakes here.
type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// AnthropicCompleter implements Completer over the Anthropic messages API.
type AnthropicCompleter struct {
	messages AnthropicMessager
}

func NewAnthropicCompleter(messages AnthropicMessager) *AnthropicCompleter {
	return &AnthropicCompleter{messages: messages}
}

// NewAnthropicCompleterFromEnv constructs the completer from
// ANTHROPIC_API_KEY.
func NewAnthropicCompleterFromEnv() (*AnthropicCompleter, error) {
	apiKey := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY not configured")
	}
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicCompleter{messages: &c.Messages}, nil
}

func (a *AnthropicCompleter) Complete(ctx context.Context, systemPrompt, userMessage string, opts CompleteOptions) (Completion, error) {
	model := anthropic.Model(opts.Model)
	if opts.Model == "" {
		model = anthropic.ModelClaudeSonnet4_20250514
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	resp, err := a.messages.New(ctx, anthropic.MessageNewParams{
		Model:       model,
		MaxTokens:   maxTokens,
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(userMessage))},
		Temperature: anthropic.Float(opts.Temperature),
	})
	if err != nil {
		return Completion{}, err
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return Completion{
		Text: sb.String(),
		Usage: Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
		},
	}, nil
}
