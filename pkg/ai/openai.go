package ai

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var _ Completion = (*Service)(nil)

// Service wraps the OpenAI chat completions API behind the Completion
// interface so callers can be given fakes in tests.
type Service struct {
	client      *openai.Client
	logger      *log.Logger
	temperature float64
	maxTokens   int64
}

type Option func(*Service)

// WithTemperature overrides the default sampling temperature. Extraction
// callers want a low value to bias toward consistent structured output.
func WithTemperature(t float64) Option {
	return func(s *Service) { s.temperature = t }
}

// WithMaxTokens caps completion length to bound cost and truncation risk.
func WithMaxTokens(n int64) Option {
	return func(s *Service) { s.maxTokens = n }
}

func NewOpenAIService(logger *log.Logger, apiKey string, baseURL string, opts ...Option) *Service {
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	)
	svc := &Service{
		client:      &client,
		logger:      logger,
		temperature: 1.0,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (s *Service) Completions(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, tools []openai.ChatCompletionToolParam, model string) (openai.ChatCompletionMessage, error) {
	params := openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       model,
		Temperature: openai.Float(s.temperature),
	}
	if len(tools) > 0 {
		params.Tools = tools
	}
	if s.maxTokens > 0 {
		params.MaxTokens = openai.Int(s.maxTokens)
	}

	completion, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return openai.ChatCompletionMessage{}, err
	}

	if len(completion.Choices) == 0 {
		return openai.ChatCompletionMessage{}, fmt.Errorf("OpenAI returned no completion choices")
	}

	return completion.Choices[0].Message, nil
}
