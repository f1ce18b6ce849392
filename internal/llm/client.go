package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/youssefmaimouni/can2025-chat/pkg/circuitbreaker"
	"github.com/youssefmaimouni/can2025-chat/pkg/logger"
)

// Client talks to an OpenAI-compatible chat completions endpoint (OpenRouter
// in production). Each call is a single attempt with a bounded timeout; there
// is no retry because callers have their own fallback behavior, and the
// circuit breaker keeps a dead upstream from eating the full timeout on every
// request.
type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	cb          *circuitbreaker.Breaker
}

func NewClient(baseURL, apiKey, model string, temperature float32, maxTokens, timeoutSec int) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	if maxTokens <= 0 {
		maxTokens = 500
	}
	if timeoutSec <= 0 {
		timeoutSec = 60
	}

	cb := circuitbreaker.New("llm", circuitbreaker.Config{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Cooldown:         30 * time.Second,
		Logger:           logger.GetLogger(),
	})

	logger.Info("LLM client initialized",
		zap.String("base_url", cfg.BaseURL),
		zap.String("model", model),
		zap.Int("max_tokens", maxTokens),
	)

	return &Client{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		timeout:     time.Duration(timeoutSec) * time.Second,
		cb:          cb,
	}
}

// Complete sends a system prompt and a user prompt and returns the first
// choice's content. Any failure, including an empty choice list, comes back
// as an error for the caller's fallback path.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: userPrompt,
		},
	}

	var content string

	err := c.cb.Execute(ctx, func() error {
		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       c.model,
			Messages:    messages,
			Temperature: c.temperature,
			MaxTokens:   c.maxTokens,
		})
		if err != nil {
			return fmt.Errorf("chat completion failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			return errors.New("chat completion returned no choices")
		}

		logger.Debug("LLM completion generated",
			zap.Int("prompt_tokens", resp.Usage.PromptTokens),
			zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		)

		content = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", err
	}

	return content, nil
}
