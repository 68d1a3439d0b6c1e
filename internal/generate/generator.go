// Package generate forwards prompts that cleared moderation to the
// downstream generative model.
package generate

import (
	"context"
	"fmt"

	"github.com/modguard/promptgate/internal/llm"
	"github.com/rs/zerolog"
)

type Generator struct {
	client      llm.LLMClient
	maxTokens   int
	temperature float64
	logger      *zerolog.Logger
}

func NewGenerator(client llm.LLMClient, maxTokens int, temperature float64, logger *zerolog.Logger) *Generator {
	if maxTokens == 0 {
		maxTokens = 512
	}
	return &Generator{
		client:      client,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

// Generate returns the downstream model's response for prompt. Failures are
// returned as errors for the caller to surface in the response field; they
// are never a pipeline failure.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.InvokeModelWithRetry(ctx, llm.LLMRequest{
		Prompt:      prompt,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("downstream model call failed: %w", err)
	}

	g.logger.Debug().
		Str("stop_reason", resp.StopReason).
		Msg("downstream generation complete")

	return resp.Content, nil
}
