// Package toxicity scores prompt text against a fixed label set using an
// LLM classifier behind the llm.LLMClient capability interface.
package toxicity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/modguard/promptgate/internal/llm"
	"github.com/rs/zerolog"
)

// DefaultLabels is the label set scored by the classifier. It matches the
// configurable threshold table keys.
var DefaultLabels = []string{
	"toxicity",
	"severe_toxicity",
	"obscene",
	"threat",
	"insult",
	"identity_attack",
}

const classifierPrompt = `You are a content moderation classifier.
Score the text below for each of these categories: {{.Labels}}.

Respond with a single JSON object mapping every category name to a score
between 0.0 and 1.0, where 0.0 means the category is absent and 1.0 means it
is unmistakably present. Respond with JSON only, no explanation.

Text:
{{.Text}}`

type promptData struct {
	Labels string
	Text   string
}

type Classifier struct {
	client         llm.LLMClient
	labels         []string
	promptTemplate *template.Template
	maxTokens      int
	temperature    float64
	logger         *zerolog.Logger
}

func NewClassifier(client llm.LLMClient, labels []string, logger *zerolog.Logger) (*Classifier, error) {
	if client == nil {
		return nil, fmt.Errorf("toxicity classifier requires an LLM client")
	}
	if len(labels) == 0 {
		labels = DefaultLabels
	}

	tmpl, err := template.New("toxicity").Parse(classifierPrompt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse classifier prompt template: %w", err)
	}

	return &Classifier{
		client:         client,
		labels:         labels,
		promptTemplate: tmpl,
		maxTokens:      256,
		temperature:    0.0,
		logger:         logger,
	}, nil
}

// Classify returns a score in [0,1] per label. Any failure (transport,
// malformed model output, out-of-range score) is an error; the pipeline
// converts it into an analysis-error finding rather than failing the run.
func (c *Classifier) Classify(ctx context.Context, text string) (map[string]float64, error) {
	var buf bytes.Buffer
	if err := c.promptTemplate.Execute(&buf, promptData{
		Labels: strings.Join(c.labels, ", "),
		Text:   text,
	}); err != nil {
		return nil, fmt.Errorf("template execution failed: %w", err)
	}

	resp, err := c.client.InvokeModelWithRetry(ctx, llm.LLMRequest{
		Prompt:      buf.String(),
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("toxicity classification call failed: %w", err)
	}

	content := stripMarkdownCodeBlock(resp.Content)
	var scores map[string]float64
	if err := json.Unmarshal([]byte(content), &scores); err != nil {
		c.logger.Error().
			Err(err).
			Str("content", resp.Content).
			Msg("failed to deserialize classifier response")
		return nil, fmt.Errorf("failed to deserialize classifier response: %w", err)
	}

	for label, score := range scores {
		if score < 0.0 || score > 1.0 {
			return nil, fmt.Errorf("classifier returned score %f out of range [0.0, 1.0] for %q", score, label)
		}
	}

	return scores, nil
}

// stripMarkdownCodeBlock removes markdown code block formatting if present
func stripMarkdownCodeBlock(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		firstNewline := strings.Index(content, "\n")
		if firstNewline == -1 {
			return content
		}

		closingBackticks := strings.LastIndex(content, "```")
		if closingBackticks == -1 || closingBackticks <= firstNewline {
			return content
		}

		content = content[firstNewline+1 : closingBackticks]
		content = strings.TrimSpace(content)
	}

	return content
}
