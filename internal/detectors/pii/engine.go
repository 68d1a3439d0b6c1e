// Package pii detects personally identifiable information with a set of
// compiled regex recognizers. Each recognizer carries a confidence score
// reflecting how specifically its pattern identifies the target entity type;
// matches below the configured floor are dropped. Custom recognizers from
// the settings file are composed into the set at startup, not per request.
package pii

import (
	"context"
	"fmt"
	"regexp"

	"github.com/modguard/promptgate/internal/config"
	"github.com/modguard/promptgate/internal/models"
	"github.com/rs/zerolog"
)

type recognizer struct {
	entityType string
	re         *regexp.Regexp
	confidence float64
	highRisk   bool
}

type Engine struct {
	recognizers []recognizer
	highRisk    map[string]bool
	scoreFloor  float64
	logger      *zerolog.Logger
}

// Built-in recognizer set. Confidence reflects false-positive risk:
// 0.90+ means the pattern is structurally unambiguous, below 0.70 means the
// pattern matches plenty of non-PII text.
var builtinRecognizers = []struct {
	entityType string
	expr       string
	confidence float64
}{
	{"EMAIL_ADDRESS", `\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`, 0.95},
	{"US_SSN", `\b\d{3}-\d{2}-\d{4}\b`, 0.85},
	{"CREDIT_CARD", `\b(?:\d{4}[\-\s]?){3}\d{4}\b`, 0.85},
	{"IP_ADDRESS", `\b(?:[0-9]{1,3}\.){3}[0-9]{1,3}\b`, 0.70},
	{"PHONE_NUMBER", `\b(\+?1[\-.\s]?)?\(?[0-9]{3}\)?[\-.\s][0-9]{3}[\-.\s]?[0-9]{4}\b`, 0.65},
}

// NewEngine compiles the built-in recognizers plus the custom ones from the
// settings file. A custom pattern that does not compile fails construction;
// the caller treats that as the detector engine being unavailable.
func NewEngine(custom []config.RecognizerConfig, highRiskEntities []string, scoreFloor float64, logger *zerolog.Logger) (*Engine, error) {
	engine := &Engine{
		highRisk:   make(map[string]bool, len(highRiskEntities)),
		scoreFloor: scoreFloor,
		logger:     logger,
	}

	for _, entityType := range highRiskEntities {
		engine.highRisk[entityType] = true
	}

	for _, b := range builtinRecognizers {
		re, err := regexp.Compile(b.expr)
		if err != nil {
			return nil, fmt.Errorf("failed to compile built-in recognizer %s: %w", b.entityType, err)
		}
		engine.recognizers = append(engine.recognizers, recognizer{
			entityType: b.entityType,
			re:         re,
			confidence: b.confidence,
			highRisk:   engine.highRisk[b.entityType],
		})
	}

	for _, c := range custom {
		re, err := regexp.Compile(c.Pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile custom recognizer %s: %w", c.EntityType, err)
		}
		engine.recognizers = append(engine.recognizers, recognizer{
			entityType: c.EntityType,
			re:         re,
			confidence: c.Confidence,
			highRisk:   c.HighRisk,
		})
		if c.HighRisk {
			engine.highRisk[c.EntityType] = true
		}
		logger.Info().
			Str("entity_type", c.EntityType).
			Bool("high_risk", c.HighRisk).
			Msg("registered custom PII recognizer")
	}

	return engine, nil
}

// Detect reports every recognizer match in text. Spans are byte offsets into
// the original text and are returned in recognizer order, so overlapping or
// unsorted spans are possible; the redaction engine orders them itself.
func (e *Engine) Detect(ctx context.Context, text string) ([]models.PIIEntity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entities []models.PIIEntity
	for _, r := range e.recognizers {
		if r.confidence < e.scoreFloor {
			continue
		}
		for _, loc := range r.re.FindAllStringIndex(text, -1) {
			entities = append(entities, models.PIIEntity{
				Span: models.PIISpan{
					Start:      loc[0],
					End:        loc[1],
					EntityType: r.entityType,
				},
				Confidence: r.confidence,
			})
		}
	}

	return entities, nil
}

// HighRisk reports whether the presence of the entity type alone forces a
// Blocked verdict.
func (e *Engine) HighRisk(entityType string) bool {
	return e.highRisk[entityType]
}
