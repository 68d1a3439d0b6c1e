package analyzer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/modguard/promptgate/internal/config"
	"github.com/modguard/promptgate/internal/models"
	"github.com/rs/zerolog"
)

// PIIDetector is the entity-recognition capability the pipeline depends on.
type PIIDetector interface {
	Detect(ctx context.Context, text string) ([]models.PIIEntity, error)
	HighRisk(entityType string) bool
}

// ToxicityClassifier produces a score in [0,1] per toxicity label.
type ToxicityClassifier interface {
	Classify(ctx context.Context, text string) (map[string]float64, error)
}

// Generator is the downstream generation capability, invoked only for
// prompts that clear moderation.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Pipeline runs the moderation stages in order: length check, keyword
// rules, PII detection, toxicity classification, then redaction and the
// optional downstream generation call. The verdict escalates monotonically
// across stages and never reverts within a run.
type Pipeline struct {
	settings  *config.Settings
	matcher   *Matcher
	pii       PIIDetector
	toxicity  ToxicityClassifier
	generator Generator
	degraded  bool
	logger    *zerolog.Logger
}

func NewPipeline(
	settings *config.Settings,
	pii PIIDetector,
	toxicity ToxicityClassifier,
	generator Generator,
	logger *zerolog.Logger,
) *Pipeline {
	return &Pipeline{
		settings:  settings,
		matcher:   NewMatcher(settings.BlockedKeywords, settings.FlaggedKeywords),
		pii:       pii,
		toxicity:  toxicity,
		generator: generator,
		degraded:  pii == nil || toxicity == nil,
		logger:    logger,
	}
}

// Analyze produces the moderation verdict, the ordered reason list, and the
// redacted rendering for one prompt. Detector invocation failures become
// error-kind findings; they never abort the run.
func (p *Pipeline) Analyze(ctx context.Context, prompt string) models.AnalysisResult {
	result := models.AnalysisResult{
		Prompt:  prompt,
		Status:  models.VerdictSafe,
		Reasons: []models.Finding{},
	}

	if length := utf8.RuneCountInString(prompt); length > p.settings.MaxPromptLength {
		result.Reasons = append(result.Reasons, models.Finding{
			Kind: models.FindingLengthWarning,
			Message: fmt.Sprintf("Prompt length exceeds recommended limit of %d characters. Result may be less accurate.",
				p.settings.MaxPromptLength),
		})
	}

	lexical := p.matcher.Match(prompt)
	result.Reasons = append(result.Reasons, lexical...)

	// Degraded engine: the detectors failed to initialize at process start.
	// Keyword rules still apply; PII and toxicity stages are skipped and the
	// run is at least Flagged.
	if p.degraded {
		result.Reasons = append(result.Reasons, models.Finding{
			Kind:    models.FindingAnalysisError,
			Message: "Analysis engines failed to load. Only keyword checks are active.",
		})
		result.Status = Aggregate(lexical, nil, false, nil, false).Escalate(models.VerdictFlagged)
		p.logger.Warn().Str("status", string(result.Status)).Msg("analysis ran in degraded mode")
		return result
	}

	piiFindings, piiHighRisk, redacted := p.runPII(ctx, prompt)
	result.Reasons = append(result.Reasons, piiFindings...)

	toxicFindings, toxicSevere := p.runToxicity(ctx, prompt)
	result.Reasons = append(result.Reasons, toxicFindings...)

	result.Status = Aggregate(lexical, piiFindings, piiHighRisk, toxicFindings, toxicSevere)

	if redacted != prompt {
		result.RedactedPrompt = redacted
	}

	if result.Status == models.VerdictSafe && p.generator != nil {
		response, err := p.generator.Generate(ctx, prompt)
		if err != nil {
			p.logger.Error().Err(err).Msg("downstream generation failed")
			response = fmt.Sprintf("Downstream generation failed: %v", err)
		}
		result.DownstreamResponse = response
	}

	p.logger.Info().
		Str("status", string(result.Status)).
		Int("reasons", len(result.Reasons)).
		Bool("redacted", result.RedactedPrompt != "").
		Msg("analysis complete")

	return result
}

// runPII invokes the detector, builds the summary finding and the redacted
// text, and reports whether a high-risk entity type was present. A detector
// failure yields a single error finding and no findings of kind pii.
func (p *Pipeline) runPII(ctx context.Context, prompt string) (findings []models.Finding, highRisk bool, redacted string) {
	redacted = prompt

	entities, err := p.pii.Detect(ctx, prompt)
	if err != nil {
		p.logger.Error().Err(err).Msg("PII analysis failed")
		return []models.Finding{{
			Kind:    models.FindingAnalysisError,
			Message: "PII analysis failed.",
		}}, false, prompt
	}
	if len(entities) == 0 {
		return nil, false, prompt
	}

	seen := make(map[string]bool)
	var entityTypes []string
	spans := make([]models.PIISpan, 0, len(entities))
	for _, entity := range entities {
		spans = append(spans, entity.Span)
		if p.pii.HighRisk(entity.Span.EntityType) {
			highRisk = true
		}
		if !seen[entity.Span.EntityType] {
			seen[entity.Span.EntityType] = true
			entityTypes = append(entityTypes, entity.Span.EntityType)
		}
	}
	sort.Strings(entityTypes)

	findings = []models.Finding{{
		Kind:    models.FindingPII,
		Message: fmt.Sprintf("Contains Personal Identifiable Information (PII): %s.", strings.Join(entityTypes, ", ")),
	}}

	return findings, highRisk, Redact(prompt, spans)
}

// runToxicity invokes the classifier and reports one finding per label whose
// score strictly exceeds its configured threshold, in label order. A
// classifier failure yields a single error finding.
func (p *Pipeline) runToxicity(ctx context.Context, prompt string) (findings []models.Finding, severe bool) {
	scores, err := p.toxicity.Classify(ctx, prompt)
	if err != nil {
		p.logger.Error().Err(err).Msg("toxicity analysis failed")
		return []models.Finding{{
			Kind:    models.FindingAnalysisError,
			Message: "Toxicity analysis failed.",
		}}, false
	}

	labels := make([]string, 0, len(scores))
	for label := range scores {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		threshold, configured := p.settings.ToxicityThresholds[label]
		if !configured {
			continue
		}
		score := scores[label]
		if score > threshold {
			findings = append(findings, models.Finding{
				Kind:    models.FindingToxic,
				Message: fmt.Sprintf("Detected '%s' with score %.2f.", label, score),
				Label:   label,
				Score:   score,
			})
			if label == labelSevereToxicity || label == labelThreat {
				severe = true
			}
		}
	}

	return findings, severe
}
