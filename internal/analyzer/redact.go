package analyzer

import (
	"sort"

	"github.com/modguard/promptgate/internal/models"
)

// Redact replaces every span in text with a [ENTITY_TYPE] placeholder.
// Spans are applied in descending start-offset order so a replacement never
// shifts the offsets of spans not yet applied; ties are broken by descending
// end offset, then by entity-type name descending, which makes the result a
// deterministic total order even for overlapping detections.
//
// When spans is empty the input is returned unchanged; callers compare the
// result against the original to decide whether to surface a redacted
// rendering at all.
func Redact(text string, spans []models.PIISpan) string {
	if len(spans) == 0 {
		return text
	}

	ordered := make([]models.PIISpan, len(spans))
	copy(ordered, spans)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Start != ordered[j].Start {
			return ordered[i].Start > ordered[j].Start
		}
		if ordered[i].End != ordered[j].End {
			return ordered[i].End > ordered[j].End
		}
		return ordered[i].EntityType > ordered[j].EntityType
	})

	redacted := text
	for _, span := range ordered {
		start, end := span.Start, span.End
		// Overlapping spans may reach into text already replaced by a
		// placeholder; clamp instead of crashing.
		if start < 0 {
			start = 0
		}
		if end > len(redacted) {
			end = len(redacted)
		}
		if start >= len(redacted) || end <= start {
			continue
		}
		redacted = redacted[:start] + "[" + span.EntityType + "]" + redacted[end:]
	}

	return redacted
}
