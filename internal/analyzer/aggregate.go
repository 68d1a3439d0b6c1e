package analyzer

import (
	"github.com/modguard/promptgate/internal/models"
)

// Labels whose presence over threshold forces a Blocked verdict.
const (
	labelSevereToxicity = "severe_toxicity"
	labelThreat         = "threat"
)

// Aggregate folds the stage outputs into a single verdict under the fixed
// escalation policy:
//
//   - any blocked-keyword finding forces Blocked
//   - a flagged-keyword finding escalates Safe to Flagged
//   - high-risk PII forces Blocked, other PII escalates Safe to Flagged
//   - severe_toxicity/threat force Blocked, other toxic findings escalate
//     Safe to Flagged
//
// The verdict is monotonic non-decreasing across stages: a later stage can
// only keep or raise the severity, never lower it. Flagged findings are
// still reported when the verdict is already Blocked; they just stop
// influencing it. Error-kind findings (a detector invocation failing at
// request time) never influence the verdict.
func Aggregate(lexical []models.Finding, pii []models.Finding, piiHighRisk bool, toxicity []models.Finding, toxicitySevere bool) models.Verdict {
	status := models.VerdictSafe

	for _, finding := range lexical {
		switch finding.Kind {
		case models.FindingKeywordBlocked:
			status = status.Escalate(models.VerdictBlocked)
		case models.FindingKeywordFlagged:
			status = status.Escalate(models.VerdictFlagged)
		}
	}

	if piiHighRisk {
		status = status.Escalate(models.VerdictBlocked)
	} else if hasKind(pii, models.FindingPII) {
		status = status.Escalate(models.VerdictFlagged)
	}

	if toxicitySevere {
		status = status.Escalate(models.VerdictBlocked)
	} else if hasKind(toxicity, models.FindingToxic) {
		status = status.Escalate(models.VerdictFlagged)
	}

	return status
}

func hasKind(findings []models.Finding, kind models.FindingKind) bool {
	for _, finding := range findings {
		if finding.Kind == kind {
			return true
		}
	}
	return false
}
