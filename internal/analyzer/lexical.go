package analyzer

import (
	"fmt"
	"strings"

	"github.com/modguard/promptgate/internal/models"
)

// Matcher scans prompt text against the blocked and flagged keyword lists.
// Matching is lowercase substring matching with no further normalization:
// no stemming, no whitespace collapsing, no token boundaries. That keeps the
// rule semantics trivial to reason about, at the cost of known false
// positives such as "password" matching inside "passwordless".
type Matcher struct {
	blocked []string
	flagged []string
}

// NewMatcher pre-lowercases both keyword lists at load time so each request
// only lowercases the prompt once.
func NewMatcher(blocked, flagged []string) *Matcher {
	return &Matcher{
		blocked: lowercaseAll(blocked),
		flagged: lowercaseAll(flagged),
	}
}

// Match reports one finding per matching keyword, blocked keywords first.
// Duplicates are allowed when multiple keywords match the same text.
func (m *Matcher) Match(text string) []models.Finding {
	lower := strings.ToLower(text)

	var findings []models.Finding
	for _, keyword := range m.blocked {
		if strings.Contains(lower, keyword) {
			findings = append(findings, models.Finding{
				Kind:    models.FindingKeywordBlocked,
				Message: fmt.Sprintf("Contains a blocked keyword: %q.", keyword),
				Label:   keyword,
			})
		}
	}
	for _, keyword := range m.flagged {
		if strings.Contains(lower, keyword) {
			findings = append(findings, models.Finding{
				Kind:    models.FindingKeywordFlagged,
				Message: fmt.Sprintf("Contains a flagged keyword: %q.", keyword),
				Label:   keyword,
			})
		}
	}

	return findings
}

func lowercaseAll(keywords []string) []string {
	lower := make([]string, len(keywords))
	for i, keyword := range keywords {
		lower[i] = strings.ToLower(keyword)
	}
	return lower
}
