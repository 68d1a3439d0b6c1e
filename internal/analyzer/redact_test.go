package analyzer

import (
	"strings"
	"testing"

	"github.com/modguard/promptgate/internal/models"
)

func TestRedact(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		spans []models.PIISpan
		want  string
	}{
		{
			name: "no spans returns input unchanged",
			text: "nothing sensitive here",
			want: "nothing sensitive here",
		},
		{
			name:  "single span",
			text:  "My SSN is 123-45-6789",
			spans: []models.PIISpan{{Start: 10, End: 21, EntityType: "US_SSN"}},
			want:  "My SSN is [US_SSN]",
		},
		{
			name: "multiple spans applied back to front",
			text: "call 555-123-4567 or mail a@b.com",
			spans: []models.PIISpan{
				{Start: 5, End: 17, EntityType: "PHONE_NUMBER"},
				{Start: 26, End: 33, EntityType: "EMAIL_ADDRESS"},
			},
			want: "call [PHONE_NUMBER] or mail [EMAIL_ADDRESS]",
		},
		{
			name: "unsorted spans give the same result",
			text: "call 555-123-4567 or mail a@b.com",
			spans: []models.PIISpan{
				{Start: 26, End: 33, EntityType: "EMAIL_ADDRESS"},
				{Start: 5, End: 17, EntityType: "PHONE_NUMBER"},
			},
			want: "call [PHONE_NUMBER] or mail [EMAIL_ADDRESS]",
		},
		{
			name: "same start ties broken by descending end",
			text: "abcdef",
			spans: []models.PIISpan{
				{Start: 0, End: 3, EntityType: "SHORT"},
				{Start: 0, End: 6, EntityType: "LONG"},
			},
			// LONG is applied first, SHORT then splices into the placeholder.
			// Overlap degrades gracefully instead of crashing.
			want: "[SHORT]NG]",
		},
		{
			name: "out of range span clamped",
			text: "short",
			spans: []models.PIISpan{
				{Start: 2, End: 99, EntityType: "X"},
			},
			want: "sh[X]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Redact(tt.text, tt.spans)
			if got != tt.want {
				t.Errorf("Redact() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRedact_OverlappingSpansDoNotPanic(t *testing.T) {
	text := "1234567890"
	spans := []models.PIISpan{
		{Start: 0, End: 6, EntityType: "A"},
		{Start: 4, End: 10, EntityType: "B"},
		{Start: 4, End: 10, EntityType: "C"},
	}

	got := Redact(text, spans)
	if strings.ContainsAny(got, "0123456789") {
		t.Errorf("overlapping redaction left original digits behind: %q", got)
	}
}

func TestRedact_Deterministic(t *testing.T) {
	text := "1234567890"
	spans := []models.PIISpan{
		{Start: 2, End: 8, EntityType: "B"},
		{Start: 2, End: 8, EntityType: "A"},
	}
	reversed := []models.PIISpan{spans[1], spans[0]}

	if Redact(text, spans) != Redact(text, reversed) {
		t.Error("redaction result depends on detector reporting order")
	}
}

// Re-redacting an already-redacted string with spans recomputed on the new
// string must not double-wrap placeholders.
func TestRedact_Idempotent(t *testing.T) {
	text := "My SSN is 123-45-6789"
	spans := []models.PIISpan{{Start: 10, End: 21, EntityType: "US_SSN"}}

	once := Redact(text, spans)
	// No PII remains in the redacted text, so the recomputed span set is empty.
	twice := Redact(once, nil)

	if twice != once {
		t.Errorf("re-redaction changed the text: %q -> %q", once, twice)
	}
	if strings.Contains(twice, "[[") || strings.Contains(twice, "]]") {
		t.Errorf("double-wrapped placeholder in %q", twice)
	}
}
