package pii

import (
	"context"
	"testing"

	"github.com/modguard/promptgate/internal/config"
	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func newTestEngine(t *testing.T, custom []config.RecognizerConfig) *Engine {
	t.Helper()
	engine, err := NewEngine(custom, []string{"PHONE_NUMBER", "CREDIT_CARD"}, 0.4, newTestLogger())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return engine
}

func TestDetect_BuiltinRecognizers(t *testing.T) {
	engine := newTestEngine(t, nil)

	tests := []struct {
		name       string
		text       string
		entityType string
		wantValue  string
	}{
		{
			name:       "ssn",
			text:       "My SSN is 123-45-6789",
			entityType: "US_SSN",
			wantValue:  "123-45-6789",
		},
		{
			name:       "credit card",
			text:       "here is my credit card 4111111111111111",
			entityType: "CREDIT_CARD",
			wantValue:  "4111111111111111",
		},
		{
			name:       "email",
			text:       "write to ops@example.com please",
			entityType: "EMAIL_ADDRESS",
			wantValue:  "ops@example.com",
		},
		{
			name:       "phone",
			text:       "call me at 555-123-4567",
			entityType: "PHONE_NUMBER",
			wantValue:  "555-123-4567",
		},
		{
			name:       "ip address",
			text:       "server at 10.0.0.1 is down",
			entityType: "IP_ADDRESS",
			wantValue:  "10.0.0.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entities, err := engine.Detect(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("Detect failed: %v", err)
			}

			found := false
			for _, e := range entities {
				if e.Span.EntityType != tt.entityType {
					continue
				}
				found = true
				if got := tt.text[e.Span.Start:e.Span.End]; got != tt.wantValue {
					t.Errorf("span covers %q, want %q", got, tt.wantValue)
				}
			}
			if !found {
				t.Errorf("no %s entity in %+v", tt.entityType, entities)
			}
		})
	}
}

func TestDetect_NoPII(t *testing.T) {
	engine := newTestEngine(t, nil)

	entities, err := engine.Detect(context.Background(), "nothing sensitive in here")
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(entities) != 0 {
		t.Errorf("expected no entities, got %+v", entities)
	}
}

func TestNewEngine_CustomRecognizer(t *testing.T) {
	engine := newTestEngine(t, []config.RecognizerConfig{
		{
			EntityType: "ATM_PIN",
			Pattern:    `\b(?i:pin)[:\s]+\d{4,6}\b`,
			Confidence: 0.8,
			HighRisk:   true,
		},
	})

	entities, err := engine.Detect(context.Background(), "my pin: 1234 do not share")
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	found := false
	for _, e := range entities {
		if e.Span.EntityType == "ATM_PIN" {
			found = true
			if e.Confidence != 0.8 {
				t.Errorf("confidence: %f, want 0.8", e.Confidence)
			}
		}
	}
	if !found {
		t.Fatalf("custom recognizer did not fire: %+v", entities)
	}

	if !engine.HighRisk("ATM_PIN") {
		t.Error("custom recognizer must be registered as high risk")
	}
}

func TestNewEngine_InvalidCustomPattern(t *testing.T) {
	_, err := NewEngine([]config.RecognizerConfig{
		{EntityType: "BROKEN", Pattern: `([`, Confidence: 0.5},
	}, nil, 0.4, newTestLogger())

	if err == nil {
		t.Fatal("expected an error for an invalid custom pattern")
	}
}

func TestDetect_ScoreFloorDropsWeakRecognizers(t *testing.T) {
	engine, err := NewEngine(nil, nil, 0.9, newTestLogger())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	// PHONE_NUMBER confidence (0.65) is below the floor; EMAIL_ADDRESS (0.95) is not.
	entities, err := engine.Detect(context.Background(), "call 555-123-4567 or mail ops@example.com")
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	for _, e := range entities {
		if e.Span.EntityType == "PHONE_NUMBER" {
			t.Errorf("recognizer below the score floor fired: %+v", e)
		}
	}
	if len(entities) != 1 || entities[0].Span.EntityType != "EMAIL_ADDRESS" {
		t.Errorf("expected only the email entity, got %+v", entities)
	}
}

func TestHighRisk(t *testing.T) {
	engine := newTestEngine(t, nil)

	if !engine.HighRisk("CREDIT_CARD") {
		t.Error("CREDIT_CARD must be high risk")
	}
	if !engine.HighRisk("PHONE_NUMBER") {
		t.Error("PHONE_NUMBER must be high risk")
	}
	if engine.HighRisk("US_SSN") {
		t.Error("US_SSN must not be high risk")
	}
}
