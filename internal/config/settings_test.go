package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeSettingsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing settings file: %v", err)
	}
	return path
}

func TestLoadSettings_MissingFileFallsBackToDefaults(t *testing.T) {
	settings, err := LoadSettings(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Error("expected an error reporting the fallback")
	}
	if !reflect.DeepEqual(settings, Defaults()) {
		t.Errorf("settings: %+v, want defaults", settings)
	}
}

func TestLoadSettings_InvalidYAMLFallsBackToDefaults(t *testing.T) {
	path := writeSettingsFile(t, "flagged_keywords: [unterminated")

	settings, err := LoadSettings(path)
	if err == nil {
		t.Error("expected an error reporting the fallback")
	}
	if !reflect.DeepEqual(settings, Defaults()) {
		t.Errorf("settings: %+v, want defaults", settings)
	}
}

func TestLoadSettings_ValidFile(t *testing.T) {
	path := writeSettingsFile(t, `
toxicity_thresholds:
  toxicity: 0.3
  threat: 0.2
flagged_keywords:
  - hush hush
blocked_keywords:
  - master password
max_prompt_length: 256
max_payload_size: 4096
high_risk_entities:
  - CREDIT_CARD
custom_recognizers:
  - entity_type: ATM_PIN
    pattern: '\b(?i:pin)[:\s]+\d{4,6}\b'
    confidence: 0.8
    high_risk: true
`)

	settings, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}

	if settings.ToxicityThresholds["toxicity"] != 0.3 {
		t.Errorf("toxicity threshold: %f, want 0.3", settings.ToxicityThresholds["toxicity"])
	}
	if !reflect.DeepEqual(settings.FlaggedKeywords, []string{"hush hush"}) {
		t.Errorf("flagged keywords: %v", settings.FlaggedKeywords)
	}
	if !reflect.DeepEqual(settings.BlockedKeywords, []string{"master password"}) {
		t.Errorf("blocked keywords: %v", settings.BlockedKeywords)
	}
	if settings.MaxPromptLength != 256 {
		t.Errorf("max prompt length: %d, want 256", settings.MaxPromptLength)
	}
	if settings.MaxPayloadSize != 4096 {
		t.Errorf("max payload size: %d, want 4096", settings.MaxPayloadSize)
	}
	if len(settings.CustomRecognizers) != 1 || settings.CustomRecognizers[0].EntityType != "ATM_PIN" {
		t.Errorf("custom recognizers: %+v", settings.CustomRecognizers)
	}
	if !settings.CustomRecognizers[0].HighRisk {
		t.Error("custom recognizer must be high risk")
	}
}

func TestLoadSettings_PartialFileKeepsDefaultsForOmittedFields(t *testing.T) {
	path := writeSettingsFile(t, "max_prompt_length: 64\n")

	settings, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}

	if settings.MaxPromptLength != 64 {
		t.Errorf("max prompt length: %d, want 64", settings.MaxPromptLength)
	}
	defaults := Defaults()
	if !reflect.DeepEqual(settings.FlaggedKeywords, defaults.FlaggedKeywords) {
		t.Errorf("flagged keywords: %v, want defaults", settings.FlaggedKeywords)
	}
	if settings.MaxPayloadSize != defaults.MaxPayloadSize {
		t.Errorf("max payload size: %d, want default %d", settings.MaxPayloadSize, defaults.MaxPayloadSize)
	}
}

func TestLoadSettings_ValidationFailureFallsBackToDefaults(t *testing.T) {
	path := writeSettingsFile(t, `
toxicity_thresholds:
  toxicity: 1.7
`)

	settings, err := LoadSettings(path)
	if err == nil {
		t.Error("expected an error for an out of range threshold")
	}
	if !reflect.DeepEqual(settings, Defaults()) {
		t.Errorf("settings: %+v, want defaults", settings)
	}
}

func TestValidate_CustomRecognizerNeedsEntityTypeAndPattern(t *testing.T) {
	settings := Defaults()
	settings.CustomRecognizers = []RecognizerConfig{{Pattern: `\d+`}}
	if err := settings.Validate(); err == nil {
		t.Fatal("expected an error for a recognizer without an entity type")
	}
}
