package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// Defaults returns the documented fallback settings used when the settings
// file is absent or invalid.
func Defaults() *Settings {
	return &Settings{
		ToxicityThresholds: map[string]float64{
			"toxicity":        0.5,
			"severe_toxicity": 0.5,
			"obscene":         0.5,
			"threat":          0.5,
			"insult":          0.5,
			"identity_attack": 0.5,
		},
		FlaggedKeywords:  []string{"confidential", "secret", "private data", "internal use"},
		BlockedKeywords:  []string{"password", "api key", "private key"},
		MaxPromptLength:  512,
		MaxPayloadSize:   10240, // 10 KB
		HighRiskEntities: []string{"PHONE_NUMBER", "CREDIT_CARD"},
	}
}

// LoadSettings reads the settings file at path. A missing or unreadable file
// and invalid YAML both fall back to Defaults; the returned error reports
// why the fallback was taken so the caller can log it.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Defaults(), fmt.Errorf("settings file not readable, using defaults: %w", err)
	}

	var cfg Settings
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Defaults(), fmt.Errorf("invalid settings file, using defaults: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return Defaults(), fmt.Errorf("settings failed validation, using defaults: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Settings) {
	defaults := Defaults()
	if len(cfg.ToxicityThresholds) == 0 {
		cfg.ToxicityThresholds = defaults.ToxicityThresholds
	}
	if cfg.FlaggedKeywords == nil {
		cfg.FlaggedKeywords = defaults.FlaggedKeywords
	}
	if cfg.BlockedKeywords == nil {
		cfg.BlockedKeywords = defaults.BlockedKeywords
	}
	if cfg.MaxPromptLength == 0 {
		cfg.MaxPromptLength = defaults.MaxPromptLength
	}
	if cfg.MaxPayloadSize == 0 {
		cfg.MaxPayloadSize = defaults.MaxPayloadSize
	}
	if cfg.HighRiskEntities == nil {
		cfg.HighRiskEntities = defaults.HighRiskEntities
	}
}

func (s *Settings) Validate() error {
	for label, threshold := range s.ToxicityThresholds {
		if threshold < 0.0 || threshold > 1.0 {
			return fmt.Errorf("toxicity threshold for %q out of range [0.0, 1.0]: %f", label, threshold)
		}
	}
	if s.MaxPromptLength < 0 {
		return fmt.Errorf("max_prompt_length must not be negative")
	}
	if s.MaxPayloadSize < 0 {
		return fmt.Errorf("max_payload_size must not be negative")
	}
	for _, rec := range s.CustomRecognizers {
		if rec.EntityType == "" || rec.Pattern == "" {
			return fmt.Errorf("custom recognizer needs both entity_type and pattern")
		}
	}
	return nil
}
