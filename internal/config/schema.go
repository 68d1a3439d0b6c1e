package config

// RecognizerConfig describes one custom pattern-based PII recognizer that is
// composed into the detector set at startup.
type RecognizerConfig struct {
	EntityType string  `yaml:"entity_type" json:"entity_type"`
	Pattern    string  `yaml:"pattern" json:"pattern"`
	Confidence float64 `yaml:"confidence" json:"confidence"`
	HighRisk   bool    `yaml:"high_risk" json:"high_risk"`
}

// Settings is the process-wide moderation configuration. It is loaded once
// at startup and treated as read-only for the lifetime of the process.
type Settings struct {
	ToxicityThresholds map[string]float64 `yaml:"toxicity_thresholds" json:"toxicity_thresholds"`
	FlaggedKeywords    []string           `yaml:"flagged_keywords" json:"flagged_keywords"`
	BlockedKeywords    []string           `yaml:"blocked_keywords" json:"blocked_keywords"`
	MaxPromptLength    int                `yaml:"max_prompt_length" json:"max_prompt_length"`
	MaxPayloadSize     int64              `yaml:"max_payload_size" json:"max_payload_size"`
	HighRiskEntities   []string           `yaml:"high_risk_entities" json:"high_risk_entities"`
	CustomRecognizers  []RecognizerConfig `yaml:"custom_recognizers" json:"custom_recognizers"`
}
