package setup

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/modguard/promptgate/internal/alert"
	"github.com/modguard/promptgate/internal/analyzer"
	"github.com/modguard/promptgate/internal/cache"
	"github.com/modguard/promptgate/internal/config"
	"github.com/modguard/promptgate/internal/detectors/pii"
	"github.com/modguard/promptgate/internal/detectors/toxicity"
	"github.com/modguard/promptgate/internal/generate"
	"github.com/modguard/promptgate/internal/llm"
	"github.com/modguard/promptgate/internal/llm/bedrock"
	"github.com/modguard/promptgate/internal/llm/gpt"
	"github.com/modguard/promptgate/internal/store"
	"github.com/rs/zerolog"
)

type Config struct {
	SettingsPath    string
	AWSRegion       string
	ClaudeModelID   string
	OpenAIKey       string
	OpenAIModelID   string
	DefaultProvider string
	EnableGenerate  bool
	PIIScoreFloor   float64
	CacheSize       int
	StaticDir       string

	RedisAddr     string
	RedisPassword string
	AlertChannel  string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
}

// Dependencies is the application context: every collaborator the handlers
// need, constructed once at startup instead of living in package globals.
type Dependencies struct {
	Settings *config.Settings
	Pipeline *analyzer.Pipeline
	Cache    *cache.Cache
	Store    *store.DB
	Notifier alert.Notifier
	Logger   *zerolog.Logger
}

func LoadConfig() *Config {
	return &Config{
		SettingsPath:    getEnv("SETTINGS_PATH", "configs/settings.yaml"),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		ClaudeModelID:   getEnv("CLAUDE_MODEL_ID", ""),
		OpenAIKey:       getEnv("OPEN_AI_KEY", ""),
		OpenAIModelID:   getEnv("OPEN_AI_MODEL_ID", ""),
		DefaultProvider: getEnv("DEFAULT_LLM_PROVIDER", "bedrock"),
		EnableGenerate:  getEnvBool("ENABLE_DOWNSTREAM_GENERATION", false),
		PIIScoreFloor:   getEnvFloat("PII_SCORE_FLOOR", 0.4),
		CacheSize:       getEnvInt("DECISION_CACHE_SIZE", 128),
		StaticDir:       getEnv("STATIC_DIR", "web"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		AlertChannel:  getEnv("ALERT_CHANNEL", "promptgate:alerts"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "promptgate"),
		DBPassword: getEnv("DB_PASSWORD", "promptgate"),
		DBName:     getEnv("DB_NAME", "promptgate"),
		DBSSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}
}

func Wire(ctx context.Context, cfg *Config, logger *zerolog.Logger) (*Dependencies, error) {
	// Settings fall back to documented defaults on a missing or invalid file.
	settings, err := config.LoadSettings(cfg.SettingsPath)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.SettingsPath).Msg("Using default settings")
	}

	// Detector engines. If either fails to initialize the pipeline runs in
	// degraded mode: keyword rules only, every request at least Flagged.
	var piiDetector analyzer.PIIDetector
	piiEngine, err := pii.NewEngine(settings.CustomRecognizers, settings.HighRiskEntities, cfg.PIIScoreFloor, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to build PII engine, running degraded")
	} else {
		piiDetector = piiEngine
	}

	var toxicityClassifier analyzer.ToxicityClassifier
	var generator analyzer.Generator

	llmClient, err := createLLMClient(ctx, cfg.DefaultProvider, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create LLM client, running degraded")
	} else {
		classifier, err := toxicity.NewClassifier(llmClient, toxicity.DefaultLabels, logger)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to build toxicity classifier, running degraded")
		} else {
			toxicityClassifier = classifier
		}

		if cfg.EnableGenerate {
			generator = generate.NewGenerator(llmClient, 512, 0.7, logger)
		}
	}

	pipeline := analyzer.NewPipeline(settings, piiDetector, toxicityClassifier, generator, logger)
	decisionCache := cache.New(cfg.CacheSize)

	// Audit log store. Unlike the detectors this is not allowed to degrade:
	// a compliance gateway without its log is not worth starting.
	db, err := store.New(ctx, store.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to audit log store: %w", err)
	}
	if err := db.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to bootstrap audit log schema: %w", err)
	}

	// Alerting is optional and never allowed to fail startup.
	var notifier alert.Notifier = alert.NopNotifier{}
	if cfg.RedisAddr != "" {
		redisClient, err := alert.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, 3)
		if err != nil {
			logger.Warn().Err(err).Msg("Alert transport unavailable, alerts disabled")
		} else {
			notifier = alert.NewRedisNotifier(redisClient, cfg.AlertChannel, logger)
		}
	}

	return &Dependencies{
		Settings: settings,
		Pipeline: pipeline,
		Cache:    decisionCache,
		Store:    db,
		Notifier: notifier,
		Logger:   logger,
	}, nil
}

func createLLMClient(ctx context.Context, provider string, cfg *Config) (llm.LLMClient, error) {
	switch provider {
	case "bedrock":
		return bedrock.NewClient(ctx, cfg.AWSRegion, cfg.ClaudeModelID)
	case "openai":
		return gpt.NewClient(cfg.OpenAIKey, cfg.OpenAIModelID)
	default:
		return bedrock.NewClient(ctx, cfg.AWSRegion, cfg.ClaudeModelID)
	}
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		value = defaultValue
	}

	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		value = defaultValue
	}

	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		value = defaultValue
	}

	return value
}
