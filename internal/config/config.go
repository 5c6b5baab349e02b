// internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port              string
	Environment       string
	InngestEventKey   string
	InngestSigningKey string
	OpenAIAPIKey      string
	AnthropicAPIKey   string
	DatabaseURL       string
	SlackWebhookURL   string
	ScanModels        []string
	Database          DatabaseConfig
	Engine            EngineConfig
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

// EngineConfig carries every tunable of the scoring engine. All values are
// overridable through the environment so scoring stays deterministic for a
// given configuration while remaining adjustable without a rebuild.
type EngineConfig struct {
	// LexiconPath optionally points at a JSON lexicon file that replaces
	// the compiled-in defaults.
	LexiconPath string

	// Signal extraction
	ContextWindow   int // characters kept either side of the first mention
	MaxRankingValue int // list positions beyond this are treated as noise

	// Classification
	HedgingMin       int // distinct hedge hits before hasHedging trips
	NegativeMin      int // distinct negative hits for the NEGATIVE category
	PositiveCutoff   float64
	StrongRecMin     int // distinct recommendation hits for STRONG
	PrimaryMentions  int // mention count threshold for PRIMARY
	FeaturedMentions int // mention count threshold for FEATURED

	// Trust sub-score weights
	TrustSentimentWeight   float64
	TrustHedgingWeight     float64
	TrustRecWeight         float64
	TrustNonNegativeWeight float64

	// Overall composite weights
	OverallTrustWeight      float64
	OverallVisibilityWeight float64
	OverallRecWeight        float64
	OverallCitationWeight   float64
	OverallSentimentWeight  float64
	OverallConfidenceWeight float64

	// Drift alerting (deltas on the overall score)
	DropWarning  int
	DropCritical int
	GainPositive int
	GainStrong   int
}

func Load() *Config {
	config := &Config{
		Port:              getEnv("PORT", "8000"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		InngestEventKey:   os.Getenv("INNGEST_EVENT_KEY"),
		InngestSigningKey: os.Getenv("INNGEST_SIGNING_KEY"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		SlackWebhookURL:   os.Getenv("SLACK_WEBHOOK_URL"),
		ScanModels:        splitList(getEnv("SCAN_MODELS", "gpt-4.1,claude-sonnet-4-20250514")),
	}

	dbConfig, err := parseDatabaseConfig()
	if err != nil {
		// If DATABASE_URL parsing fails, try individual env vars as fallback
		dbConfig = DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", "trustable"),
			SSLMode:         getEnv("DB_SSLMODE", "require"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getEnvInt("DB_CONN_MAX_LIFETIME", 300),
		}
	}
	config.Database = dbConfig

	config.Engine = EngineConfig{
		LexiconPath: os.Getenv("ENGINE_LEXICON_PATH"),

		ContextWindow:   getEnvInt("ENGINE_CONTEXT_WINDOW", 150),
		MaxRankingValue: getEnvInt("ENGINE_MAX_RANKING", 10),

		HedgingMin:       getEnvInt("ENGINE_HEDGING_MIN", 2),
		NegativeMin:      getEnvInt("ENGINE_NEGATIVE_MIN", 2),
		PositiveCutoff:   getEnvFloat("ENGINE_POSITIVE_CUTOFF", 0.3),
		StrongRecMin:     getEnvInt("ENGINE_STRONG_REC_MIN", 2),
		PrimaryMentions:  getEnvInt("ENGINE_PRIMARY_MENTIONS", 3),
		FeaturedMentions: getEnvInt("ENGINE_FEATURED_MENTIONS", 2),

		TrustSentimentWeight:   getEnvFloat("ENGINE_TRUST_SENTIMENT_WEIGHT", 0.35),
		TrustHedgingWeight:     getEnvFloat("ENGINE_TRUST_HEDGING_WEIGHT", 0.30),
		TrustRecWeight:         getEnvFloat("ENGINE_TRUST_REC_WEIGHT", 0.25),
		TrustNonNegativeWeight: getEnvFloat("ENGINE_TRUST_NONNEG_WEIGHT", 0.10),

		OverallTrustWeight:      getEnvFloat("ENGINE_OVERALL_TRUST_WEIGHT", 0.25),
		OverallVisibilityWeight: getEnvFloat("ENGINE_OVERALL_VISIBILITY_WEIGHT", 0.20),
		OverallRecWeight:        getEnvFloat("ENGINE_OVERALL_REC_WEIGHT", 0.20),
		OverallCitationWeight:   getEnvFloat("ENGINE_OVERALL_CITATION_WEIGHT", 0.10),
		OverallSentimentWeight:  getEnvFloat("ENGINE_OVERALL_SENTIMENT_WEIGHT", 0.15),
		OverallConfidenceWeight: getEnvFloat("ENGINE_OVERALL_CONFIDENCE_WEIGHT", 0.10),

		DropWarning:  getEnvInt("ENGINE_DROP_WARNING", -10),
		DropCritical: getEnvInt("ENGINE_DROP_CRITICAL", -20),
		GainPositive: getEnvInt("ENGINE_GAIN_POSITIVE", 10),
		GainStrong:   getEnvInt("ENGINE_GAIN_STRONG", 20),
	}

	return config
}

func parseDatabaseConfig() (DatabaseConfig, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return DatabaseConfig{}, fmt.Errorf("DATABASE_URL not set")
	}

	parsedURL, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	if len(parsedURL.Path) < 2 {
		return DatabaseConfig{}, fmt.Errorf("DATABASE_URL has no database name: %s", dbURL)
	}

	config := DatabaseConfig{
		Host:            parsedURL.Hostname(),
		Port:            5432, // default
		User:            parsedURL.User.Username(),
		Name:            parsedURL.Path[1:], // remove leading slash
		SSLMode:         getEnv("DB_SSLMODE", "require"),
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 25),
		ConnMaxLifetime: getEnvInt("DB_CONN_MAX_LIFETIME", 300),
	}

	if password, ok := parsedURL.User.Password(); ok {
		config.Password = password
	}

	if parsedURL.Port() != "" {
		if port, err := strconv.Atoi(parsedURL.Port()); err == nil {
			config.Port = port
		}
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
