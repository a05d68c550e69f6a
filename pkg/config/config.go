package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"

	"github.com/GustavoDePieri/ontop-feedback-dashboard/internal/scoring"
)

type Config struct {
	Database    DatabaseConfig    `mapstructure:"database"`
	OpenAI      OpenAIConfig      `mapstructure:"openai"`
	Classifier  ClassifierConfig  `mapstructure:"classifier"`
	Aggregation AggregationConfig `mapstructure:"aggregation"`
	Rules       scoring.Rules     `mapstructure:"rules"`
}

type DatabaseConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	DBName      string `mapstructure:"dbname"`
	SSLMode     string `mapstructure:"sslmode"`
	UseInMemory bool   `mapstructure:"use_in_memory"`
}

type OpenAIConfig struct {
	APIKey            string  `mapstructure:"api_key"`
	Model             string  `mapstructure:"model"`
	MaxTokens         int     `mapstructure:"max_tokens"`
	Temperature       float64 `mapstructure:"temperature"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
}

type ClassifierConfig struct {
	// ChunkSize is the per-call character budget for long texts.
	ChunkSize int `mapstructure:"chunk_size"`
	// Concurrency bounds parallel classifier calls.
	Concurrency int `mapstructure:"concurrency"`
	// IncludeAllAuthors scores agent messages too.
	IncludeAllAuthors bool `mapstructure:"include_all_authors"`
	// UseKeywordFallback forces the offline lexicon classifier instead
	// of the OpenAI-backed one.
	UseKeywordFallback bool `mapstructure:"use_keyword_fallback"`
}

type AggregationConfig struct {
	// Workers bounds cross-client parallelism in the batch runner.
	Workers int `mapstructure:"workers"`
}

func parseDatabaseURL(dbURL string) (DatabaseConfig, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, err
	}

	password, _ := u.User.Password()
	port := 5432 // default PostgreSQL port
	if u.Port() != "" {
		fmt.Sscanf(u.Port(), "%d", &port)
	}

	dbName := strings.TrimPrefix(u.Path, "/")

	return DatabaseConfig{
		Host:     u.Hostname(),
		Port:     port,
		User:     u.User.Username(),
		Password: password,
		DBName:   dbName,
		SSLMode:  "disable",
	}, nil
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.use_in_memory", false)
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.max_tokens", 100)
	v.SetDefault("openai.temperature", 0.0)
	v.SetDefault("openai.timeout_seconds", 30)
	v.SetDefault("openai.requests_per_second", 5.0)
	v.SetDefault("classifier.chunk_size", 400)
	v.SetDefault("classifier.concurrency", 4)
	v.SetDefault("aggregation.workers", 1)

	// Enable environment variable support
	v.AutomaticEnv()

	// Read the config file when one exists; env and defaults cover the
	// rest.
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Rule lists default to the built-ins unless the config overrides
	// them.
	if len(config.Rules.BillingNegative) == 0 {
		config.Rules = scoring.DefaultRules()
	}

	// Check for DATABASE_URL environment variable
	if dbURL := v.GetString("DATABASE_URL"); dbURL != "" {
		dbConfig, err := parseDatabaseURL(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		config.Database = dbConfig
	}

	if apiKey := v.GetString("OPENAI_API_KEY"); apiKey != "" {
		config.OpenAI.APIKey = apiKey
	}

	return &config, nil
}
