package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	OpenAI        OpenAIConfig
	Cache         CacheConfig
	RateLimit     RateLimitConfig
	Auth          AuthConfig
	Quiz          QuizConfig
	Pronunciation PronunciationConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// OpenAIConfig holds OpenAI API configuration. An empty APIKey disables
// conversation and speech features.
type OpenAIConfig struct {
	APIKey             string        `mapstructure:"api_key"`
	BaseURL            string        `mapstructure:"base_url"`
	ChatModel          string        `mapstructure:"chat_model"`
	TTSModel           string        `mapstructure:"tts_model"`
	TranscriptionModel string        `mapstructure:"transcription_model"`
	DefaultVoice       string        `mapstructure:"default_voice"`
	SystemPrompt       string        `mapstructure:"system_prompt"`
	HistoryLimit       int           `mapstructure:"history_limit"`
	RequestsPerMinute  int           `mapstructure:"requests_per_minute"`
	Timeout            time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// AuthConfig holds admin authentication configuration
type AuthConfig struct {
	JWTSecret         string        `mapstructure:"jwt_secret"`
	AdminEmail        string        `mapstructure:"admin_email"`
	AdminPasswordHash string        `mapstructure:"admin_password_hash"` // bcrypt, see `kotoba hash-password`
	TokenTTL          time.Duration `mapstructure:"token_ttl"`
}

// QuizConfig holds quiz and leaderboard sizes
type QuizConfig struct {
	QuestionsPerQuiz int `mapstructure:"questions_per_quiz"`
	LeaderboardSize  int `mapstructure:"leaderboard_size"`
}

// PronunciationConfig holds pronunciation scoring configuration
type PronunciationConfig struct {
	Threshold   float64 `mapstructure:"threshold"`
	PhraseLimit int     `mapstructure:"phrase_limit"`
}

// IsDevelopment reports whether the server runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// Load loads configuration from a .env file, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/kotoba/")

	// KOTOBA_DATABASE_URL overrides database.url
	v.SetEnvPrefix("KOTOBA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values. Every key needs a default,
// even an empty one, for AutomaticEnv to pick up its environment override.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.chat_model", "gpt-4o-mini")
	v.SetDefault("openai.tts_model", "tts-1")
	v.SetDefault("openai.transcription_model", "whisper-1")
	v.SetDefault("openai.default_voice", "alloy")
	v.SetDefault("openai.system_prompt", "")
	v.SetDefault("openai.history_limit", 20)
	v.SetDefault("openai.requests_per_minute", 60)
	v.SetDefault("openai.timeout", "60s")

	v.SetDefault("cache.ttl", "1m")

	v.SetDefault("ratelimit.per_ip", 120)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.admin_email", "")
	v.SetDefault("auth.admin_password_hash", "")
	v.SetDefault("auth.token_ttl", "12h")

	v.SetDefault("quiz.questions_per_quiz", 10)
	v.SetDefault("quiz.leaderboard_size", 10)

	v.SetDefault("pronunciation.threshold", 0.6)
	v.SetDefault("pronunciation.phrase_limit", 10)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Database.URL == "" {
		return fmt.Errorf("database URL is required (set KOTOBA_DATABASE_URL)")
	}

	if config.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required (set KOTOBA_AUTH_JWT_SECRET)")
	}

	if config.Pronunciation.Threshold <= 0 || config.Pronunciation.Threshold >= 1 {
		return fmt.Errorf("pronunciation threshold must be in (0, 1), got: %v", config.Pronunciation.Threshold)
	}

	if config.Quiz.QuestionsPerQuiz <= 0 || config.Quiz.LeaderboardSize <= 0 || config.Pronunciation.PhraseLimit <= 0 {
		return fmt.Errorf("quiz size, leaderboard size and phrase limit must be positive")
	}

	if config.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got: %v", config.Cache.TTL)
	}

	return nil
}

// loadEnvFile reads KEY=VALUE lines from ./.env into the process environment.
// Variables that are already set win. A missing file is not an error.
func loadEnvFile() error {
	f, err := os.Open(".env")
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return scanner.Err()
}
