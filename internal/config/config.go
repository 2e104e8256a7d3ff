package config

import (
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"aidraw-backend/internal/models"
)

type Config struct {
	// Server
	Port string
	Env  string `validate:"oneof=development production test"`

	// Default upstream provider
	AIProvider string `validate:"oneof=openai anthropic deepseek"`
	AIBaseURL  string `validate:"omitempty,url"`
	AIAPIKey   string
	AIModelID  string

	AnthropicMaxTokens int `validate:"gt=0"`

	// Access
	AccessPassword       string
	AccessPasswordBcrypt string

	// Advisory daily quota for clients without a password or custom provider
	DailyQuota int `validate:"gte=0"`

	// HTTP
	CORSAllowedOrigin string
	ChatRateLimit     int `validate:"gte=0"`

	// Logging
	LogLevel string `validate:"oneof=trace debug info warn warning error fatal panic"`
	LogFile  string
}

// defaultModels applies when AI_MODEL_ID is unset.
var defaultModels = map[string]string{
	models.ProviderOpenAI:    "gpt-4o-mini",
	models.ProviderAnthropic: "claude-sonnet-4-5",
	models.ProviderDeepSeek:  "deepseek-chat",
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	provider := getEnvOrDefault("AI_PROVIDER", models.ProviderOpenAI)

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "8080"),
		Env:                  getEnvOrDefault("ENV", "development"),
		AIProvider:           provider,
		AIBaseURL:            getEnvOrDefault("AI_BASE_URL", ""),
		AIAPIKey:             getEnvOrDefault("AI_API_KEY", ""),
		AIModelID:            getEnvOrDefault("AI_MODEL_ID", defaultModels[provider]),
		AnthropicMaxTokens:   getEnvAsIntOrDefault("ANTHROPIC_MAX_TOKENS", 4096),
		AccessPassword:       getEnvOrDefault("ACCESS_PASSWORD", ""),
		AccessPasswordBcrypt: getEnvOrDefault("ACCESS_PASSWORD_BCRYPT", ""),
		DailyQuota:           getEnvAsIntOrDefault("DAILY_QUOTA", 10),
		CORSAllowedOrigin:    getEnvOrDefault("CORS_ALLOWED_ORIGIN", "*"),
		ChatRateLimit:        getEnvAsIntOrDefault("CHAT_RATE_LIMIT", 30),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:              getEnvOrDefault("LOG_FILE", ""),
	}

	return cfg
}

// Validate checks the loaded values against their allowed ranges.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	return nil
}

// DefaultProvider returns the server-side provider configuration used when
// the caller does not bring its own key.
func (c *Config) DefaultProvider() models.ProviderConfig {
	return models.ProviderConfig{
		Provider: c.AIProvider,
		BaseURL:  c.AIBaseURL,
		APIKey:   c.AIAPIKey,
		ModelID:  c.AIModelID,
	}
}

// AccessPasswordRequired reports whether callers must present a credential.
func (c *Config) AccessPasswordRequired() bool {
	return c.AccessPassword != "" || c.AccessPasswordBcrypt != ""
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
