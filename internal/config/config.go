// Package config loads runtime settings from the environment with sane local
// defaults. Every key can be set as VOYANT_<KEY>.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	ErrInvalidLimit   = errors.New("rate limits must be positive")
	ErrMissingModelID = errors.New("model_id is required unless the mock model is enabled")
)

type Config struct {
	Port      string
	LogFormat string // "json" or "text"

	AWSRegion    string
	ModelID      string
	MaxTokens    int
	UseMockModel bool // true = skip Bedrock entirely

	DailyLimit   int
	MonthlyLimit int
	Timezone     string

	SessionTTL         time.Duration
	SessionMaxMessages int
	RedisAddr          string // empty = in-memory sessions
	RedisPassword      string
	RedisDB            int

	USDToAUD            float64
	FeasibilityKeywords []string
	MaxToolResults      int

	AllowedOrigins []string

	TracingEndpoint   string
	TracingSecretName string // Secrets Manager secret holding the exporter auth header
	TracingInsecure   bool
}

// Load reads the environment and builds the config.
func Load() *Config {
	v := viper.New()
	v.SetEnvPrefix("VOYANT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("log_format", "json")

	v.SetDefault("aws_region", "ap-southeast-2")
	v.SetDefault("model_id", "anthropic.claude-3-5-sonnet-20240620-v1:0")
	v.SetDefault("max_tokens", 2048)
	v.SetDefault("use_mock_model", false)

	v.SetDefault("daily_limit", 50)
	v.SetDefault("monthly_limit", 500)
	v.SetDefault("timezone", "Australia/Melbourne")

	v.SetDefault("session_ttl", "24h")
	v.SetDefault("session_max_messages", 40)
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	v.SetDefault("usd_to_aud", 1.55)
	v.SetDefault("feasibility_keywords", []string{})
	v.SetDefault("max_tool_results", 5)

	v.SetDefault("allowed_origins", []string{"*"})

	v.SetDefault("tracing_endpoint", "")
	v.SetDefault("tracing_secret_name", "")
	v.SetDefault("tracing_insecure", false)

	return &Config{
		Port:      v.GetString("port"),
		LogFormat: v.GetString("log_format"),

		AWSRegion:    v.GetString("aws_region"),
		ModelID:      v.GetString("model_id"),
		MaxTokens:    v.GetInt("max_tokens"),
		UseMockModel: v.GetBool("use_mock_model"),

		DailyLimit:   v.GetInt("daily_limit"),
		MonthlyLimit: v.GetInt("monthly_limit"),
		Timezone:     v.GetString("timezone"),

		SessionTTL:         v.GetDuration("session_ttl"),
		SessionMaxMessages: v.GetInt("session_max_messages"),
		RedisAddr:          v.GetString("redis_addr"),
		RedisPassword:      v.GetString("redis_password"),
		RedisDB:            v.GetInt("redis_db"),

		USDToAUD:            v.GetFloat64("usd_to_aud"),
		FeasibilityKeywords: v.GetStringSlice("feasibility_keywords"),
		MaxToolResults:      v.GetInt("max_tool_results"),

		AllowedOrigins: v.GetStringSlice("allowed_origins"),

		TracingEndpoint:   v.GetString("tracing_endpoint"),
		TracingSecretName: v.GetString("tracing_secret_name"),
		TracingInsecure:   v.GetBool("tracing_insecure"),
	}
}

// Validate catches settings the server cannot start with.
func (c *Config) Validate() error {
	if c.DailyLimit <= 0 || c.MonthlyLimit <= 0 {
		return fmt.Errorf("%w: daily=%d monthly=%d", ErrInvalidLimit, c.DailyLimit, c.MonthlyLimit)
	}
	if !c.UseMockModel && c.ModelID == "" {
		return ErrMissingModelID
	}
	return nil
}
