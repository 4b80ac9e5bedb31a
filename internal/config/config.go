package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all service configuration, sourced from environment variables
// and an optional config file.
type Config struct {
	Port              string `mapstructure:"port"`
	JWTSecret         string `mapstructure:"jwt_secret"`
	AdminUsername     string `mapstructure:"admin_username"`
	AdminPasswordHash string `mapstructure:"admin_password_hash"`
	OpenAIAPIKey      string `mapstructure:"openai_api_key"`
	AnthropicAPIKey   string `mapstructure:"anthropic_api_key"`
	OpenAIBaseURL     string `mapstructure:"openai_base_url"`
	AnthropicBaseURL  string `mapstructure:"anthropic_base_url"`
	ModelCatalogPath  string `mapstructure:"model_catalog_path"`
	LogLevel          string `mapstructure:"log_level"`
}

// Load reads configuration from the environment (prefix LLMREFINE_) and an
// optional llm-refinement.yaml config file in the working directory.
func Load() (*Config, error) {
	v := viper.New()

	// every key needs a default so AutomaticEnv can populate it on Unmarshal
	v.SetDefault("port", "8080")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("admin_username", "admin")
	v.SetDefault("admin_password_hash", "")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("anthropic_api_key", "")
	v.SetDefault("openai_base_url", "")
	v.SetDefault("anthropic_base_url", "")
	v.SetDefault("model_catalog_path", "")
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("LLMREFINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("llm-refinement")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/llm-refinement")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required (set LLMREFINE_JWT_SECRET)")
	}

	return &cfg, nil
}
