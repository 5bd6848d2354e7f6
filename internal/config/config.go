package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Google   GoogleConfig   `mapstructure:"google"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Encrypt  EncryptConfig  `mapstructure:"encrypt"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Charset  string `mapstructure:"charset"`
}

func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=UTC",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.Charset)
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// LLMConfig points at an OpenAI-compatible chat completions endpoint.
// APIKeys are rotated round-robin across requests.
type LLMConfig struct {
	BaseURL        string   `mapstructure:"base_url"`
	APIKeys        []string `mapstructure:"api_keys"`
	Model          string   `mapstructure:"model"`
	DeepDiveModel  string   `mapstructure:"deep_dive_model"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds"`
	MaxAttempts    int      `mapstructure:"max_attempts"`
}

type GoogleConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri"`
}

type PipelineConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	MaxWorkers     int    `mapstructure:"max_workers"`
	IdeasPerRepo   int    `mapstructure:"ideas_per_repo"`
	MaxRepos       int    `mapstructure:"max_repos"`
	TrendingURL    string `mapstructure:"trending_url"`
	TrendingPeriod string `mapstructure:"trending_period"`
	Language       string `mapstructure:"language"`
}

type NotifyConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
}

// EncryptConfig holds the AES key used to encrypt resume text at rest.
// Empty disables encryption. Must be 16, 24, or 32 bytes when set.
type EncryptConfig struct {
	AESKey string `mapstructure:"aes_key"`
}

var Global *Config

func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	Global = &cfg
	return &cfg, nil
}
