package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AIConfig selects and configures the inference backend.
type AIConfig struct {
	Provider string `yaml:"provider"` // gemini (default) or openai
	APIKey   string `yaml:"apiKey"`
	Model    string `yaml:"model"`
	// EnforceScoreLevel additionally rejects results whose riskScore band does
	// not match riskLevel. Off by default: both fields are set independently
	// by the backend and the default policy trusts its judgement.
	EnforceScoreLevel bool `yaml:"enforceScoreLevel"`
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	AI AIConfig `yaml:"ai"`

	Alert struct {
		// WindowSeconds is how long a raised alert stays active before it
		// auto-clears. A newer alert supersedes the running deadline.
		WindowSeconds int `yaml:"windowSeconds"`
	} `yaml:"alert"`

	Database struct {
		Driver   string `yaml:"driver"` // mysql or postgres; empty disables history
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
	} `yaml:"database"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"` // empty disables artifact archiving
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	Auth struct {
		// APIKeys maps client name to key; empty disables auth.
		APIKeys map[string]string `yaml:"apiKeys"`
	} `yaml:"auth"`

	RateLimit struct {
		Capacity   int `yaml:"capacity"`
		RefillRate int `yaml:"refillRate"`
	} `yaml:"rateLimit"`
}

// Load baca file config.yaml
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()
	cfg.applyDefaults()
	return &cfg, nil
}

// applyEnvOverrides lets API keys come from the environment so they stay out
// of the config file. GEMINI_API_KEY and OPENAI_API_KEY also pick the
// provider when none is set.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.AI.APIKey = v
		if c.AI.Provider == "" {
			c.AI.Provider = "gemini"
		}
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && c.AI.Provider == "openai" {
		c.AI.APIKey = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.AI.Provider == "" {
		c.AI.Provider = "gemini"
	}
	if c.Alert.WindowSeconds <= 0 {
		c.Alert.WindowSeconds = 10
	}
	if c.RateLimit.Capacity <= 0 {
		c.RateLimit.Capacity = 10
	}
	if c.RateLimit.RefillRate <= 0 {
		c.RateLimit.RefillRate = 1
	}
}

// AlertWindow returns the alert auto-clear window as a duration.
func (c *Config) AlertWindow() time.Duration {
	return time.Duration(c.Alert.WindowSeconds) * time.Second
}

// HistoryEnabled reports whether an audit database is configured.
func (c *Config) HistoryEnabled() bool { return c.Database.Driver != "" }

// ArchiveEnabled reports whether a minio artifact store is configured.
func (c *Config) ArchiveEnabled() bool { return c.Minio.Endpoint != "" }

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds a lib/pq connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}
