package config

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Environment identifies which storage backends the process binds to.
// Resolved once at startup and threaded through constructors; the binding
// never changes mid-run.
type Environment string

const (
	EnvLocal Environment = "local"
	EnvCloud Environment = "cloud"
)

// Config holds all configuration for RFPForge
type Config struct {
	Environment Environment `mapstructure:"-"`

	Server      ServerConfig      `mapstructure:"server"`
	Admin       AdminConfig       `mapstructure:"admin"`
	Storage     StorageConfig     `mapstructure:"storage"`
	LLM         LLMConfig         `mapstructure:"llm"`
	Coordinator CoordinatorConfig `mapstructure:"coordinator"`
	Delivery    DeliveryConfig    `mapstructure:"delivery"`
	Export      ExportConfig      `mapstructure:"export"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// AdminConfig holds API authentication configuration
type AdminConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// StorageConfig holds the object store and session table configuration for
// both backends; which pair is used depends on Environment.
type StorageConfig struct {
	Bucket         string `mapstructure:"bucket"`
	Table          string `mapstructure:"table"`
	AWSRegion      string `mapstructure:"aws_region"`
	MinioEndpoint  string `mapstructure:"minio_endpoint"`
	MinioAccessKey string `mapstructure:"minio_access_key"`
	MinioSecretKey string `mapstructure:"minio_secret_key"`
	SQLitePath     string `mapstructure:"sqlite_path"`
}

// LLMConfig holds the OpenAI-compatible provider configuration. Ollama is
// reached through its /v1 endpoint with an empty API key.
type LLMConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// CoordinatorConfig bounds the request pipeline.
type CoordinatorConfig struct {
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds"`
	SourcePreviewChars    int `mapstructure:"source_preview_chars"`
	SectionPreviewChars   int `mapstructure:"section_preview_chars"`
	SnapshotEntryChars    int `mapstructure:"snapshot_entry_chars"`
}

// DeliveryConfig bounds the chunked-delivery pipeline.
type DeliveryConfig struct {
	MaxChunkSize   int `mapstructure:"max_chunk_size"`
	MaxChunkCount  int `mapstructure:"max_chunk_count"`
	MaxRetries     int `mapstructure:"max_retries"`
	BaseDelayMs    int `mapstructure:"base_delay_ms"`
	PacingDelayMs  int `mapstructure:"pacing_delay_ms"`
	PayloadCeiling int `mapstructure:"payload_ceiling"`
}

// ExportConfig holds output paths for compiled proposals.
type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("RFPFORGE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Environment = DetectEnvironment()

	return &cfg, nil
}

// DetectEnvironment probes for AWS execution indicators. Any hit binds the
// process to the cloud backends for its whole lifetime.
func DetectEnvironment() Environment {
	indicators := []string{
		"AWS_EXECUTION_ENV",
		"AWS_LAMBDA_FUNCTION_NAME",
		"ECS_CONTAINER_METADATA_URI",
	}
	for _, name := range indicators {
		if os.Getenv(name) != "" {
			return EnvCloud
		}
	}

	if host, err := os.Hostname(); err == nil {
		if names, err := net.LookupAddr(host); err == nil {
			for _, n := range names {
				if strings.Contains(n, "amazonaws.com") || strings.Contains(n, "ec2.internal") {
					return EnvCloud
				}
			}
		}
	}

	return EnvLocal
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	v.SetDefault("admin.api_key", "")

	v.SetDefault("storage.bucket", "rfpforge-storage")
	v.SetDefault("storage.table", "rfpforge-sessions")
	v.SetDefault("storage.aws_region", "us-east-1")
	v.SetDefault("storage.minio_endpoint", "localhost:9000")
	v.SetDefault("storage.minio_access_key", "minioadmin")
	v.SetDefault("storage.minio_secret_key", "minioadmin")
	v.SetDefault("storage.sqlite_path", "./data/rfpforge.db")

	v.SetDefault("llm.base_url", "http://localhost:11434/v1")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "qwen2.5:7b")
	v.SetDefault("llm.timeout_seconds", 120)

	v.SetDefault("coordinator.request_timeout_seconds", 300)
	v.SetDefault("coordinator.source_preview_chars", 1000)
	v.SetDefault("coordinator.section_preview_chars", 500)
	v.SetDefault("coordinator.snapshot_entry_chars", 1000)

	v.SetDefault("delivery.max_chunk_size", 4000)
	v.SetDefault("delivery.max_chunk_count", 10)
	v.SetDefault("delivery.max_retries", 3)
	v.SetDefault("delivery.base_delay_ms", 500)
	v.SetDefault("delivery.pacing_delay_ms", 200)
	v.SetDefault("delivery.payload_ceiling", 100000)

	v.SetDefault("export.dir", "./data/proposals")
}

// Address returns the server address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
