package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures the full runtime configuration of the upload service.
type Config struct {
	App     AppConfig
	HTTP    HTTPConfig
	Kafka   KafkaConfig
	Storage StorageConfig
	Tracing TracingConfig
	Metrics MetricsConfig
	Upload  UploadConfig
}

type AppConfig struct {
	Name        string `env:"APP_NAME" envDefault:"blobingest"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	Version     string `env:"APP_VERSION" envDefault:"0.1.0"`
	LogLevel    string `env:"APP_LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"APP_LOG_FORMAT" envDefault:"json"`
}

type HTTPConfig struct {
	Addr         string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15m"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15m"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
	// ShutdownTimeout bounds the wait for in-flight uploads on shutdown.
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

type KafkaConfig struct {
	Enabled          bool          `env:"KAFKA_ENABLED" envDefault:"false"`
	Brokers          []string      `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	UploadTopic      string        `env:"KAFKA_UPLOAD_TOPIC" envDefault:"blobingest.uploads"`
	Retries          int           `env:"KAFKA_RETRIES" envDefault:"3"`
	CompressionCodec string        `env:"KAFKA_COMPRESSION_CODEC" envDefault:"snappy"`
	BatchSize        int           `env:"KAFKA_BATCH_SIZE" envDefault:"100"`
	BatchTimeout     time.Duration `env:"KAFKA_BATCH_TIMEOUT" envDefault:"1s"`
}

type StorageConfig struct {
	Provider   string `env:"STORAGE_PROVIDER" envDefault:"minio"`
	Endpoint   string `env:"STORAGE_ENDPOINT" envDefault:"http://localhost:9000"`
	Region     string `env:"STORAGE_REGION" envDefault:"us-east-1"`
	Container  string `env:"STORAGE_CONTAINER" envDefault:"uploads"`
	AccessKey  string `env:"STORAGE_ACCESS_KEY" envDefault:"minioadmin"`
	SecretKey  string `env:"STORAGE_SECRET_KEY" envDefault:"minioadmin"`
	UseSSL     bool   `env:"STORAGE_USE_SSL" envDefault:"false"`
	PathStyle  bool   `env:"STORAGE_PATH_STYLE" envDefault:"true"`
	PartSize   int64  `env:"STORAGE_PART_SIZE_BYTES" envDefault:"16777216"`
	NamePolicy string `env:"STORAGE_NAME_POLICY" envDefault:"verbatim"`
}

type TracingConfig struct {
	Endpoint     string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	Insecure     bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	SampleRatio  float64 `env:"OTEL_TRACES_SAMPLER_RATIO" envDefault:"1.0"`
	ResourceAttr string  `env:"OTEL_RESOURCE_ATTRIBUTES" envDefault:"service.namespace=blobingest"`
}

type MetricsConfig struct {
	Addr string `env:"METRICS_ADDR" envDefault:":9102"`
}

type UploadConfig struct {
	MaxSizeBytes  int64  `env:"UPLOAD_MAX_SIZE_BYTES" envDefault:"10737418240"`
	FailurePolicy string `env:"UPLOAD_FAILURE_POLICY" envDefault:"fail_fast"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the env parser cannot catch.
func (c *Config) Validate() error {
	switch c.Storage.Provider {
	case "minio", "s3":
	case "memory":
		// Buffers whole objects in RAM and loses them on restart.
		if c.App.Environment != "development" && c.App.Environment != "test" {
			return fmt.Errorf("STORAGE_PROVIDER=memory is not allowed in APP_ENV=%s", c.App.Environment)
		}
	default:
		return fmt.Errorf("unsupported STORAGE_PROVIDER: %s", c.Storage.Provider)
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Storage.Container == "" {
		return fmt.Errorf("STORAGE_CONTAINER must not be empty")
	}
	switch c.Upload.FailurePolicy {
	case "fail_fast", "continue":
	default:
		return fmt.Errorf("unsupported UPLOAD_FAILURE_POLICY: %s", c.Upload.FailurePolicy)
	}
	if c.Upload.MaxSizeBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_SIZE_BYTES must be positive")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS required when KAFKA_ENABLED is set")
	}
	return nil
}
