package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vladislavdragonenkov/storefront/internal/cart"
	"github.com/vladislavdragonenkov/storefront/internal/checkout"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/rabbitmq"
	"github.com/vladislavdragonenkov/storefront/internal/pricing"
)

// StorageDriver выбирает хранилище снимка корзины.
type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverFile     StorageDriver = "file"
	StorageDriverPostgres StorageDriver = "postgres"
)

// Config описывает настройки запуска витрины.
type Config struct {
	HTTPAddr    string `yaml:"http_addr"`
	MetricsAddr string `yaml:"metrics_addr"`

	CatalogDir string `yaml:"catalog_dir"`

	StorageDriver       StorageDriver `yaml:"storage_driver"`
	StorageDir          string        `yaml:"storage_dir"`
	CartKey             string        `yaml:"cart_key"`
	PostgresDSN         string        `yaml:"postgres_dsn"`
	PostgresAutoMigrate bool          `yaml:"postgres_auto_migrate"`

	KafkaBrokers     []string `yaml:"kafka_brokers"`
	RelayBufferSize  int      `yaml:"relay_buffer_size"`
	RelayMaxAttempts int      `yaml:"relay_max_attempts"`

	RabbitMQURL      string `yaml:"rabbitmq_url"`
	RabbitMQQueue    string `yaml:"rabbitmq_queue"`
	RabbitMQPoolSize int    `yaml:"rabbitmq_pool_size"`

	DispatchBaseURL     string                  `yaml:"dispatch_base_url"`
	ClearCartOnCheckout bool                    `yaml:"clear_cart_on_checkout"`
	Money               pricing.FormatterConfig `yaml:"money"`

	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DefaultConfig возвращает настройки для локального запуска.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:            ":8080",
		MetricsAddr:         ":9090",
		CatalogDir:          "./data",
		StorageDriver:       StorageDriverMemory,
		StorageDir:          "./data",
		CartKey:             cart.DefaultStorageKey,
		PostgresAutoMigrate: true,
		RelayBufferSize:     256,
		RelayMaxAttempts:    3,
		RabbitMQQueue:       rabbitmq.DefaultQueue,
		RabbitMQPoolSize:    4,
		DispatchBaseURL:     checkout.DefaultDispatchBaseURL,
		Money:               pricing.DefaultFormatterConfig(),
		ShutdownTimeout:     5 * time.Second,
	}
}

// LoadConfigFile накладывает YAML-файл на cfg. Незаданные в файле поля сохраняются.
func LoadConfigFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	var errs []error
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("http_addr is required"))
	}
	if c.CartKey == "" {
		errs = append(errs, errors.New("cart_key is required"))
	}
	switch c.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverFile:
		if c.StorageDir == "" {
			errs = append(errs, errors.New("storage_dir is required for file storage"))
		}
	case StorageDriverPostgres:
		if c.PostgresDSN == "" {
			errs = append(errs, errors.New("postgres_dsn is required for postgres storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported storage driver %q", c.StorageDriver))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown_timeout must be positive"))
	}
	return errors.Join(errs...)
}
