package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/app"
)

const (
	envConfigFile          = "STOREFRONT_CONFIG"
	envLogLevel            = "STOREFRONT_LOG_LEVEL"
	envHTTPAddr            = "STOREFRONT_HTTP_ADDR"
	envMetricsAddr         = "STOREFRONT_METRICS_ADDR"
	envCatalogDir          = "STOREFRONT_CATALOG_DIR"
	envStorageDriver       = "STOREFRONT_STORAGE_DRIVER"
	envStorageDir          = "STOREFRONT_STORAGE_DIR"
	envCartKey             = "STOREFRONT_CART_KEY"
	envPostgresDSN         = "STOREFRONT_POSTGRES_DSN"
	envPostgresAutoMigrate = "STOREFRONT_POSTGRES_AUTO_MIGRATE"
	envKafkaBrokers        = "STOREFRONT_KAFKA_BROKERS"
	envRelayBufferSize     = "STOREFRONT_RELAY_BUFFER_SIZE"
	envRelayMaxAttempts    = "STOREFRONT_RELAY_MAX_ATTEMPTS"
	envRabbitMQURL         = "STOREFRONT_RABBITMQ_URL"
	envRabbitMQQueue       = "STOREFRONT_RABBITMQ_QUEUE"
	envRabbitMQPoolSize    = "STOREFRONT_RABBITMQ_POOL_SIZE"
	envDispatchBaseURL     = "STOREFRONT_DISPATCH_BASE_URL"
	envClearCartOnCheckout = "STOREFRONT_CLEAR_CART_ON_CHECKOUT"
	envShutdownTimeout     = "STOREFRONT_SHUTDOWN_TIMEOUT"
)

type envLookup func(key string) (string, bool)

// readConfig собирает конфигурацию: значения по умолчанию, затем YAML-файл
// из STOREFRONT_CONFIG, затем переменные окружения.
func readConfig(lookup envLookup) (app.Config, []string, error) {
	cfg := app.DefaultConfig()
	if path, ok := lookup(envConfigFile); ok && strings.TrimSpace(path) != "" {
		if err := app.LoadConfigFile(strings.TrimSpace(path), &cfg); err != nil {
			return cfg, nil, err
		}
	}
	cfg, warnings := applyEnv(cfg, lookup)
	return cfg, warnings, nil
}

// readConfigFromEnv накладывает окружение на настройки по умолчанию.
func readConfigFromEnv(lookup envLookup) (app.Config, []string) {
	return applyEnv(app.DefaultConfig(), lookup)
}

// applyEnv переопределяет поля cfg. Некорректные значения не применяются
// и возвращаются как предупреждения.
func applyEnv(cfg app.Config, lookup envLookup) (app.Config, []string) {
	var warnings []string
	warn := func(key, value string, err error) {
		warnings = append(warnings, fmt.Sprintf("ignoring %s=%q: %v", key, value, err))
	}

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str(envHTTPAddr, &cfg.HTTPAddr)
	str(envMetricsAddr, &cfg.MetricsAddr)
	str(envCatalogDir, &cfg.CatalogDir)
	str(envStorageDir, &cfg.StorageDir)
	str(envCartKey, &cfg.CartKey)
	str(envPostgresDSN, &cfg.PostgresDSN)
	str(envRabbitMQURL, &cfg.RabbitMQURL)
	str(envRabbitMQQueue, &cfg.RabbitMQQueue)
	str(envDispatchBaseURL, &cfg.DispatchBaseURL)

	if v, ok := lookup(envStorageDriver); ok && strings.TrimSpace(v) != "" {
		cfg.StorageDriver = app.StorageDriver(strings.ToLower(strings.TrimSpace(v)))
	}

	if v, ok := lookup(envKafkaBrokers); ok && strings.TrimSpace(v) != "" {
		cfg.KafkaBrokers = splitList(v)
	}

	boolean := func(key string, dst *bool) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		parsed, err := parseBool(v)
		if err != nil {
			warn(key, v, err)
			return
		}
		*dst = parsed
	}
	boolean(envPostgresAutoMigrate, &cfg.PostgresAutoMigrate)
	boolean(envClearCartOnCheckout, &cfg.ClearCartOnCheckout)

	positive := func(v int) bool { return v > 0 }
	integer := func(key string, dst *int) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		parsed, err := parseInt(v, positive, "must be > 0")
		if err != nil {
			warn(key, v, err)
			return
		}
		*dst = parsed
	}
	integer(envRelayBufferSize, &cfg.RelayBufferSize)
	integer(envRelayMaxAttempts, &cfg.RelayMaxAttempts)
	integer(envRabbitMQPoolSize, &cfg.RabbitMQPoolSize)

	if v, ok := lookup(envShutdownTimeout); ok && strings.TrimSpace(v) != "" {
		parsed, err := parseDuration(v, func(d time.Duration) bool { return d > 0 }, "must be > 0")
		if err != nil {
			warn(envShutdownTimeout, v, err)
		} else {
			cfg.ShutdownTimeout = parsed
		}
	}

	return cfg, warnings
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid bool value")
	}
}

func parseInt(raw string, valid func(int) bool, rule string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if !valid(value) {
		return 0, fmt.Errorf("%s", rule)
	}
	return value, nil
}

func parseDuration(raw string, valid func(time.Duration) bool, rule string) (time.Duration, error) {
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if !valid(value) {
		return 0, fmt.Errorf("%s", rule)
	}
	return value, nil
}
