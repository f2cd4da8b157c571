package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverMySQL  = "mysql"
	StoreDriverMemory = "memory"
)

type Config struct {
	App      AppConfig
	HTTP     ServerConfig
	GRPC     ServerConfig
	Store    StoreConfig
	MySQL    MySQLConfig
	Log      LogConfig
	Gateway  GatewayConfig
	RabbitMQ RabbitMQConfig
	Metrics  MetricsConfig
	Tracing  TracingConfig
	Orders   OrdersConfig
	Jobs     JobsConfig
}

type AppConfig struct {
	ServiceName string
}

type ServerConfig struct {
	Host string
	Port string
}

type StoreConfig struct {
	Driver string
}

type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level string
}

type GatewayConfig struct {
	Name                string
	SupportedCurrencies []string
	DeclineAboveAmount  int64
	ChargeTimeout       time.Duration
}

// RabbitMQConfig is optional; an empty URL disables event publishing.
type RabbitMQConfig struct {
	URL      string
	Exchange string
}

type MetricsConfig struct {
	Enabled bool
}

type TracingConfig struct {
	Enabled bool
}

// OrdersConfig tunes the pay-pending job. MaxPayAttempts caps failed charges
// per order; zero means unlimited.
type OrdersConfig struct {
	JobBatchSize   int32
	MaxPayAttempts int
}

type JobsConfig struct {
	PayPendingInterval time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	driver := strings.ToLower(getEnv("STORE_DRIVER", StoreDriverMySQL))
	if driver != StoreDriverMySQL && driver != StoreDriverMemory {
		return nil, errors.New("STORE_DRIVER must be one of: mysql, memory")
	}

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if driver == StoreDriverMySQL && mysqlDSN == "" {
		return nil, errors.New("MYSQL_DSN environment variable is required")
	}

	return &Config{
		App: AppConfig{
			ServiceName: getEnv("APP_SERVICE_NAME", "order-payments-service"),
		},
		HTTP: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("HTTP_PORT", "8080"),
		},
		GRPC: ServerConfig{
			Host: getEnv("GRPC_HOST", "0.0.0.0"),
			Port: getEnv("GRPC_PORT", "9090"),
		},
		Store: StoreConfig{
			Driver: driver,
		},
		MySQL: MySQLConfig{
			DSN:             mysqlDSN,
			MaxOpenConns:    getIntEnv("MYSQL_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntEnv("MYSQL_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getMinutesEnv("MYSQL_CONN_MAX_LIFETIME_MINUTES", 30*time.Minute),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Gateway: GatewayConfig{
			Name:                strings.ToLower(getEnv("GATEWAY_NAME", "stripe")),
			SupportedCurrencies: getListEnv("GATEWAY_SUPPORTED_CURRENCIES"),
			DeclineAboveAmount:  int64(getIntEnv("GATEWAY_DECLINE_ABOVE_AMOUNT", 0)),
			ChargeTimeout:       getSecondsEnv("GATEWAY_CHARGE_TIMEOUT_SECONDS", 10*time.Second),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      getEnv("RABBITMQ_URL", ""),
			Exchange: getEnv("RABBITMQ_EXCHANGE", "order-payments"),
		},
		Metrics: MetricsConfig{
			Enabled: getBoolEnv("METRICS_ENABLED", true),
		},
		Tracing: TracingConfig{
			Enabled: getBoolEnv("TRACING_ENABLED", false),
		},
		Orders: OrdersConfig{
			JobBatchSize:   int32(getIntEnv("ORDERS_JOB_BATCH_SIZE", 100)),
			MaxPayAttempts: getIntEnv("ORDERS_MAX_PAY_ATTEMPTS", 3),
		},
		Jobs: JobsConfig{
			PayPendingInterval: getMinutesEnv("ORDERS_PAY_PENDING_INTERVAL_MINUTES", 5*time.Minute),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getListEnv splits a comma separated value, dropping blanks.
func getListEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	items := make([]string, 0)
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

func getMinutesEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
