package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server        ServerConfig
	App           AppConfig
	Log           LogConfig
	Inventory     InventoryConfig
	Orders        OrdersConfig
	Redis         RedisConfig
	MySQL         MySQLConfig
	Kafka         KafkaConfig
	Tracing       TracingConfig
	Collaborators CollaboratorsConfig
}

type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	HTTPPort        int           `envconfig:"SERVER_HTTP_PORT" default:"8080"`
	GRPCPort        int           `envconfig:"SERVER_GRPC_PORT" default:"9090"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"checkout-service"`
	Environment string `envconfig:"APP_ENV" default:"development"`
}

type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Pretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// InventoryConfig selects the stock ledger. Seed is applied on startup and
// overwrites existing quantities.
type InventoryConfig struct {
	Backend string         `envconfig:"INVENTORY_BACKEND" default:"memory"` // memory, redis or mysql
	Seed    map[string]int `envconfig:"INVENTORY_SEED" default:"Laptop-X:5,Mouse-Z:1"`
}

type OrdersConfig struct {
	Backend    string `envconfig:"ORDER_BACKEND" default:"memory"` // memory, sqlite or mysql
	SQLitePath string `envconfig:"ORDER_SQLITE_PATH" default:"./data/orders.db"`
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
	PoolSize int    `envconfig:"REDIS_POOL_SIZE" default:"100"`
}

type MySQLConfig struct {
	Host         string `envconfig:"DB_HOST" default:"localhost"`
	Port         int    `envconfig:"DB_PORT" default:"3306"`
	Name         string `envconfig:"DB_NAME" default:"checkout"`
	User         string `envconfig:"DB_USER" default:"root"`
	Password     string `envconfig:"DB_PASS" default:""`
	MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"50"`
	MaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`
}

// KafkaConfig enables order events when Brokers is non-empty.
type KafkaConfig struct {
	Brokers string `envconfig:"KAFKA_BROKERS" default:""`
	Topic   string `envconfig:"KAFKA_ORDER_TOPIC" default:"orders.placed"`
}

type TracingConfig struct {
	JaegerEndpoint string `envconfig:"TRACING_JAEGER_ENDPOINT" default:""`
}

// CollaboratorsConfig points at remote catalog and cart services. Empty
// URLs select the in-process stores.
type CollaboratorsConfig struct {
	CatalogURL  string        `envconfig:"CATALOG_URL" default:""`
	CartURL     string        `envconfig:"CART_URL" default:""`
	StepTimeout time.Duration `envconfig:"CHECKOUT_STEP_TIMEOUT" default:"3s"`
}

// HTTPAddress returns the HTTP listen address in host:port format.
func (s *ServerConfig) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", s.Host, s.HTTPPort)
}

func (s *ServerConfig) GRPCAddress() string {
	return fmt.Sprintf("%s:%d", s.Host, s.GRPCPort)
}

func (r *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// DSN returns the MySQL data source name.
func (d *MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// PrettyLogs reports whether console logging is wanted. Development always
// gets it.
func (c *Config) PrettyLogs() bool {
	return c.Log.Pretty || c.App.IsDevelopment()
}

// Validate rejects unknown backend names.
func (c *Config) Validate() error {
	switch c.Inventory.Backend {
	case "memory", "redis", "mysql":
	default:
		return fmt.Errorf("unknown INVENTORY_BACKEND %q", c.Inventory.Backend)
	}
	switch c.Orders.Backend {
	case "memory", "sqlite", "mysql":
	default:
		return fmt.Errorf("unknown ORDER_BACKEND %q", c.Orders.Backend)
	}
	for productID, qty := range c.Inventory.Seed {
		if qty < 0 {
			return fmt.Errorf("negative seed stock for %q", productID)
		}
	}
	return nil
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
