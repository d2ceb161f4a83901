package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/shopspring/decimal"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
)

type ReferralConfig struct {
	Env             string `yaml:"env" env:"REFERRAL_ENV" env-default:"local"`
	Timezone        string `yaml:"timezone" env:"REFERRAL_TIMEZONE" env-default:"Asia/Dhaka"`
	HTTPServer      `yaml:"http_server"`
	GRPCServer      `yaml:"grpc_server"`
	ReferralDB      `yaml:"referral_db"`
	LogConfig       `yaml:"log_config"`
	KafkaService    `yaml:"kafka_service"`
	Redis           `yaml:"redis"`
	IdentityService `yaml:"identity_service"`
	OrderService    `yaml:"order_service"`
	Commission      `yaml:"commission"`
	Leaderboard     `yaml:"leaderboard"`
}

type HTTPServer struct {
	Host         string        `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port         string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env-default:"30s"`
}

type GRPCServer struct {
	Host string `yaml:"host" env:"GRPC_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"GRPC_PORT" env-default:"50061"`
}

type ReferralDB struct {
	// Driver is "postgres" or "memory".
	Driver         string `yaml:"driver" env:"REFERRAL_DB_DRIVER" env-default:"postgres"`
	Dsn            string `yaml:"dsn" env:"REFERRAL_DB_DSN"`
	MigrationsPath string `yaml:"migrations_path" env:"REFERRAL_MIGRATIONS_PATH" env-default:"migrations"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"json"`
}

type KafkaService struct {
	Enabled         bool     `yaml:"enabled" env:"KAFKA_ENABLED" env-default:"false"`
	Brokers         []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	EventsTopic     string   `yaml:"events_topic" env-default:"referral-events"`
	ConversionTopic string   `yaml:"conversion_topic" env-default:"conversion-events"`
	GroupID         string   `yaml:"group_id" env-default:"referral-service"`
}

type Redis struct {
	Addr     string        `yaml:"addr" env:"REDIS_ADDR"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env-default:"0"`
	TTL      time.Duration `yaml:"ttl" env-default:"5m"`
}

type IdentityService struct {
	BaseURL string        `yaml:"base_url" env:"IDENTITY_SERVICE_URL"`
	Timeout time.Duration `yaml:"timeout" env-default:"3s"`
}

type OrderService struct {
	BaseURL string        `yaml:"base_url" env:"ORDER_SERVICE_URL"`
	Timeout time.Duration `yaml:"timeout" env-default:"3s"`
}

type Commission struct {
	// Rates maps level to percent, e.g. {1: "30", 2: "10"}. Empty means the default table.
	Rates map[int]string `yaml:"rates"`
}

type Leaderboard struct {
	Concurrency  int `yaml:"concurrency" env-default:"8"`
	DefaultLimit int `yaml:"default_limit" env-default:"20"`
	MaxLimit     int `yaml:"max_limit" env-default:"100"`
}

func MustLoad() *ReferralConfig {

	// Processing env config variable and file
	configPath := os.Getenv("REFERRAL_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("REFERRAL_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	// YAML to struct object
	var cfg ReferralConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}

func (c Commission) RateTable() (domain.RateTable, error) {
	rates := make(map[int]decimal.Decimal, len(c.Rates))
	for level, raw := range c.Rates {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return domain.RateTable{}, fmt.Errorf("commission rate for level %d: %w", level, err)
		}
		rates[level] = rate
	}
	return domain.NewRateTable(rates)
}

func (c *ReferralConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}
