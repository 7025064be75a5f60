package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds everything the server needs at startup
type Config struct {
	Environment string
	ServerPort  string
	LogLevel    string

	StoreDriver    string
	AutoMigrate    bool
	ConnectRetries int
	RetryInterval  time.Duration
	Mongo          MongoConfig
	Postgres       *DBConfig // only set for the postgres driver

	SessionTTL           time.Duration
	EnforceSessionExpiry bool
	AuthRequired         bool
}

// MongoConfig locates the document store
type MongoConfig struct {
	URI      string
	Database string
}

// Load reads .env, then environment variables and an optional config file
func Load(configFile string) (*Config, error) {
	// A missing .env is fine, variables may come from the environment
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		Environment:          v.GetString("ENVIRONMENT"),
		ServerPort:           v.GetString("SERVER_PORT"),
		LogLevel:             v.GetString("LOG_LEVEL"),
		StoreDriver:          strings.ToLower(v.GetString("STORE_DRIVER")),
		AutoMigrate:          v.GetBool("AUTO_MIGRATE"),
		ConnectRetries:       v.GetInt("DB_CONNECT_RETRIES"),
		RetryInterval:        v.GetDuration("DB_RETRY_INTERVAL"),
		SessionTTL:           v.GetDuration("SESSION_TTL"),
		EnforceSessionExpiry: v.GetBool("SESSION_ENFORCE_EXPIRY"),
		AuthRequired:         v.GetBool("AUTH_REQUIRED"),
		Mongo: MongoConfig{
			URI:      v.GetString("MONGO_URI"),
			Database: v.GetString("MONGO_DATABASE"),
		},
	}

	switch cfg.StoreDriver {
	case DriverMongo:
		if cfg.Mongo.URI == "" || cfg.Mongo.Database == "" {
			return nil, fmt.Errorf("MONGO_URI and MONGO_DATABASE must be set for the mongo driver")
		}
	case DriverPostgres:
		dbCfg, err := loadDBConfig(v)
		if err != nil {
			return nil, err
		}
		cfg.Postgres = dbCfg
	case DriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q (want %s, %s or %s)", cfg.StoreDriver, DriverMongo, DriverPostgres, DriverMemory)
	}

	if cfg.ConnectRetries < 1 {
		cfg.ConnectRetries = 1
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_DRIVER", DriverMongo)
	v.SetDefault("AUTO_MIGRATE", true)
	v.SetDefault("DB_CONNECT_RETRIES", 5)
	v.SetDefault("DB_RETRY_INTERVAL", 5*time.Second)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "astrology")
	v.SetDefault("SESSION_TTL", 7*24*time.Hour)
	v.SetDefault("SESSION_ENFORCE_EXPIRY", false)
	v.SetDefault("AUTH_REQUIRED", false)
}
