package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppPort string `mapstructure:"APP_PORT"`

	MySQLHost string `mapstructure:"MYSQL_HOST"`
	MySQLPort string `mapstructure:"MYSQL_PORT"`
	MySQLDB   string `mapstructure:"MYSQL_DB"`
	MySQLUser string `mapstructure:"MYSQL_USER"`
	MySQLPass string `mapstructure:"MYSQL_PASS"`

	RedisAddr string `mapstructure:"REDIS_ADDR"`
	RedisDB   int    `mapstructure:"REDIS_DB"`

	IdempTTLSecs int `mapstructure:"IDEMPOTENCY_TTL_SECONDS"`
	LockTTLSecs  int `mapstructure:"LOCK_TTL_SECONDS"`

	// Empty means the catalog compiled into the binary.
	CatalogPath string `mapstructure:"CATALOG_PATH"`

	PubSubProjectID string `mapstructure:"PUBSUB_PROJECT_ID"`
	PubSubTopic     string `mapstructure:"PUBSUB_TOPIC"`

	GCSBucket         string `mapstructure:"GCS_BUCKET"`
	GCSAccessID       string `mapstructure:"GCS_ACCESS_ID"`
	GCSPrivateKeyPath string `mapstructure:"GCS_PRIVATE_KEY_PATH"`
	SignedURLTTLSecs  int    `mapstructure:"SIGNED_URL_TTL_SECONDS"`

	ReconcileCron  string `mapstructure:"RECONCILE_CRON"`
	ReconcileBatch int    `mapstructure:"RECONCILE_BATCH"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
}

var defaults = map[string]any{
	"APP_PORT":   "8080",
	"MYSQL_HOST": "mysql",
	"MYSQL_PORT": "3306",
	"MYSQL_DB":   "mortgage",
	"MYSQL_USER": "mortgage",
	"MYSQL_PASS": "mortgage",

	"REDIS_ADDR": "redis:6379",
	"REDIS_DB":   0,

	"IDEMPOTENCY_TTL_SECONDS": 300,
	"LOCK_TTL_SECONDS":        10,

	"CATALOG_PATH": "",

	"PUBSUB_PROJECT_ID": "",
	"PUBSUB_TOPIC":      "loan-events",

	"GCS_BUCKET":             "",
	"GCS_ACCESS_ID":          "",
	"GCS_PRIVATE_KEY_PATH":   "",
	"SIGNED_URL_TTL_SECONDS": 900,

	"RECONCILE_CRON":  "0 */5 * * * *",
	"RECONCILE_BATCH": 500,

	"LOG_LEVEL":  "info",
	"LOG_FORMAT": "json",
}

// Load reads envFile (".env" when empty; a missing default file is fine), then the
// process environment, over the defaults. Variables already set in the environment win.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	} else if err := godotenv.Load(envFile); err != nil {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.AutomaticEnv()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.IdempTTLSecs <= 0 || c.LockTTLSecs <= 0 || c.SignedURLTTLSecs <= 0 {
		return errors.New("IDEMPOTENCY_TTL_SECONDS, LOCK_TTL_SECONDS and SIGNED_URL_TTL_SECONDS must be positive")
	}
	if c.PubSubProjectID != "" && c.PubSubTopic == "" {
		return errors.New("PUBSUB_TOPIC is required when PUBSUB_PROJECT_ID is set")
	}
	if c.GCSBucket != "" && (c.GCSAccessID == "" || c.GCSPrivateKeyPath == "") {
		return errors.New("GCS_ACCESS_ID and GCS_PRIVATE_KEY_PATH are required when GCS_BUCKET is set")
	}
	if c.ReconcileCron == "" {
		return errors.New("missing RECONCILE_CRON")
	}
	return nil
}

func (c *Config) IdempotencyTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }

func (c *Config) LockTTL() time.Duration { return time.Duration(c.LockTTLSecs) * time.Second }

func (c *Config) SignedURLTTL() time.Duration { return time.Duration(c.SignedURLTTLSecs) * time.Second }

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
