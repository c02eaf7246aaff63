package config

import (
	"time"

	"go-credit-inventory/pkg/database"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	Port string `envconfig:"PORT" default:"3000"`

	DBDriver    string `envconfig:"DB_DRIVER" default:"sqlite"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
	DataDir     string `envconfig:"DATA_DIR" default:"data"`
	DBDebug     bool   `envconfig:"DB_DEBUG" default:"false"`

	JWTSecret  string        `envconfig:"JWT_SECRET" default:"change-me-session-secret"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"24h"`

	// Rate applied to new profiles that do not set their own (USD to DZD by default)
	DefaultCurrencyRate decimal.Decimal `envconfig:"DEFAULT_CURRENCY_RATE" default:"134.5"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	LogFile   string `envconfig:"LOG_FILE"`
}

// Load reads an optional .env file and then the process environment.
// The returned bool reports whether a .env file was found.
func Load() (Config, bool, error) {
	foundEnv := godotenv.Load() == nil

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, foundEnv, err
	}
	return cfg, foundEnv, nil
}

func (c Config) Database() database.Config {
	return database.Config{
		Driver:  c.DBDriver,
		DSN:     c.DatabaseURL,
		DataDir: c.DataDir,
		Debug:   c.DBDebug,
	}
}
