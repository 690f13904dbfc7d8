package config

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App struct {
		Env       string `env:"APP_ENV" env-default:"development"`
		Port      int    `env:"APP_PORT" env-default:"8080"`
		SentryUrl string `env:"SENTRY_URL"`
	}
	Postgres struct {
		Port    int    `env:"POSTGRES_PORT"`
		Host    string `env:"POSTGRES_HOST"`
		User    string `env:"POSTGRES_USER"`
		Pass    string `env:"POSTGRES_PASS"`
		Name    string `env:"POSTGRES_NAME"`
		SslMode string `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	}
	Telegram struct {
		Enabled bool   `env:"TELEGRAM_ENABLED" env-default:"false"`
		Token   string `env:"TELEGRAM_TOKEN"`
		Channel int64  `env:"TELEGRAM_CHANNEL"`
	}
	Browser struct {
		CdpUrl          string        `env:"BROWSER_CDP_URL" env-default:"http://localhost:9222"`
		PageLoadTimeout time.Duration `env:"BROWSER_PAGE_LOAD_TIMEOUT" env-default:"30s"`
		SelectorTimeout time.Duration `env:"BROWSER_SELECTOR_TIMEOUT" env-default:"10s"`
	}
	Scanner struct {
		Profiles          string        `env:"SCANNER_PROFILES"`
		HoursThreshold    int           `env:"SCANNER_HOURS_THRESHOLD" env-default:"24"`
		ScrollCount       int           `env:"SCANNER_SCROLL_COUNT" env-default:"5"`
		RandomDelayMin    time.Duration `env:"SCANNER_RANDOM_DELAY_MIN" env-default:"1s"`
		RandomDelayMax    time.Duration `env:"SCANNER_RANDOM_DELAY_MAX" env-default:"3s"`
		MaxPosts          int           `env:"SCANNER_MAX_POSTS" env-default:"5"`
		YesterdayHours    int           `env:"SCANNER_YESTERDAY_HOURS" env-default:"48"`
		ScanInterval      string        `env:"SCANNER_SCAN_INTERVAL" env-default:"0 * * * *"`
		InterProfileDelay time.Duration `env:"SCANNER_INTER_PROFILE_DELAY" env-default:"5s"`
	}
	Storage struct {
		DataDir    string `env:"STORAGE_DATA_DIR" env-default:"./data"`
		CaptionExt string `env:"STORAGE_CAPTION_EXT" env-default:".txt"`
	}
}

// GetDSN returns the key/value Postgres DSN used by database/sql tooling.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("dbname=%s user=%s password=%s host=%s port=%d sslmode=%s",
		c.Postgres.Name, c.Postgres.User, c.Postgres.Pass, c.Postgres.Host, c.Postgres.Port, c.Postgres.SslMode)
}

// ProfileList splits the configured comma-separated profile identifiers.
func (c *Config) ProfileList() []string {
	var profiles []string
	for _, p := range strings.Split(c.Scanner.Profiles, ",") {
		if p = strings.TrimSpace(p); p != "" {
			profiles = append(profiles, p)
		}
	}
	return profiles
}

var (
	once sync.Once
	cfg  *Config
)

func New() (*Config, error) {
	once.Do(func() {
		cfg = &Config{}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			help, _ := cleanenv.GetDescription(cfg, nil)
			log.Fatalf("Failed to read configuration: %v\n%v", err, help)
		}
	})
	return cfg, nil
}
