package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the server configuration, read from JOURNEY_* environment
// variables.
type Config struct {
	Addr         string `env:"ADDR" envDefault:":8080"`
	CatalogPath  string `env:"CATALOG" envDefault:"catalogs/demo.yaml"`
	TemplatesDir string `env:"TEMPLATES" envDefault:"templates"`
	MediaDir     string `env:"MEDIA_DIR" envDefault:"media"`

	Store      string `env:"STORE" envDefault:"memory"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"data/journey.db"`
	StateKey   string `env:"STATE_KEY" envDefault:"journeyUnlocked"`

	VideoMode           string        `env:"VIDEO_MODE" envDefault:"embedded"`
	DefaultDuration     time.Duration `env:"DEFAULT_DURATION" envDefault:"3m"`
	CelebrationInterval time.Duration `env:"CELEBRATION_INTERVAL" envDefault:"4s"`
	Strict              bool          `env:"STRICT" envDefault:"false"`
	VisitorIdle         time.Duration `env:"VISITOR_IDLE" envDefault:"24h"`

	LogMode   string `env:"LOG_MODE" envDefault:"dev"`
	LogRedact bool   `env:"LOG_REDACT" envDefault:"true"`
}

const envPrefix = "JOURNEY_"

// Load parses the environment into a Config and validates enum fields.
func Load() (Config, error) {
	return parse(env.Options{Prefix: envPrefix})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Store {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("JOURNEY_STORE: unsupported store %q", c.Store)
	}
	switch c.VideoMode {
	case "embedded", "timer":
	default:
		return fmt.Errorf("JOURNEY_VIDEO_MODE: unsupported mode %q", c.VideoMode)
	}
	if c.StateKey == "" {
		return fmt.Errorf("JOURNEY_STATE_KEY must not be empty")
	}
	if c.CelebrationInterval < 0 || c.DefaultDuration < 0 || c.VisitorIdle < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}
