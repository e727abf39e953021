package internal

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Env           string              `mapstructure:"env" env:"APP_ENV" envDefault:"development"`
	Server        ServerConfig        `mapstructure:"http_server" envPrefix:"HTTP_"`
	Database      DatabaseConfig      `mapstructure:"database" envPrefix:"DB_"`
	Security      SecurityConfig      `mapstructure:"security" envPrefix:"SECURITY_"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Registry      RegistryConfig      `mapstructure:"registry" envPrefix:"REGISTRY_"`
	Realtime      RealtimeConfig      `mapstructure:"realtime" envPrefix:"REALTIME_"`
	Events        EventsConfig        `mapstructure:"events" envPrefix:"EVENTS_"`
	Mail          MailConfig          `mapstructure:"mail" envPrefix:"SMTP_"`
	Reminders     ReminderConfig      `mapstructure:"reminders" envPrefix:"REMINDER_"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port" env:"PORT" envDefault:"8080"`
	BaseURL           string        `mapstructure:"base_url" env:"BASE_URL"`
	AllowedOrigins    string        `mapstructure:"allowed_origins" env:"ALLOWED_ORIGINS" envDefault:"*"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" env:"READ_HEADER_TIMEOUT" envDefault:"5s"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout" env:"READ_TIMEOUT" envDefault:"15s"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout" env:"IDLE_TIMEOUT" envDefault:"60s"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout" env:"WRITE_TIMEOUT" envDefault:"15s"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" env:"MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" env:"CONN_MAX_LIFETIME" envDefault:"30m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" env:"CONN_MAX_IDLE_TIME" envDefault:"5m"`
	Source          string        `mapstructure:"source" env:"SOURCE,required"`
}

type SecurityConfig struct {
	AccessTokenSecret    string        `mapstructure:"access_token_secret" env:"ACCESS_TOKEN_SECRET,required"`
	RefreshTokenSecret   string        `mapstructure:"refresh_token_secret" env:"REFRESH_TOKEN_SECRET,required"`
	AccessTokenDuration  time.Duration `mapstructure:"access_token_duration" env:"ACCESS_TOKEN_DURATION" envDefault:"15m"`
	RefreshTokenDuration time.Duration `mapstructure:"refresh_token_duration" env:"REFRESH_TOKEN_DURATION" envDefault:"168h"`
	BCryptCost           int           `mapstructure:"bcrypt_cost" env:"BCRYPT_COST" envDefault:"12"`
	LoginAttemptsPerMin  int           `mapstructure:"login_attempts_per_minute" env:"LOGIN_ATTEMPTS_PER_MINUTE" envDefault:"5"`
}

type ObservabilityConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics" envPrefix:"METRICS_"`
	Logging LoggingConfig `mapstructure:"logging" envPrefix:"LOG_"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" env:"ENABLED" envDefault:"true"`
	Path    string `mapstructure:"path" env:"PATH" envDefault:"/metrics"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" env:"LEVEL" envDefault:"info"`
	Format string `mapstructure:"format" env:"FORMAT" envDefault:"json"`
}

// RegistryConfig points at an optional external feature registry file.
// An empty path means only the embedded registry is used.
type RegistryConfig struct {
	Path          string        `mapstructure:"path" env:"PATH"`
	Watch         bool          `mapstructure:"watch" env:"WATCH" envDefault:"false"`
	StaleAfter    time.Duration `mapstructure:"stale_after" env:"STALE_AFTER" envDefault:"4320h"`
	MinScore      int           `mapstructure:"min_score" env:"MIN_SCORE" envDefault:"80"`
	DebounceDelay time.Duration `mapstructure:"debounce_delay" env:"DEBOUNCE_DELAY" envDefault:"250ms"`
}

type RealtimeConfig struct {
	Enabled      bool          `mapstructure:"enabled" env:"ENABLED" envDefault:"true"`
	PingInterval time.Duration `mapstructure:"ping_interval" env:"PING_INTERVAL" envDefault:"30s"`
}

type EventsConfig struct {
	KafkaBrokers []string `mapstructure:"kafka_brokers" env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `mapstructure:"kafka_topic" env:"KAFKA_TOPIC" envDefault:"hr.events"`
}

func (c *EventsConfig) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

type MailConfig struct {
	Host     string `mapstructure:"host" env:"HOST"`
	Port     int    `mapstructure:"port" env:"PORT" envDefault:"587"`
	Username string `mapstructure:"username" env:"USERNAME"`
	Password string `mapstructure:"password" env:"PASSWORD"`
	From     string `mapstructure:"from" env:"FROM" envDefault:"hr-noreply@localhost"`
}

func (c *MailConfig) Enabled() bool {
	return c.Host != ""
}

type ReminderConfig struct {
	Interval   time.Duration `mapstructure:"interval" env:"INTERVAL" envDefault:"24h"`
	Window     time.Duration `mapstructure:"window" env:"WINDOW" envDefault:"720h"`
	Workers    int           `mapstructure:"workers" env:"WORKERS" envDefault:"4"`
	Recipients []string      `mapstructure:"recipients" env:"RECIPIENTS" envSeparator:","`
}

// LoadConfigFromEnv reads configuration from the process environment, loading a
// .env file first when one is present.
func LoadConfigFromEnv() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	return &cfg, nil
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.Registry.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("registry config: %v", err))
	}

	if err := c.Observability.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.AllowedOrigins != "" {
		for _, origin := range c.Origins() {
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *ServerConfig) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func (c *DatabaseConfig) Validate() error {
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *SecurityConfig) Validate() error {
	if len(c.AccessTokenSecret) < 32 {
		return errors.New("access token secret must be at least 32 characters")
	}
	if len(c.RefreshTokenSecret) < 32 {
		return errors.New("refresh token secret must be at least 32 characters")
	}
	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return errors.New("access and refresh token secrets must differ")
	}
	if c.AccessTokenDuration <= 0 || c.RefreshTokenDuration <= c.AccessTokenDuration {
		return errors.New("refresh_token_duration must exceed access_token_duration")
	}
	if c.BCryptCost < 10 || c.BCryptCost > 15 {
		return fmt.Errorf("bcrypt_cost %d out of range [10,15]", c.BCryptCost)
	}
	return nil
}

func (c *RegistryConfig) Validate() error {
	if c.Watch && c.Path == "" {
		return errors.New("watch requires an external registry path")
	}
	if c.MinScore < 0 || c.MinScore > 100 {
		return fmt.Errorf("min_score %d out of range [0,100]", c.MinScore)
	}
	return nil
}

func (c *LoggingConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown level %q", c.Level)
	}
	switch c.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("unknown format %q", c.Format)
	}
	return nil
}
