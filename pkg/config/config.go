package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"FinCast/internal/domain/models"
	"FinCast/pkg/logger"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string        `yaml:"environment" default:"development"`
	Server      ServerConfig  `yaml:"server"`
	Log         logger.Config `yaml:"log"`
	Metrics     struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Engine   models.EngineConfig `yaml:"engine"`
	Calendar struct {
		Holidays []string `yaml:"holidays"`
	} `yaml:"calendar"`
	Source struct {
		Provider        string        `yaml:"provider" default:"yahoo"`
		LookbackDays    int           `yaml:"lookback_days" default:"365"`
		Timeout         time.Duration `yaml:"timeout" default:"15s"`
		FallbackToStore bool          `yaml:"fallback_to_store" default:"true"`
	} `yaml:"source"`
	Cache struct {
		TTL   time.Duration `yaml:"ttl" default:"15m"`
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	RateLimit struct {
		Enabled      bool    `yaml:"enabled" default:"true"`
		Capacity     float64 `yaml:"capacity" default:"20"`
		RefillPerSec float64 `yaml:"refill_per_sec" default:"5"`
	} `yaml:"rate_limit"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		RequestTopic string   `yaml:"request_topic" default:"fincast.forecast-requests"`
		ResultTopic  string   `yaml:"result_topic" default:"fincast.forecasts"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"50ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id" default:"fincast"`
			Workers    int           `yaml:"workers" default:"4"`
			BufferSize int           `yaml:"buffer_size" default:"64"`
			RetryMax   int           `yaml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"100ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"5s"`
			DLQTopic   string        `yaml:"dlq_topic" default:"fincast.forecast-requests.dlq"`
			MinBytes   int           `yaml:"min_bytes" default:"1"`
			MaxBytes   int           `yaml:"max_bytes" default:"10000000"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"fincast"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	} `yaml:"clickhouse"`
	Scheduler struct {
		Enabled   bool          `yaml:"enabled"`
		Spec      string        `yaml:"spec" default:"0 30 21 * * MON-FRI"`
		Watchlist []string      `yaml:"watchlist"`
		Timeout   time.Duration `yaml:"timeout" default:"2m"`
	} `yaml:"scheduler"`
	WebSocket struct {
		Enabled      bool          `yaml:"enabled" default:"true"`
		Path         string        `yaml:"path" default:"/ws/forecasts"`
		PingInterval time.Duration `yaml:"ping_interval" default:"30s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	} `yaml:"websocket"`
}

type ServerConfig struct {
	Port            int           `yaml:"port" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" default:"20s"`
}

// Default returns a configuration with every default applied.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads .env (when present), the YAML file, then applies environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("FINCAST_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("FINCAST_WATCHLIST"); v != "" {
		c.Scheduler.Watchlist = splitList(v)
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Source.Provider {
	case "yahoo":
	case "clickhouse":
		if !c.ClickHouse.Enabled {
			return fmt.Errorf("source.provider 'clickhouse' requires clickhouse.enabled")
		}
	default:
		return fmt.Errorf("source.provider must be 'yahoo' or 'clickhouse', got '%s'", c.Source.Provider)
	}
	if c.Source.LookbackDays <= 0 {
		return fmt.Errorf("source.lookback_days must be positive")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Scheduler.Enabled && len(c.Scheduler.Watchlist) == 0 {
		return fmt.Errorf("scheduler.watchlist cannot be empty when the scheduler is enabled")
	}
	if err := validateEngine(c.Engine); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	for _, h := range c.Calendar.Holidays {
		if _, err := time.Parse(models.DateLayout, h); err != nil {
			return fmt.Errorf("calendar.holidays: %q is not YYYY-MM-DD", h)
		}
	}
	return nil
}

func validateEngine(e models.EngineConfig) error {
	ic := e.Indicators
	if err := ic.Validate(); err != nil {
		return err
	}
	if ic.ShortWindow > ic.LongWindow {
		return fmt.Errorf("short_window %d exceeds long_window %d", ic.ShortWindow, ic.LongWindow)
	}
	if e.Forecast.HorizonDays < 1 {
		return fmt.Errorf("forecast.horizon_days must be positive")
	}
	if e.Forecast.Confidence <= 0 || e.Forecast.Confidence >= 1 {
		return fmt.Errorf("forecast.confidence must be in (0, 1)")
	}
	if e.Trend.Oversold >= e.Trend.Overbought {
		return fmt.Errorf("trend.oversold must be below trend.overbought")
	}
	if e.Trend.MaxDriftRatio < 0 || e.Trend.MaxDriftRatio > 1 {
		return fmt.Errorf("trend.max_drift_ratio must be in [0, 1]")
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
