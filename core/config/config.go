package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Mongo       MongoConfig       `mapstructure:"mongo"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	Reservation ReservationConfig `mapstructure:"reservation"`
	Queue       QueueConfig       `mapstructure:"queue"`
	Archive     ArchiveConfig     `mapstructure:"archive"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Team        TeamConfig        `mapstructure:"team"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// Enabled reports whether a Postgres connection was configured.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

type ReservationConfig struct {
	// Store selects the slot backend: memory, redis, postgres or mongo.
	Store          string        `mapstructure:"store"`
	VenuesPerSlot  int           `mapstructure:"venues_per_slot"`
	TimeSlots      []string      `mapstructure:"time_slots"`
	MaxPreferences int           `mapstructure:"max_preferences"`
	RetryAttempts  int           `mapstructure:"retry_attempts"`
	RetryBackoff   time.Duration `mapstructure:"retry_backoff"`
	LockTTL        time.Duration `mapstructure:"lock_ttl"`
}

type QueueConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	Concurrency int  `mapstructure:"concurrency"`
	MaxRetry    int  `mapstructure:"max_retry"`
}

type ArchiveConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
	// Admins lists the usernames allowed to trigger an export.
	Admins []string `mapstructure:"admins"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type TeamConfig struct {
	MaxMembers int           `mapstructure:"max_members"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl"`
	// SeedUsers registers known usernames for the in-memory directory.
	SeedUsers []string `mapstructure:"seed_users"`
}

var (
	mu       sync.RWMutex
	instance *Config
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "court-reservation-api")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 7070)
	v.SetDefault("server.read_timeout", 7*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "courts")
	v.SetDefault("database.ssl_mode", "disable")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "courts")
	v.SetDefault("mongo.collection", "slots")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "court-reservation-api")

	v.SetDefault("reservation.store", "memory")
	v.SetDefault("reservation.venues_per_slot", 4)
	v.SetDefault("reservation.time_slots", []string{"16:00", "17:00", "18:00", "19:00", "20:00", "21:00"})
	v.SetDefault("reservation.max_preferences", 3)
	v.SetDefault("reservation.retry_attempts", 3)
	v.SetDefault("reservation.retry_backoff", 50*time.Millisecond)
	v.SetDefault("reservation.lock_ttl", 5*time.Second)

	v.SetDefault("queue.enabled", false)
	v.SetDefault("queue.concurrency", 5)
	v.SetDefault("queue.max_retry", 10)

	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.bucket", "")
	v.SetDefault("archive.region", "us-east-1")
	v.SetDefault("archive.endpoint", "")
	v.SetDefault("archive.access_key", "")
	v.SetDefault("archive.secret_key", "")
	v.SetDefault("archive.prefix", "reservations")
	v.SetDefault("archive.admins", []string{})

	v.SetDefault("rate_limit.requests_per_second", 5)
	v.SetDefault("rate_limit.burst", 10)

	v.SetDefault("team.max_members", 4)
	v.SetDefault("team.cache_ttl", 5*time.Minute)
	v.SetDefault("team.seed_users", []string{})
}

// Load reads .env (if present), an optional CONFIG_FILE and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	Set(cfg)
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Reservation.Store {
	case "memory", "redis", "postgres", "mongo":
	default:
		return fmt.Errorf("unknown reservation store %q", c.Reservation.Store)
	}
	if c.Reservation.VenuesPerSlot <= 0 {
		return fmt.Errorf("reservation.venues_per_slot must be positive")
	}
	if len(c.Reservation.TimeSlots) == 0 {
		return fmt.Errorf("reservation.time_slots must not be empty")
	}
	if c.Reservation.MaxPreferences <= 0 {
		return fmt.Errorf("reservation.max_preferences must be positive")
	}
	if c.Reservation.Store == "redis" && !c.Redis.Enabled() {
		return fmt.Errorf("reservation store redis requires redis.addr")
	}
	if c.Reservation.Store == "postgres" && !c.Database.Enabled() {
		return fmt.Errorf("reservation store postgres requires database.host")
	}
	if c.Queue.Enabled && !c.Redis.Enabled() {
		return fmt.Errorf("queue requires redis.addr")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	return nil
}

func Set(cfg *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = cfg
}

func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	if instance == nil {
		panic("config: Get called before Load")
	}
	return instance
}

func GetSafe() (*Config, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return instance, instance != nil
}
