// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var ErrInvalidConfig = errors.New("invalid config")

var validate = validator.New()

type Config struct {
	ServiceName string `env:"SERVICE_NAME,default=roomcast" validate:"required"`
	Addr        string `env:"ADDR,default=:3000" validate:"required"`
	NodeID      string `env:"NODE_ID" validate:"omitempty,max=128"`
	LogLevel    string `env:"LOG_LEVEL,default=info" validate:"oneof=debug info warn warning error"`
	LogFormat   string `env:"LOG_FORMAT,default=text" validate:"oneof=json text"`

	PingInterval   time.Duration `env:"PING_INTERVAL,default=25s" validate:"gt=0"`
	PingTimeout    time.Duration `env:"PING_TIMEOUT,default=20s" validate:"gt=0"`
	MaxPayload     int64         `env:"MAX_PAYLOAD,default=1000000" validate:"gt=0"`
	SendBuffer     int           `env:"SEND_BUFFER,default=256" validate:"gt=0"`
	AllowedOrigins string        `env:"ALLOWED_ORIGINS"`
	DedupRooms     bool          `env:"DEDUP_ROOMS,default=false"`

	// Inbound events per second allowed per socket. Zero disables the limit.
	EventRate  int `env:"EVENT_RATE,default=0" validate:"gte=0"`
	EventBurst int `env:"EVENT_BURST,default=20" validate:"gte=1"`

	// Empty RedisURL runs a single node on the in-memory bus.
	RedisURL           string        `env:"REDIS_URL" validate:"omitempty,url"`
	RedisChannelPrefix string        `env:"REDIS_CHANNEL_PREFIX,default=roomcast:"`
	RedisDialTimeout   time.Duration `env:"REDIS_DIAL_TIMEOUT,default=5s" validate:"gte=0"`
	RedisReadTimeout   time.Duration `env:"REDIS_READ_TIMEOUT,default=3s" validate:"gte=0"`
	RedisWriteTimeout  time.Duration `env:"REDIS_WRITE_TIMEOUT,default=3s" validate:"gte=0"`
	RedisPoolSize      int           `env:"REDIS_POOL_SIZE,default=10" validate:"gte=0"`
	RedisMinIdleConns  int           `env:"REDIS_MIN_IDLE,default=2" validate:"gte=0"`
	RedisPingTimeout   time.Duration `env:"REDIS_PING_TIMEOUT,default=2s" validate:"gte=0"`
}

// Load reads a .env file when present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
