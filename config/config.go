// Application configuration: config/config.yaml, then .env, then RAILWAY_* environment variables
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "RAILWAY"

// Event feed drivers
const (
	EventDriverNone     = "none"
	EventDriverRedis    = "redis"
	EventDriverRabbitMQ = "rabbitmq"
	EventDriverKafka    = "kafka"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Events EventsConfig `mapstructure:"events"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Worker WorkerConfig `mapstructure:"worker"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	AppVersion     string        `mapstructure:"app_version"`
	Host           string        `mapstructure:"host"`
	Port           string        `mapstructure:"port"`
	Timeout        time.Duration `mapstructure:"timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Env            string        `mapstructure:"environment"`
	Mode           string        `mapstructure:"mode"`
	AllowOrigins   []string      `mapstructure:"allow_origins"`
}

// EventsConfig selects where reservation events are published
type EventsConfig struct {
	Driver           string         `mapstructure:"driver"`
	PublishRetries   int            `mapstructure:"publish_retries"`
	PublishBaseDelay time.Duration  `mapstructure:"publish_base_delay"`
	RabbitMQ         RabbitMQConfig `mapstructure:"rabbitmq"`
	Kafka            KafkaConfig    `mapstructure:"kafka"`
}

type RabbitMQConfig struct {
	URL         string        `mapstructure:"url"`
	QueueName   string        `mapstructure:"queue_name"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

type KafkaConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	EventKey string `mapstructure:"event_key"`

	// connection pool
	MaxRetries   int           `mapstructure:"max_retries"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolTimeout  time.Duration `mapstructure:"pool_timeout"`
}

type WorkerConfig struct {
	AuditInterval time.Duration `mapstructure:"audit_interval"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or text
}

func (c *Config) Address() string {
	return c.Server.Host + ":" + c.Server.Port
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoadConfig reads config.yaml from the given directories (./config when
// none are given). A missing file is not an error: defaults and environment
// variables still apply.
func LoadConfig(paths ...string) (*viper.Viper, error) {
	// .env is optional, only used for local development
	_ = godotenv.Load()

	viperInstance := viper.New()
	setDefaults(viperInstance)

	if len(paths) == 0 {
		paths = []string{"./config"}
	}
	for _, p := range paths {
		viperInstance.AddConfigPath(p)
	}
	viperInstance.SetConfigName("config")
	viperInstance.SetConfigType("yaml")

	viperInstance.SetEnvPrefix(envPrefix)
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperInstance.AutomaticEnv()

	if err := viperInstance.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return viperInstance, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config

	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if c.Server.Port == "" {
		return nil, errors.New("server.port must be set")
	}
	if c.Worker.AuditInterval < 0 {
		return nil, errors.New("worker.audit_interval must not be negative")
	}

	c.Events.Driver = strings.ToLower(strings.TrimSpace(c.Events.Driver))
	switch c.Events.Driver {
	case "":
		c.Events.Driver = EventDriverNone
	case EventDriverNone, EventDriverRedis:
	case EventDriverRabbitMQ:
		if c.Events.RabbitMQ.URL == "" {
			return nil, errors.New("events.rabbitmq.url must be set for the rabbitmq driver")
		}
	case EventDriverKafka:
		if len(c.Events.Kafka.Brokers) == 0 {
			return nil, errors.New("events.kafka.brokers must be set for the kafka driver")
		}
	default:
		return nil, fmt.Errorf("unknown events.driver %q", c.Events.Driver)
	}
	if c.Events.PublishRetries < 0 {
		return nil, errors.New("events.publish_retries must not be negative")
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.app_version", "1.0.0")
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.request_timeout", 10*time.Second)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.allow_origins", []string{"*"})

	// Event feed defaults
	v.SetDefault("events.driver", EventDriverNone)
	v.SetDefault("events.publish_retries", 3)
	v.SetDefault("events.publish_base_delay", 100*time.Millisecond)
	v.SetDefault("events.rabbitmq.url", "")
	v.SetDefault("events.rabbitmq.queue_name", "railway_reservation.events")
	v.SetDefault("events.rabbitmq.dial_timeout", 5*time.Second)
	v.SetDefault("events.kafka.brokers", []string{})
	v.SetDefault("events.kafka.topic", "railway-reservation-events")
	v.SetDefault("events.kafka.write_timeout", 10*time.Second)

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.event_key", "railway_reservation:events")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)
	v.SetDefault("redis.pool_timeout", 4*time.Second)

	// Worker defaults
	v.SetDefault("worker.audit_interval", time.Minute)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
