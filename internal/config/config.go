// Package config loads daemon configuration from defaults, an optional YAML
// file and POWERSTRIP_* environment variables, in increasing precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Naresh476n/iot1/internal/engine"
	"github.com/Naresh476n/iot1/internal/relay"
	"github.com/Naresh476n/iot1/internal/sensor"
)

// Config holds all configuration for the daemon.
type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"`
	MQTT    MQTTConfig    `mapstructure:"mqtt"`
	Store   StoreConfig   `mapstructure:"store"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Relays  RelayConfig   `mapstructure:"relays"`
	Sensors SensorConfig  `mapstructure:"sensors"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// MQTTConfig configures the optional broker bridge. An empty broker
// disables it.
type MQTTConfig struct {
	Broker   string `mapstructure:"broker"`
	ClientID string `mapstructure:"client_id"`
}

type StoreConfig struct {
	Backend string `mapstructure:"backend"` // file, redis or memory
	Dir     string `mapstructure:"dir"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type RelayConfig struct {
	Chip string `mapstructure:"chip"`
	Pins []int  `mapstructure:"pins"`
}

type SensorConfig struct {
	Bus       string `mapstructure:"bus"` // empty picks the first I2C bus
	Addresses []int  `mapstructure:"addresses"`
}

type EngineConfig struct {
	Poll time.Duration `mapstructure:"poll"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration. path may be empty, then only defaults and
// environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("POWERSTRIP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")

	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.client_id", "powerstrip")

	v.SetDefault("store.backend", "file")
	v.SetDefault("store.dir", "/var/lib/powerstrip")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "powerstrip:")

	v.SetDefault("relays.chip", "gpiochip0")
	v.SetDefault("relays.pins", relay.DefaultPins)

	v.SetDefault("sensors.bus", "")
	addrs := make([]int, len(sensor.DefaultAddresses))
	for i, a := range sensor.DefaultAddresses {
		addrs[i] = int(a)
	}
	v.SetDefault("sensors.addresses", addrs)

	v.SetDefault("engine.poll", "250ms")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case "file", "redis", "memory":
	default:
		return fmt.Errorf("store.backend: unknown backend %q", c.Store.Backend)
	}
	if len(c.Relays.Pins) != engine.NumChannels {
		return fmt.Errorf("relays.pins: need %d pins, got %d", engine.NumChannels, len(c.Relays.Pins))
	}
	if len(c.Sensors.Addresses) != engine.NumChannels {
		return fmt.Errorf("sensors.addresses: need %d addresses, got %d", engine.NumChannels, len(c.Sensors.Addresses))
	}
	if c.Engine.Poll <= 0 {
		return fmt.Errorf("engine.poll: must be positive, got %v", c.Engine.Poll)
	}
	return nil
}

// SensorAddresses returns the configured I2C addresses as the sensor
// package expects them.
func (c *Config) SensorAddresses() []uint16 {
	out := make([]uint16, len(c.Sensors.Addresses))
	for i, a := range c.Sensors.Addresses {
		out[i] = uint16(a)
	}
	return out
}
