package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Port          string        `mapstructure:"API_PORT"`
	MongoURI      string        `mapstructure:"MONGO_URI"`
	MongoDatabase string        `mapstructure:"MONGO_DATABASE"`
	StoreDriver   string        `mapstructure:"STORE_DRIVER"`
	JWTSecret     string        `mapstructure:"JWT_SECRET"`
	TokenTTL      time.Duration `mapstructure:"TOKEN_TTL"`
	AdminEmail    string        `mapstructure:"ADMIN_EMAIL"`
	AdminPassword string        `mapstructure:"ADMIN_PASSWORD"`
	CORSOrigins   []string      `mapstructure:"CORS_ORIGINS"`
	LogLevel      string        `mapstructure:"LOG_LEVEL"`
	LogFormat     string        `mapstructure:"LOG_FORMAT"`

	RazorpayKeyID     string `mapstructure:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret string `mapstructure:"RAZORPAY_KEY_SECRET"`
	Currency          string `mapstructure:"CURRENCY"`

	TextbeltKey string `mapstructure:"TEXTBELT_API_KEY"`

	// SlotTimezone is the IANA zone used to derive slot dates. Empty means local time.
	SlotTimezone string `mapstructure:"SLOT_TIMEZONE"`
}

var keys = []string{
	"API_PORT", "MONGO_URI", "MONGO_DATABASE", "STORE_DRIVER", "JWT_SECRET", "TOKEN_TTL",
	"ADMIN_EMAIL", "ADMIN_PASSWORD", "CORS_ORIGINS", "LOG_LEVEL", "LOG_FORMAT",
	"RAZORPAY_KEY_ID", "RAZORPAY_KEY_SECRET", "CURRENCY", "TEXTBELT_API_KEY", "SLOT_TIMEZONE",
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, relying on environment variables.")
	}
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()

	v.SetDefault("API_PORT", "8080")
	v.SetDefault("MONGO_DATABASE", "docbook")
	v.SetDefault("STORE_DRIVER", DriverMongo)
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:5174")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("CURRENCY", "INR")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = trimList(cfg.CORSOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required when STORE_DRIVER=mongo")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves SlotTimezone.
func (c *Config) Location() (*time.Location, error) {
	if c.SlotTimezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.SlotTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid SLOT_TIMEZONE: %w", err)
	}
	return loc, nil
}

func trimList(in []string) []string {
	var out []string
	for _, p := range in {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
