// Package config provides runtime configuration values for the service and
// the sync client.
package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds configuration knobs for the HTTP server, the store client
// and logging.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
	RemoteBaseURL   string
	RemoteTimeout   time.Duration
	ApplyBuffer     int
	LogLevel        string
	LogFormat       string
}

var defaults = map[string]any{
	"http_addr":         ":8080",
	"shutdown_timeout":  15,
	"remote_base_url":   "http://localhost:8080",
	"remote_timeout_ms": 5000,
	"apply_buffer":      64,
	"log_level":         "info",
	"log_format":        "json",
}

// Load collects configuration from .env files, an optional
// .product-reconciler.yaml in the working directory and the environment,
// with defaults. Environment variables win over files.
func Load() Config {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.SetConfigName(".product-reconciler")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	return Config{
		HTTPAddr:        v.GetString("http_addr"),
		ShutdownTimeout: time.Duration(positive(v, "shutdown_timeout")) * time.Second,
		RemoteBaseURL:   strings.TrimRight(v.GetString("remote_base_url"), "/"),
		RemoteTimeout:   time.Duration(positive(v, "remote_timeout_ms")) * time.Millisecond,
		ApplyBuffer:     positive(v, "apply_buffer"),
		LogLevel:        v.GetString("log_level"),
		LogFormat:       v.GetString("log_format"),
	}
}

// positive reads an int key, falling back to its default when the value is
// unparseable or not positive.
func positive(v *viper.Viper, key string) int {
	if n := v.GetInt(key); n > 0 {
		return n
	}
	return defaults[key].(int)
}
