package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("SHUTDOWN_TIMEOUT", "")
	t.Setenv("REMOTE_BASE_URL", "")
	t.Setenv("REMOTE_TIMEOUT_MS", "")
	t.Setenv("APPLY_BUFFER", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")
	c := Load()
	if c.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr default")
	}
	if c.ShutdownTimeout != 15*time.Second {
		t.Fatalf("ShutdownTimeout default")
	}
	if c.RemoteBaseURL != "http://localhost:8080" {
		t.Fatalf("RemoteBaseURL default")
	}
	if c.RemoteTimeout != 5*time.Second {
		t.Fatalf("RemoteTimeout default")
	}
	if c.ApplyBuffer != 64 {
		t.Fatalf("ApplyBuffer default")
	}
	if c.LogLevel != "info" || c.LogFormat != "json" {
		t.Fatalf("logging defaults")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("SHUTDOWN_TIMEOUT", "2")
	t.Setenv("REMOTE_BASE_URL", "http://store.local/")
	t.Setenv("REMOTE_TIMEOUT_MS", "250")
	t.Setenv("APPLY_BUFFER", "8")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "console")
	c := Load()
	if c.HTTPAddr != ":9090" {
		t.Fatalf("HTTPAddr env")
	}
	if c.ShutdownTimeout != 2*time.Second {
		t.Fatalf("ShutdownTimeout env")
	}
	if c.RemoteBaseURL != "http://store.local" {
		t.Fatalf("RemoteBaseURL env, trailing slash trimmed: %q", c.RemoteBaseURL)
	}
	if c.RemoteTimeout != 250*time.Millisecond {
		t.Fatalf("RemoteTimeout env")
	}
	if c.ApplyBuffer != 8 {
		t.Fatalf("ApplyBuffer env")
	}
	if c.LogLevel != "debug" || c.LogFormat != "console" {
		t.Fatalf("logging env")
	}
}

func TestLoadInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")
	t.Setenv("APPLY_BUFFER", "-3")
	c := Load()
	if c.ShutdownTimeout != 15*time.Second {
		t.Fatalf("ShutdownTimeout fallback, got %v", c.ShutdownTimeout)
	}
	if c.ApplyBuffer != 64 {
		t.Fatalf("ApplyBuffer fallback, got %d", c.ApplyBuffer)
	}
}
