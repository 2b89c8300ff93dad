package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("STORE_DRIVER", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", cfg.Port)
	}
	if cfg.StoreDriver != "sqlite" {
		t.Errorf("Expected store driver 'sqlite', got '%s'", cfg.StoreDriver)
	}
	if cfg.CanvasWidth != 800 || cfg.CanvasHeight != 600 {
		t.Errorf("Unexpected canvas defaults %vx%v", cfg.CanvasWidth, cfg.CanvasHeight)
	}
	if cfg.TicketTTL != 24*time.Hour {
		t.Errorf("Expected ticket ttl 24h, got %v", cfg.TicketTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("PREVIEW_PADDING", "12.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Port)
	}
	if cfg.StoreDriver != "memory" {
		t.Errorf("Expected store driver 'memory', got '%s'", cfg.StoreDriver)
	}
	if cfg.PreviewPadding != 12.5 {
		t.Errorf("Expected padding 12.5, got %v", cfg.PreviewPadding)
	}
}

func TestOrigins(t *testing.T) {
	cfg := &Config{AllowedOrigins: " http://localhost:5173, https://paint.example.com ,,"}

	origins := cfg.Origins()
	if len(origins) != 2 || origins[0] != "http://localhost:5173" || origins[1] != "https://paint.example.com" {
		t.Fatalf("Unexpected origins: %v", origins)
	}

	patterns := cfg.OriginPatterns()
	if patterns[0] != "localhost:5173" || patterns[1] != "paint.example.com" {
		t.Errorf("Unexpected origin patterns: %v", patterns)
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.in}
		if got := cfg.SlogLevel(); got != tt.want {
			t.Errorf("SlogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
