package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8081",
			BaseURL:        "https://prism.example.edu",
			AllowedOrigins: []string{"https://prism.example.edu"},
		},
		Database: DatabaseConfig{URL: "postgres://localhost/prism"},
		Redis:    RedisConfig{Addr: "localhost:6379"},
		Auth: AuthConfig{
			JWTSecret:              "secret",
			AccessTokenTTLMinutes:  30,
			RefreshTokenTTLMinutes: 7 * 24 * 60,
			OTPTTLMinutes:          10,
		},
		RateLimit: RateLimitConfig{WindowSeconds: 60, MaxRequests: 10},
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected bool
	}{
		{
			name: "development environment",
			config: &Config{
				Server: ServerConfig{AppEnv: "development"},
			},
			expected: true,
		},
		{
			name: "debug gin mode",
			config: &Config{
				Server: ServerConfig{GinMode: "debug"},
			},
			expected: true,
		},
		{
			name: "production environment",
			config: &Config{
				Server: ServerConfig{AppEnv: "production"},
			},
			expected: false,
		},
		{
			name: "release mode",
			config: &Config{
				Server: ServerConfig{GinMode: "release", AppEnv: "production"},
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.config.IsDevelopment()
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected bool
	}{
		{
			name: "production environment",
			config: &Config{
				Server: ServerConfig{AppEnv: "production"},
			},
			expected: true,
		},
		{
			name: "development environment",
			config: &Config{
				Server: ServerConfig{AppEnv: "development"},
			},
			expected: false,
		},
		{
			name: "staging environment",
			config: &Config{
				Server: ServerConfig{AppEnv: "staging"},
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.config.IsProduction()
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:        "valid config",
			mutate:      func(c *Config) {},
			expectError: false,
		},
		{
			name:        "missing database URL",
			mutate:      func(c *Config) { c.Database.URL = "" },
			expectError: true,
			errorMsg:    "DATABASE_URL is required",
		},
		{
			name:        "missing redis addr",
			mutate:      func(c *Config) { c.Redis.Addr = "" },
			expectError: true,
			errorMsg:    "REDIS_ADDR is required",
		},
		{
			name:        "missing JWT secret",
			mutate:      func(c *Config) { c.Auth.JWTSecret = "" },
			expectError: true,
			errorMsg:    "JWT_SECRET is required",
		},
		{
			name:        "zero OTP TTL",
			mutate:      func(c *Config) { c.Auth.OTPTTLMinutes = 0 },
			expectError: true,
			errorMsg:    "OTP_TTL_MINUTES must be positive",
		},
		{
			name:        "zero rate limit window",
			mutate:      func(c *Config) { c.RateLimit.WindowSeconds = 0 },
			expectError: true,
			errorMsg:    "RATE_LIMIT_WINDOW_SECONDS must be positive",
		},
		{
			name:        "missing allowed origins",
			mutate:      func(c *Config) { c.Server.AllowedOrigins = nil },
			expectError: true,
			errorMsg:    "ALLOWED_CORS_ORIGINS is required",
		},
		{
			name: "profiling enabled without endpoint",
			mutate: func(c *Config) {
				c.Profiling.Enabled = true
				c.Profiling.Endpoint = ""
			},
			expectError: true,
			errorMsg:    "O11Y_PROFILING_ENDPOINT is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_WithDefaults(t *testing.T) {
	originalDir, _ := os.Getwd()
	defer os.Chdir(originalDir)
	os.Chdir(t.TempDir())

	os.Clearenv()
	os.Setenv("DATABASE_URL", "postgres://localhost/prism")
	os.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()

	assert.NoError(t, err)
	assert.NotNil(t, cfg)

	// Check defaults
	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.GinMode)
	assert.Equal(t, "production", cfg.Server.AppEnv)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "HS256", cfg.Auth.JWTAlgorithm)
	assert.Equal(t, 30, cfg.Auth.AccessTokenTTLMinutes)
	assert.Equal(t, 7*24*60, cfg.Auth.RefreshTokenTTLMinutes)
	assert.Equal(t, 10, cfg.Auth.OTPTTLMinutes)
	assert.Equal(t, 60, cfg.RateLimit.WindowSeconds)
	assert.Equal(t, 10, cfg.RateLimit.MaxRequests)
}

func TestLoad_WithEnvironmentVariables(t *testing.T) {
	originalDir, _ := os.Getwd()
	defer os.Chdir(originalDir)
	os.Chdir(t.TempDir())

	os.Clearenv()
	os.Setenv("PORT", "9000")
	os.Setenv("GIN_MODE", "debug")
	os.Setenv("APP_ENV", "development")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("DATABASE_URL", "postgres://db.internal/prism")
	os.Setenv("REDIS_ADDR", "redis.internal:6379")
	os.Setenv("JWT_SECRET", "env-secret")
	os.Setenv("ACCESS_TOKEN_TTL_MINUTES", "15")
	os.Setenv("SMTP_HOST", "smtp.example.edu")
	os.Setenv("SMTP_SENDER", "noreply@example.edu")
	os.Setenv("RATE_LIMIT_MAX_REQUESTS", "5")

	cfg, err := Load()

	assert.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.GinMode)
	assert.Equal(t, "development", cfg.Server.AppEnv)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "postgres://db.internal/prism", cfg.Database.URL)
	assert.Equal(t, "redis.internal:6379", cfg.Redis.Addr)
	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 15, cfg.Auth.AccessTokenTTLMinutes)
	assert.Equal(t, "smtp.example.edu", cfg.SMTP.Host)
	assert.Equal(t, "noreply@example.edu", cfg.SMTP.Sender)
	assert.Equal(t, 5, cfg.RateLimit.MaxRequests)
}

func TestLoad_ValidationFailure(t *testing.T) {
	originalDir, _ := os.Getwd()
	defer os.Chdir(originalDir)
	os.Chdir(t.TempDir())

	// Missing DATABASE_URL and JWT_SECRET
	os.Clearenv()

	cfg, err := Load()

	assert.Error(t, err)
	assert.Nil(t, cfg)
}
