// Package config loads server settings from defaults, an optional .env file,
// the environment and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every server setting.
type Config struct {
	Addr          string        // listen address
	DSN           string        // PostgreSQL DSN
	JWTSecret     string        // HS256 signing key
	TokenTTL      time.Duration // session token lifetime
	CORSOrigins   []string      // allowed origins, "*" for any
	DefaultTenant string        // tenant for users created without one
	GinMode       string        // debug, release or test
	Dev           bool          // development logger

	LoginMaxFails int           // failed logins before lockout, 0 disables throttling
	LoginWindow   time.Duration // window in which failures are counted
	LoginBlockFor time.Duration // lockout duration
}

// Load resolves the configuration. args excludes the program name.
func Load(args []string) (*Config, error) {
	loadEnvFile(getEnv("ENV_FILE", ".env"))

	cfg := &Config{
		Addr:          getEnv("ADDR", ":8080"),
		DSN:           getEnv("DATABASE_DSN", ""),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		TokenTTL:      getEnvAsDuration("TOKEN_TTL", 24*time.Hour),
		DefaultTenant: getEnv("DEFAULT_TENANT", "default"),
		GinMode:       getEnv("GIN_MODE", "release"),
		LoginMaxFails: getEnvAsInt("LOGIN_MAX_FAILS", 5),
		LoginWindow:   getEnvAsDuration("LOGIN_WINDOW", 15*time.Minute),
		LoginBlockFor: getEnvAsDuration("LOGIN_BLOCK_FOR", 15*time.Minute),
	}
	origins := getEnv("CORS_ALLOWED_ORIGINS", "*")

	fs := flag.NewFlagSet("cargodesk", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	fs.StringVar(&cfg.DSN, "dsn", cfg.DSN, "PostgreSQL DSN")
	fs.StringVar(&cfg.JWTSecret, "jwt-key", cfg.JWTSecret, "HS256 signing key (required)")
	fs.DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "session token TTL")
	fs.StringVar(&origins, "cors-origins", origins, "comma separated CORS origins")
	fs.BoolVar(&cfg.Dev, "dev", false, "development logging")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.CORSOrigins = splitList(origins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("missing jwt signing key (JWT_SECRET / --jwt-key)"))
	}
	if c.DSN == "" {
		errs = append(errs, errors.New("missing database DSN (DATABASE_DSN / --dsn)"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("token ttl must be positive, got %s", c.TokenTTL))
	}
	if c.LoginMaxFails < 0 {
		errs = append(errs, fmt.Errorf("LOGIN_MAX_FAILS must not be negative, got %d", c.LoginMaxFails))
	}
	return errors.Join(errs...)
}

// loadEnvFile reads name from the working directory or its parent. A missing
// file is not an error and real environment variables always win.
func loadEnvFile(name string) {
	if err := godotenv.Load(name); err == nil || filepath.IsAbs(name) {
		return
	}
	cwd, err := os.Getwd()
	if err != nil {
		return
	}
	parent := filepath.Dir(cwd)
	if parent == cwd {
		return
	}
	_ = godotenv.Load(filepath.Join(parent, name))
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvAsInt(key string, def int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return def
	}
	return v
}

func getEnvAsDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return def
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
