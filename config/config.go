// Package config loads the process-wide configuration of the cinerate server.
// Values come from the environment (optionally seeded from a .env file) and are
// read exactly once at startup; the resulting Config is treated as immutable.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

//go:embed version
var version string

//go:embed name
var name string

const envPrefix = "CINERATE_"

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

// DefaultPublicPaths are reachable without a bearer token.
var DefaultPublicPaths = []string{
	"/auth/login",
	"/auth/register",
	"/openapi.json",
	"/docs",
	"/redoc",
}

// Config is assembled once by Load and passed by reference to every component.
type Config struct {
	Debug     bool
	LogLevel  LogLevel
	LogFolder string

	Listen    string
	Port      int
	CertFile  string
	KeyFile   string
	WebDomain string

	SecretKey        string
	AccessTokenTTL   time.Duration
	BcryptCost       int
	PublicPaths      []string
	AllowAdminSignup bool

	AdminUsername string
	AdminEmail    string
	AdminPassword string

	ActivityRetentionDays int
	ActivityCleanupCron   string

	Database *DatabaseConfig
}

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

// Load reads .env (if present) and then the environment. Variables already set
// in the environment win over .env entries.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment without touching .env.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Debug:     getBool("DEBUG", false),
		LogFolder: getString("LOG_FOLDER", ""),
		Listen:    getString("LISTEN", ""),
		CertFile:  getString("CERT_FILE", ""),
		KeyFile:   getString("KEY_FILE", ""),
		WebDomain: getString("WEB_DOMAIN", ""),
		SecretKey: getString("SECRET_KEY", ""),

		AllowAdminSignup: getBool("ALLOW_ADMIN_SIGNUP", false),
		AdminUsername:    getString("ADMIN_USERNAME", "admin"),
		AdminEmail:       getString("ADMIN_EMAIL", ""),
		AdminPassword:    getString("ADMIN_PASSWORD", ""),

		ActivityCleanupCron: getString("ACTIVITY_CLEANUP_CRON", "@daily"),
		PublicPaths:         getList("PUBLIC_PATHS", DefaultPublicPaths),
	}

	cfg.LogLevel = LogLevel(getString("LOG_LEVEL", string(Info)))
	if cfg.Debug {
		cfg.LogLevel = Debug
	}

	var err error
	if cfg.Port, err = getInt("PORT", 8000); err != nil {
		return nil, err
	}
	minutes, err := getInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)
	if err != nil {
		return nil, err
	}
	cfg.AccessTokenTTL = time.Duration(minutes) * time.Minute
	if cfg.BcryptCost, err = getInt("BCRYPT_COST", 12); err != nil {
		return nil, err
	}
	if cfg.ActivityRetentionDays, err = getInt("ACTIVITY_RETENTION_DAYS", 90); err != nil {
		return nil, err
	}

	cfg.Database = GetDefaultDatabaseConfig(cfg.Debug)
	if t := getString("DB_TYPE", ""); t != "" {
		cfg.Database.Type = DatabaseType(t)
	}
	if p := getString("DB_PATH", ""); p != "" {
		cfg.Database.SQLite.Path = p
	}
	pg := &cfg.Database.Postgres
	pg.URL = getString("DATABASE_URL", "")
	pg.Host = getString("DB_HOST", pg.Host)
	pg.Database = getString("DB_NAME", pg.Database)
	pg.Username = getString("DB_USER", pg.Username)
	pg.Password = getString("DB_PASSWORD", pg.Password)
	pg.SSLMode = getString("DB_SSLMODE", pg.SSLMode)
	pg.TimeZone = getString("DB_TIMEZONE", pg.TimeZone)
	if pg.Port, err = getInt("DB_PORT", pg.Port); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the invariants the rest of the server relies on.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case Debug, Info, Notice, Warn, Error:
	default:
		return fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}
	if c.AccessTokenTTL <= 0 {
		return errors.New("config: ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return errors.New("config: BCRYPT_COST must be between 4 and 31")
	}
	if c.SecretKey == "" && !c.Debug {
		return errors.New("config: SECRET_KEY must be set")
	}
	if len(c.PublicPaths) == 0 {
		return errors.New("config: PUBLIC_PATHS must not be empty")
	}
	if (c.CertFile == "") != (c.KeyFile == "") {
		return errors.New("config: CERT_FILE and KEY_FILE must be set together")
	}
	if c.Database == nil {
		return errors.New("config: database configuration missing")
	}
	return c.Database.ValidateConfig()
}

func getString(key, def string) string {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		return strings.TrimSpace(v)
	}
	return def
}

func getBool(key string, def bool) bool {
	v := getString(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getInt(key string, def int) (int, error) {
	v := getString(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s%s is not a number: %q", envPrefix, key, v)
	}
	return n, nil
}

func getList(key string, def []string) []string {
	v := getString(key, "")
	if v == "" {
		return append([]string(nil), def...)
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
