package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for k, v := range kv {
		t.Setenv(envPrefix+k, v)
	}
}

func TestFromEnvDefaults(t *testing.T) {
	setEnv(t, map[string]string{"SECRET_KEY": "s3cret"})

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, Info, cfg.LogLevel)
	assert.Equal(t, DefaultPublicPaths, cfg.PublicPaths)
	assert.False(t, cfg.AllowAdminSignup)
	assert.True(t, cfg.Database.IsSQLite())
}

func TestFromEnvOverrides(t *testing.T) {
	setEnv(t, map[string]string{
		"SECRET_KEY":                  "k",
		"PORT":                        "9090",
		"ACCESS_TOKEN_EXPIRE_MINUTES": "5",
		"BCRYPT_COST":                 "4",
		"PUBLIC_PATHS":                "/auth/login, /health ,",
		"DB_TYPE":                     "postgres",
		"DATABASE_URL":                "postgres://u:p@db:5432/cinerate",
		"LOG_LEVEL":                   "warn",
	})

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.Equal(t, []string{"/auth/login", "/health"}, cfg.PublicPaths)
	assert.True(t, cfg.Database.IsPostgreSQL())
	assert.Equal(t, "postgres://u:p@db:5432/cinerate", cfg.Database.GetDSN())
	assert.Equal(t, Warn, cfg.LogLevel)
}

func TestFromEnvValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing secret outside debug", env: map[string]string{}},
		{name: "bad port", env: map[string]string{"SECRET_KEY": "k", "PORT": "70000"}},
		{name: "non numeric ttl", env: map[string]string{"SECRET_KEY": "k", "ACCESS_TOKEN_EXPIRE_MINUTES": "soon"}},
		{name: "zero ttl", env: map[string]string{"SECRET_KEY": "k", "ACCESS_TOKEN_EXPIRE_MINUTES": "0"}},
		{name: "bcrypt cost too low", env: map[string]string{"SECRET_KEY": "k", "BCRYPT_COST": "2"}},
		{name: "unknown log level", env: map[string]string{"SECRET_KEY": "k", "LOG_LEVEL": "loud"}},
		{name: "cert without key", env: map[string]string{"SECRET_KEY": "k", "CERT_FILE": "/tmp/c.pem"}},
		{name: "unsupported db", env: map[string]string{"SECRET_KEY": "k", "DB_TYPE": "oracle"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, tt.env)
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestDebugAllowsMissingSecret(t *testing.T) {
	setEnv(t, map[string]string{"DEBUG": "true"})

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, Debug, cfg.LogLevel)
	assert.Empty(t, cfg.SecretKey)
	assert.Equal(t, "db/cinerate.db", cfg.Database.SQLite.Path)
}

func TestDatabaseConfigDSN(t *testing.T) {
	c := GetDefaultDatabaseConfig(false)
	assert.Contains(t, c.GetDSN(), "_foreign_keys=1")

	c.Type = DatabaseTypePostgreSQL
	assert.Equal(t,
		"host=localhost user=cinerate password= dbname=cinerate port=5432 sslmode=disable TimeZone=UTC",
		c.GetDSN())
	assert.NoError(t, c.ValidateConfig())

	c.Postgres.Port = 0
	assert.Error(t, c.ValidateConfig())
}

func TestFromEnvPostgresFields(t *testing.T) {
	setEnv(t, map[string]string{
		"SECRET_KEY":  "k",
		"DB_TYPE":     "postgres",
		"DB_HOST":     "db.internal",
		"DB_PORT":     "6432",
		"DB_NAME":     "reviews",
		"DB_USER":     "app",
		"DB_PASSWORD": "pw",
		"DB_SSLMODE":  "require",
	})

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t,
		"host=db.internal user=app password=pw dbname=reviews port=6432 sslmode=require TimeZone=UTC",
		cfg.Database.GetDSN())

	t.Setenv(envPrefix+"DB_PORT", "five")
	_, err = FromEnv()
	assert.Error(t, err)

	t.Setenv(envPrefix+"DB_PORT", "0")
	_, err = FromEnv()
	assert.Error(t, err)
}
