package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
auth:
  session_secret: s3cret
database:
  host: db
  user: cms
  password: pw
  dbname: articles
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "migrations", cfg.Database.MigrationsPath)
	assert.False(t, cfg.RabbitMQ.Enabled)
	assert.Equal(t, "article_cms", cfg.RabbitMQ.Exchange)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 10, cfg.Listing.DefaultPageSize)
	assert.Equal(t, 100, cfg.Listing.MaxPageSize)
	assert.False(t, cfg.Audit.Enabled)
	assert.Equal(t, 10*time.Minute, cfg.Audit.Interval)
	assert.Equal(t, time.Minute, cfg.Audit.Timeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "host=db port=5432 user=cms password=pw dbname=articles sslmode=disable", cfg.Database.DSN())
	assert.Equal(t, "postgres://cms:pw@db:5432/articles?sslmode=disable", cfg.Database.URL())
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("CMS_SESSION_SECRET", "from-env")
	t.Setenv("CMS_DB_PORT", "6543")

	path := writeConfig(t, `
auth:
  session_secret: ${CMS_SESSION_SECRET}
database:
  port: ${CMS_DB_PORT}
http:
  addr: ":9090"
  read_timeout: 5s
  allowed_origins: ["http://localhost:5173"]
rabbitmq:
  enabled: true
listing:
  default_page_size: 25
  max_page_size: 50
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Auth.SessionSecret)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.HTTP.AllowedOrigins)
	assert.True(t, cfg.RabbitMQ.Enabled)
	assert.Equal(t, 25, cfg.Listing.DefaultPageSize)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_RequiresSessionSecret(t *testing.T) {
	path := writeConfig(t, "log_level: info\n")

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "session_secret")
}

func TestLoad_RejectsInconsistentPageSizes(t *testing.T) {
	path := writeConfig(t, `
auth:
  session_secret: x
listing:
  default_page_size: 200
  max_page_size: 20
`)

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_page_size")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}
