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
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
jwt:
  secret: test-secret
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Minute, cfg.Business.PurchaseConfirmDelay())
	assert.Equal(t, "@every 1m", cfg.Business.PurchaseConfirmSpec)
	assert.Equal(t, int64(1), cfg.Business.SystemAccountID)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL())
	assert.Equal(t, "order-status-notification", cfg.Kafka.Topic.Notification)
}

func TestLoadReadsFileValues(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
mysql:
  host: db
  port: 3307
  user: admin
  password: pw
  database: market
jwt:
  secret: s
business:
  purchase_confirm_delay_minutes: 30
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 30*time.Minute, cfg.Business.PurchaseConfirmDelay())
	assert.Equal(t, "admin:pw@tcp(db:3307)/market?charset=utf8mb4&parseTime=True&loc=Local", cfg.MySQL.DSN())
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, `
jwt:
  secret: from-file
`)
	t.Setenv("SELLERHUB_JWT_SECRET", "from-env")
	t.Setenv("SELLERHUB_SERVER_PORT", "7001")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 7001, cfg.Server.Port)
}

func TestLoadValidation(t *testing.T) {
	_, err := Load(writeConfig(t, "server:\n  port: 1\n"))
	assert.Error(t, err, "missing jwt secret")

	_, err = Load(writeConfig(t, `
jwt:
  secret: s
chat:
  enabled: true
`))
	assert.Error(t, err, "chat enabled without webhook")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
