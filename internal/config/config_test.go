package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const minimalConfig = `
app:
  name: qrcode-platform
database:
  driver: sqlite
  path: ./test.db
tracking:
  invalid_qr_url: https://app.example.com/error/invalid-qr
  inactive_qr_url: https://app.example.com/error/inactive-qr
`

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "http://localhost:8080", cfg.Server.PublicBaseURL)
	assert.Equal(t, 4, cfg.Tracking.Workers)
	assert.Equal(t, 1024, cfg.Tracking.QueueSize)
	assert.Equal(t, "CF-IPCountry", cfg.Tracking.CountryHeader)
	assert.Equal(t, 300, cfg.Cache.TTLSeconds)
	assert.Equal(t, "qrcode-platform", cfg.Auth.Issuer)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverridesSecrets(t *testing.T) {
	t.Setenv(EnvAuthSecret, "from-env")
	t.Setenv(EnvDBPassword, "db-secret")

	cfg, err := Load(writeConfig(t, minimalConfig+`
auth:
  enabled: true
  secret: from-file
`))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.Secret)
	assert.Equal(t, "db-secret", cfg.Database.Password)
}

func TestLoad_TrimsPublicBaseURL(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig+`
server:
  public_base_url: https://qr.example.com/
`))
	require.NoError(t, err)
	assert.Equal(t, "https://qr.example.com", cfg.Server.PublicBaseURL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "未知驱动",
			content: `
database:
  driver: oracle
tracking:
  invalid_qr_url: https://a/invalid
  inactive_qr_url: https://a/inactive
`,
		},
		{
			name: "缺少落地页",
			content: `
database:
  driver: sqlite
  path: ./x.db
`,
		},
		{
			name: "启用认证但没有密钥",
			content: minimalConfig + `
auth:
  enabled: true
`,
		},
		{
			name: "mysql 缺少主机",
			content: `
database:
  driver: mysql
tracking:
  invalid_qr_url: https://a/invalid
  inactive_qr_url: https://a/inactive
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
