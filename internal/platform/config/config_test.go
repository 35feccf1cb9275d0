package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Empty(t, cfg.DBDSN)
	assert.False(t, cfg.ReleaseHabitatOnRetire)
	assert.True(t, cfg.MigrateOnStart)
	assert.Equal(t, 5*time.Second, cfg.AuditTimeout)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 10, cfg.DBMaxOpenConns)
	assert.Equal(t, "animal-sanctuary", cfg.AppName)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"PORT":                      "9090",
		"DB_DSN":                    " postgres://localhost/sanctuary ",
		"RELEASE_HABITAT_ON_RETIRE": "true",
		"AUDIT_TIMEOUT":             "250ms",
		"DB_MAX_OPEN_CONNS":         "25",
		"DB_MIGRATE":                "false",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, "postgres://localhost/sanctuary", cfg.DBDSN)
	assert.True(t, cfg.ReleaseHabitatOnRetire)
	assert.False(t, cfg.MigrateOnStart)
	assert.Equal(t, 250*time.Millisecond, cfg.AuditTimeout)
	assert.Equal(t, 25, cfg.DBMaxOpenConns)
}

func TestFromEnv_RejectsMalformedValues(t *testing.T) {
	for key, val := range map[string]string{
		"RELEASE_HABITAT_ON_RETIRE": "maybe",
		"AUDIT_TIMEOUT":             "-1s",
		"DB_MAX_OPEN_CONNS":         "zero",
	} {
		_, err := FromEnv(envMap(map[string]string{key: val}))
		assert.Error(t, err, key)
	}
}

func TestFromEnv_RemoteAuthNeedsAPIKey(t *testing.T) {
	_, err := FromEnv(envMap(map[string]string{"AUTH_VERIFY_URL": "https://id.sanctuary.org/v1/tokens/verify"}))
	assert.Error(t, err)

	cfg, err := FromEnv(envMap(map[string]string{
		"AUTH_VERIFY_URL": "https://id.sanctuary.org/v1/tokens/verify",
		"AUTH_API_KEY":    "k",
	}))
	require.NoError(t, err)
	assert.Equal(t, "k", cfg.AuthAPIKey)
}
