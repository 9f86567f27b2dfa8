package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, NonceBackendRedis, cfg.Nonce.Backend)
	assert.Equal(t, ConsumerSourceFile, cfg.LTI.ConsumerSource)
	assert.Equal(t, "/lti/launch", cfg.LTI.LaunchPath)
	assert.True(t, cfg.NeedsRedis())
	assert.False(t, cfg.NeedsMySQL())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("NONCE_BACKEND", "mysql")
	t.Setenv("LTI_PUBLIC_BASE_URL", "https://tool.example.edu/")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, NonceBackendMySQL, cfg.Nonce.Backend)
	assert.Equal(t, "https://tool.example.edu", cfg.LTI.PublicBaseURL)
	assert.Equal(t, 2.5, cfg.RateLimit.RPS)
	assert.True(t, cfg.NeedsMySQL())
	assert.False(t, cfg.NeedsRedis())
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"NONCE_BACKEND":       "memcached",
		"LTI_CONSUMER_SOURCE": "ldap",
		"LTI_PUBLIC_BASE_URL": "tool.example.edu",
		"LTI_LAUNCH_PATH":     "launch",
	}

	for env, value := range tests {
		t.Run(env, func(t *testing.T) {
			t.Setenv(env, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
