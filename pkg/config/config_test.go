package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "minio", cfg.Storage.Provider)
	require.Equal(t, "uploads", cfg.Storage.Container)
	require.Equal(t, "verbatim", cfg.Storage.NamePolicy)
	require.Equal(t, "fail_fast", cfg.Upload.FailurePolicy)
	require.False(t, cfg.Kafka.Enabled)
	require.Equal(t, 30*time.Second, cfg.HTTP.ShutdownTimeout)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STORAGE_PROVIDER", "s3")
	t.Setenv("STORAGE_CONTAINER", "incoming")
	t.Setenv("UPLOAD_FAILURE_POLICY", "continue")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "s3", cfg.Storage.Provider)
	require.Equal(t, "incoming", cfg.Storage.Container)
	require.Equal(t, "continue", cfg.Upload.FailurePolicy)
	require.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
}

func TestLoadRejectsInvalid(t *testing.T) {
	for key, value := range map[string]string{
		"STORAGE_PROVIDER":      "ftp",
		"UPLOAD_FAILURE_POLICY": "retry",
		"UPLOAD_MAX_SIZE_BYTES": "0",
		"HTTP_SHUTDOWN_TIMEOUT": "0s",
	} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestMemoryProviderOnlyOutsideProduction(t *testing.T) {
	t.Setenv("STORAGE_PROVIDER", "memory")

	for _, env := range []string{"development", "test"} {
		t.Run(env, func(t *testing.T) {
			t.Setenv("APP_ENV", env)
			cfg, err := Load()
			require.NoError(t, err)
			require.Equal(t, "memory", cfg.Storage.Provider)
		})
	}

	for _, env := range []string{"production", "staging"} {
		t.Run(env, func(t *testing.T) {
			t.Setenv("APP_ENV", env)
			_, err := Load()
			require.ErrorContains(t, err, "STORAGE_PROVIDER=memory")
		})
	}
}
