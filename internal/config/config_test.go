package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DESIGNEXPORT_DOTENV", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Address)
	assert.Equal(t, BackendMemory, cfg.Backend)
	assert.Equal(t, 5*time.Minute, cfg.SignedURLTTL)
	assert.Equal(t, 2, cfg.ProcessingPool)
	assert.Len(t, cfg.SigningSecret, 32)
	assert.EqualValues(t, 50<<20, cfg.MaxSourceBytes)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DESIGNEXPORT_DOTENV", "false")
	t.Setenv("DESIGNEXPORT_ADDRESS", ":9090")
	t.Setenv("DESIGNEXPORT_PUBLIC_BASE_URL", "https://exports.example.com/")
	t.Setenv("DESIGNEXPORT_WORKERS", "-3")
	t.Setenv("DESIGNEXPORT_FETCH_TIMEOUT", "3s")
	t.Setenv("DESIGNEXPORT_SIGNING_SECRET", "topsecret")
	t.Setenv("DESIGNEXPORT_S3_USE_SSL", "true")
	t.Setenv("DESIGNEXPORT_DESIGN_FILES", "df-1=proj-1, df-2=proj-2,broken,=x")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Address)
	assert.Equal(t, "https://exports.example.com", cfg.PublicBaseURL)
	assert.Equal(t, 2, cfg.ProcessingPool)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	assert.Equal(t, []byte("topsecret"), cfg.SigningSecret)
	assert.True(t, cfg.S3UseSSL)
	assert.Equal(t, map[string]string{"df-1": "proj-1", "df-2": "proj-2"}, cfg.DesignFiles)
}

func TestLoadS3BackendRequiresServices(t *testing.T) {
	t.Setenv("DESIGNEXPORT_DOTENV", "false")
	t.Setenv("DESIGNEXPORT_BACKEND", "s3")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DESIGNEXPORT_DATABASE_URL")

	t.Setenv("DESIGNEXPORT_DATABASE_URL", "postgres://localhost/exports")
	t.Setenv("DESIGNEXPORT_S3_ENDPOINT", "localhost:9000")
	_, err = Load()
	assert.NoError(t, err)
}

func TestLoadUnknownBackend(t *testing.T) {
	t.Setenv("DESIGNEXPORT_DOTENV", "false")
	t.Setenv("DESIGNEXPORT_BACKEND", "ftp")
	_, err := Load()
	assert.Error(t, err)
}
