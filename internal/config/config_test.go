package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/qrstudio/internal/config"
)

// Tests in this file mutate the environment and therefore do not run in parallel.

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "qrstudio.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 512, cfg.CanvasSize)
	assert.Equal(t, 5*time.Second, cfg.RenderTimeout.Duration)
	assert.Equal(t, int64(2<<20), cfg.MaxLogoBytes)
	assert.Equal(t, "yeqown", cfg.Encoder)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Storage)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	path := writeFile(t, `
port: "9000"
canvas_size: 1024
render_timeout: 2s
encoder: skip2
delivery: file
storage: s3
s3:
  bucket: codes
  region: eu-central-1
`)
	t.Setenv("QRS_CANVAS_SIZE", "768")
	t.Setenv("QRS_RENDER_TIMEOUT", "750ms")
	t.Setenv("QRS_S3_PREFIX", "qr")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr())
	assert.Equal(t, 768, cfg.CanvasSize)
	assert.Equal(t, 750*time.Millisecond, cfg.RenderTimeout.Duration)
	assert.Equal(t, "skip2", cfg.Encoder)
	assert.Equal(t, "codes", cfg.S3.Bucket)
	assert.Equal(t, "qr", cfg.S3.Prefix)
}

func TestLoadHonorsPlainPort(t *testing.T) {
	t.Setenv("PORT", "3000")
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.Addr())

	t.Setenv("QRS_PORT", "4000")
	cfg, err = config.Load("")
	require.NoError(t, err)
	assert.Equal(t, ":4000", cfg.Addr())
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := writeFile(t, "render_timeout: soon\n")
	_, err := config.Load(path)
	assert.Error(t, err)

	t.Setenv("QRS_CANVAS_SIZE", "0")
	_, err = config.Load("")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	cfg := config.Defaults()
	require.NoError(t, cfg.Validate())

	cfg.Storage = "s3"
	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidConfig)

	cfg = config.Defaults()
	cfg.Delivery = "dataurl"
	cfg.Storage = "nowhere"
	assert.NoError(t, cfg.Validate(), "storage is unused for data urls")

	cfg = config.Defaults()
	cfg.Encoder = "zxing"
	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidConfig)
}
