package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
log_level: -4
server:
  port: "9000"
download:
  dir: /var/media/downloads
  user_agent: workbench-test
services:
  vocal_removal: http://vocal:9093
  subtitle_extraction: http://subtitle:9091
  audio_enhancement: http://enhance:9092
  timeout_seconds: 30
  output_format: flac
storage:
  type: gcs
  bucket: workbench-artifacts
  object_prefix: derived
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, -4, cfg.LogLevel)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "/var/media/downloads", cfg.Download.Dir)
	assert.Equal(t, "workbench-test", cfg.Download.UserAgent)
	assert.Equal(t, "http://vocal:9093", cfg.Services.VocalRemoval)
	assert.Equal(t, "http://subtitle:9091", cfg.Services.SubtitleExtraction)
	assert.Equal(t, "http://enhance:9092", cfg.Services.AudioEnhancement)
	assert.Equal(t, 30*time.Second, cfg.Services.Timeout())
	assert.Equal(t, "flac", cfg.Services.OutputFormat)
	assert.Equal(t, "gcs", cfg.Storage.Type)
	assert.Equal(t, "workbench-artifacts", cfg.Storage.Bucket)
	assert.Equal(t, "derived", cfg.Storage.ObjectPrefix)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "log_level: 0\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "downloads", cfg.Download.Dir)
	assert.Equal(t, "http://localhost:9093", cfg.Services.VocalRemoval)
	assert.Equal(t, "http://localhost:9091", cfg.Services.SubtitleExtraction)
	assert.Equal(t, "http://localhost:9092", cfg.Services.AudioEnhancement)
	assert.Equal(t, 5*time.Minute, cfg.Services.Timeout())
	assert.Equal(t, "wav", cfg.Services.OutputFormat)
	assert.Equal(t, "local", cfg.Storage.Type)
}

func TestLoadEmptyFile(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"comments only", "# port is chosen by the deployment\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.content)

			cfg, err := Load(path)
			require.NoError(t, err)

			assert.Equal(t, "8080", cfg.Server.Port)
			assert.Equal(t, "downloads", cfg.Download.Dir)
			assert.Equal(t, "local", cfg.Storage.Type)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "services: [not: a: map\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "downloads", cfg.Download.Dir)
	assert.Equal(t, "local", cfg.Storage.Type)
}
