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

func TestLoad_ExpandsEnvAndAppliesDefaults(t *testing.T) {
	t.Setenv("PIXELBROS_TEST_SECRET", "s3cr3t")
	path := writeConfig(t, `
s3:
  endpoint: minio.local:9000
  bucket: media
  access_key: key
  secret_key: ${PIXELBROS_TEST_SECRET}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "s3cr3t", cfg.S3.SecretKey)
	assert.Equal(t, filepath.Join("src", "assets"), cfg.Assets.Root)
	assert.Equal(t, []string{"Portfolio", "Inicio"}, cfg.Assets.Folders)
	assert.Equal(t, "pixelbros", cfg.Assets.PublicIDPrefix)
	assert.Equal(t, 5, cfg.Upload.Concurrency)
	assert.Equal(t, 5, cfg.Upload.BurstLimit)
	assert.Equal(t, 20, cfg.Upload.PartSizeMB)
	assert.Equal(t, 85, cfg.ImageProcessing.Quality)
	assert.Equal(t, DefaultFileRules(), cfg.FileRules)
	assert.Equal(t, ":8080", cfg.Server.Addr)

	timeout, err := cfg.Upload.FileTimeout()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, timeout)
}

func TestLoad_ReadsDotEnvNextToConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PIXELBROS_DOTENV_BUCKET=from-dotenv\n"), 0o644))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("s3:\n  endpoint: e\n  bucket: ${PIXELBROS_DOTENV_BUCKET}\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("PIXELBROS_DOTENV_BUCKET") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.S3.Bucket)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "missing bucket", body: "s3:\n  endpoint: e\n", wantErr: "s3.bucket is required"},
		{name: "missing endpoint", body: "s3:\n  bucket: b\n", wantErr: "s3.endpoint is required"},
		{name: "bad timeout", body: "s3: {endpoint: e, bucket: b}\nupload: {timeout: soon}\n", wantErr: "upload.timeout"},
		{name: "extra file without id", body: "s3: {endpoint: e, bucket: b}\nextra_files: [{path: logo.png}]\n", wantErr: "extra_files"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadLocal_DoesNotRequireS3(t *testing.T) {
	cfg, err := LoadLocal(writeConfig(t, "assets:\n  root: public/media\n"))
	require.NoError(t, err)
	assert.Equal(t, "public/media", cfg.Assets.Root)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestS3Config_PublicURLBase(t *testing.T) {
	assert.Equal(t, "https://cdn.example", S3Config{PublicBaseURL: "https://cdn.example"}.PublicURLBase())
	assert.Equal(t, "https://s3.local/media", S3Config{Endpoint: "s3.local", Bucket: "media", UseSSL: true}.PublicURLBase())
	assert.Equal(t, "http://s3.local/media", S3Config{Endpoint: "s3.local", Bucket: "media"}.PublicURLBase())
}

func TestFindConfigPath(t *testing.T) {
	assert.True(t, filepath.IsAbs(FindConfigPath("custom.yaml")))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFileName), []byte("{}"), 0o644))
	t.Chdir(dir)
	assert.Equal(t, filepath.Join(dir, DefaultFileName), FindConfigPath(""))
}
