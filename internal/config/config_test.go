package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points every lookup directory at a fresh temp dir
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ModeLocal, cfg.Backend.Mode)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, filepath.Join(dir, "data", "orgtrack", "orgtrack.db"), cfg.Storage.Path)
	assert.Equal(t, filepath.Join(dir, "data", "orgtrack", "orgtrack.log"), cfg.Log.Output)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	seed := cfg.Tenant.DefaultOrganization()
	assert.Equal(t, "My Workspace", seed.Name)
	assert.Equal(t, "user@personal.local", seed.ContactEmail)
	assert.Equal(t, "my-workspace", seed.Slug)
}

func TestLoadFromSearchPath(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config", "orgtrack", "orgtrack.toml"), `
[backend]
mode = "graphql"
endpoint = "https://tracker.example.com/graphql"
timeout = "3s"

[backend.headers]
x-client = "orgtrack"

[tenant]
name = "Acme"
`)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ModeGraphQL, cfg.Backend.Mode)
	assert.Equal(t, "https://tracker.example.com/graphql", cfg.Backend.Endpoint)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, map[string]string{"x-client": "orgtrack"}, cfg.Backend.Headers)
	assert.Equal(t, "Acme", cfg.Tenant.Name)
	assert.Equal(t, "my-workspace", cfg.Tenant.Slug)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := isolate(t)
	file := filepath.Join(dir, "custom.toml")
	writeFile(t, file, `
[log]
level = "warn"
output = "stderr"
`)
	t.Setenv("ORGTRACK_LOG_LEVEL", "debug")
	t.Setenv("ORGTRACK_STORAGE_PATH", filepath.Join(dir, "tracker.db"))

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "stderr", cfg.Log.Output)
	assert.Equal(t, filepath.Join(dir, "tracker.db"), cfg.Storage.Path)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"unknown mode", map[string]string{"ORGTRACK_BACKEND_MODE": "carrier-pigeon"}, `config: unknown backend.mode "carrier-pigeon"`},
		{"graphql without endpoint", map[string]string{"ORGTRACK_BACKEND_MODE": "graphql"}, "config: backend.endpoint is required in graphql mode"},
		{"endpoint not http", map[string]string{"ORGTRACK_BACKEND_MODE": "graphql", "ORGTRACK_BACKEND_ENDPOINT": "ftp://x"}, `config: backend.endpoint "ftp://x" is not an http(s) url`},
		{"zero timeout", map[string]string{"ORGTRACK_BACKEND_TIMEOUT": "0s"}, "config: backend.timeout must be positive"},
		{"blank tenant name", map[string]string{"ORGTRACK_TENANT_NAME": "  "}, "config: tenant.name is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.EqualError(t, err, tt.want)
		})
	}
}

func TestExplicitFileMustExist(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "missing.toml"))
	assert.ErrorContains(t, err, "config: read config file")
}
