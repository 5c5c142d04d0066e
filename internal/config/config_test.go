package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vigil-labs/vigil/internal/config"
)

const baseConfig = `
analysis_timeout = "2m"
shutdown_timeout = "30s"
version = "0.1.0"

[server]
host = "0.0.0.0"
port = 8080
read_timeout = "1m"
write_timeout = "15m"
shutdown_timeout = "30s"

[database]
host = "localhost"
port = 5432
name = "vigil"
user = "vigil"
password = "vigil"
ssl_mode = "disable"
max_open_conns = 25
max_idle_conns = 5
conn_max_lifetime = "15m"
conn_timeout = "5s"

[storage]
container_name = "documents"
connection_string = "DefaultEndpointsProtocol=http;AccountName=vigilstore;AccountKey=key;BlobEndpoint=http://127.0.0.1:10000/vigilstore;"

[inference]
api_key = "test-key"
model = "gpt-5"
timeout = "3m"

[api]
base_path = "/api"

[api.cors]
enabled = false

[api.pagination]
default_page_size = 25
max_page_size = 50
`

const overlayConfig = `
[server]
port = 9090

[database]
host = "prodhost"
`

// minimalConfig provides the minimum fields required for validation to
// pass (db name, db user, storage connection string, inference api key).
const minimalConfig = `
[database]
name = "vigil"
user = "vigil"

[storage]
connection_string = "conn"

[inference]
api_key = "test-key"
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("db host: got %s, want localhost", cfg.Database.Host)
	}
	if cfg.Storage.ContainerName != "documents" {
		t.Errorf("storage container: got %s, want documents", cfg.Storage.ContainerName)
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("api base_path: got %s, want /api", cfg.API.BasePath)
	}
	if cfg.API.Pagination.DefaultPageSize != 25 {
		t.Errorf("pagination default_page_size: got %d, want 25", cfg.API.Pagination.DefaultPageSize)
	}
	if cfg.API.Pagination.MaxPageSize != 50 {
		t.Errorf("pagination max_page_size: got %d, want 50", cfg.API.Pagination.MaxPageSize)
	}
	if cfg.AnalysisTimeoutDuration() != 2*time.Minute {
		t.Errorf("analysis timeout: got %v, want 2m", cfg.AnalysisTimeoutDuration())
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	chdir(t, dir)

	t.Setenv("VIGIL_ENV", "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090 (from overlay)", cfg.Server.Port)
	}
	if cfg.Database.Host != "prodhost" {
		t.Errorf("db host: got %s, want prodhost (from overlay)", cfg.Database.Host)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("db port: got %d, want 5432 (from base)", cfg.Database.Port)
	}
}

func TestLoadEnvVarOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	t.Setenv("VIGIL_VERSION", "2.0.0")
	t.Setenv("VIGIL_SERVER_PORT", "3000")
	t.Setenv("VIGIL_ANALYSIS_TIMEOUT", "10m")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Version != "2.0.0" {
		t.Errorf("version: got %s, want 2.0.0", cfg.Version)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("server port: got %d, want 3000", cfg.Server.Port)
	}
	if cfg.AnalysisTimeoutDuration() != 10*time.Minute {
		t.Errorf("analysis timeout: got %v, want 10m", cfg.AnalysisTimeoutDuration())
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	t.Setenv("VIGIL_DB_NAME", "testdb")
	t.Setenv("VIGIL_DB_USER", "testuser")
	t.Setenv("VIGIL_STORAGE_CONNECTION_STRING", "conn")
	t.Setenv("VIGIL_INFERENCE_API_KEY", "test-key")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load without config.toml failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port default: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "testdb" {
		t.Errorf("db name: got %s, want testdb", cfg.Database.Name)
	}
	if cfg.AnalysisTimeout != "5m" {
		t.Errorf("analysis timeout default: got %s, want 5m", cfg.AnalysisTimeout)
	}
	if cfg.Inference.Model != "gpt-5" {
		t.Errorf("inference model default: got %s, want gpt-5", cfg.Inference.Model)
	}
}

func TestLoadMinimalConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", minimalConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("minimal config load failed: %v", err)
	}

	if cfg.Storage.ContainerName != "documents" {
		t.Errorf("storage container default: got %s, want documents", cfg.Storage.ContainerName)
	}
	if cfg.Search.Enabled() {
		t.Error("search should be disabled without credentials")
	}
}

func TestLoadInvalidAnalysisTimeout(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", strings.Replace(minimalConfig, "[database]", "analysis_timeout = \"never\"\n\n[database]", 1))
	chdir(t, dir)

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for invalid analysis_timeout")
	}
}

func TestLoadPartialSearchCredentials(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", minimalConfig+"\n[search]\napi_key = \"key-only\"\n")
	chdir(t, dir)

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for api_key without engine_id")
	}
}
