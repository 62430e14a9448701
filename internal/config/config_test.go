package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mindwell-ai/mindwell/internal/source"
)

func validConfig() Config {
	return Config{
		HTTP:      HTTPConfig{Port: 8080},
		Database:  DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Embedding: EmbeddingConfig{APIKey: "test-key"},
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingDatabaseAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_MissingEmbeddingKey(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.APIKey = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing embedding api key")
	}
}

func TestValidate_IncompleteWebHub(t *testing.T) {
	cfg := validConfig()
	cfg.Sources.WebHubs = []source.Hub{{URL: "https://example.org/guides/"}}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for hub without link prefix")
	}
	if !strings.Contains(err.Error(), "link_prefix") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestValidate_DatasetWithoutColumns(t *testing.T) {
	cfg := validConfig()
	cfg.Sources.Datasets = []source.Dataset{{Path: "data/counsel.csv"}}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for dataset without text columns")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()

	if cfg.Index.Collection != "therapy-knowledge" {
		t.Errorf("collection = %q", cfg.Index.Collection)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("dimensions = %d", cfg.Embedding.Dimensions)
	}
	if cfg.Embedding.BatchSize != 100 {
		t.Errorf("batch size = %d", cfg.Embedding.BatchSize)
	}
	if cfg.Chat.Model != "gemini-2.5-flash" {
		t.Errorf("chat model = %q", cfg.Chat.Model)
	}
	if cfg.Chat.TopK != 5 {
		t.Errorf("top_k = %d", cfg.Chat.TopK)
	}
	if cfg.Feedback.Path == "" {
		t.Error("feedback path not defaulted")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("MW_TEST_KEY", "secret-value")

	in := []byte("api_key: ${MW_TEST_KEY}\nmodel: ${MW_TEST_MISSING:-fallback}\n")
	out := string(expandEnvVars(in))

	if !strings.Contains(out, "secret-value") {
		t.Errorf("env var not expanded: %q", out)
	}
	if !strings.Contains(out, "fallback") {
		t.Errorf("default not applied: %q", out)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}

	content := `
http:
  port: 9090
database:
  addrs: ["localhost:6379"]
embedding:
  api_key: ${MW_LOAD_KEY}
sources:
  web_hubs:
    - url: https://example.org/guides/
      link_prefix: /guides/
`
	if err := os.WriteFile(filepath.Join(dir, "config", "testenv.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("MW_LOAD_KEY", "loaded-key")
	t.Chdir(dir)

	cfg, err := Load("testenv")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d", cfg.HTTP.Port)
	}
	if cfg.Embedding.APIKey != "loaded-key" {
		t.Errorf("api key = %q", cfg.Embedding.APIKey)
	}
	if len(cfg.Sources.WebHubs) != 1 || cfg.Sources.WebHubs[0].LinkPrefix != "/guides/" {
		t.Errorf("web hubs = %+v", cfg.Sources.WebHubs)
	}
	if cfg.Index.UpsertBatchSize != 100 {
		t.Errorf("defaults not applied, batch = %d", cfg.Index.UpsertBatchSize)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("GetEnv() = %q, want local", got)
	}

	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("GetEnv() = %q, want prod", got)
	}
}
