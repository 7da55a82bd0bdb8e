package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/almanac/pkg/config"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestSearchConfig_DefaultAboveMax(t *testing.T) {
	cfg := SearchConfig{DefaultLimit: 60, MaxLimit: 50, SlugCacheTTL: time.Minute}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("default above max should fail")
	}
	if !strings.Contains(err.Error(), "exceeds max_limit") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSearchConfig_MaxLimitCeiling(t *testing.T) {
	cfg := SearchConfig{DefaultLimit: 10, MaxLimit: 500, SlugCacheTTL: time.Minute}
	if err := cfg.Validate(); err == nil {
		t.Fatal("max_limit above 50 should fail validation")
	}
	cfg.MaxLimit = 50
	if err := cfg.Validate(); err != nil {
		t.Fatalf("max_limit 50 should validate: %v", err)
	}
}

func TestSearchConfig_ShortTTL(t *testing.T) {
	cfg := SearchConfig{DefaultLimit: 10, MaxLimit: 50, SlugCacheTTL: time.Millisecond}
	if err := cfg.Validate(); err == nil {
		t.Fatal("sub-second ttl should fail validation")
	}
}

func TestPartitionConfig_Workers(t *testing.T) {
	if err := (&PartitionConfig{Workers: 0}).Validate(); err == nil {
		t.Error("zero workers should fail")
	}
	if err := (&PartitionConfig{Workers: 4}).Validate(); err != nil {
		t.Errorf("4 workers should pass: %v", err)
	}
}

func TestFullConfig_SectionValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Store.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch empty store path")
	}
}

func TestLoadYAMLWithEnv(t *testing.T) {
	t.Setenv("ALMANAC_TEST_STORE", "/srv/almanac")
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
app:
  log_level: debug
  http:
    port: 9090
store:
  path: ${ALMANAC_TEST_STORE}
sqlite:
  path: /tmp/almanac.db
search:
  default_limit: 5
  max_limit: 20
  slug_cache_ttl: 90s
partition:
  workers: 2
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Path != "/srv/almanac" || cfg.App.HTTP.Port != 9090 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Search.SlugCacheTTL != 90*time.Second || cfg.Search.MaxLimit != 20 {
		t.Errorf("search = %+v", cfg.Search)
	}
	if cfg.App.LogLevel.String() != "DEBUG" {
		t.Errorf("log level = %s", cfg.App.LogLevel)
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := pkgconfig.LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"), cfg); err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if cfg.Search.DefaultLimit != 10 {
		t.Errorf("defaults not kept: %+v", cfg.Search)
	}
}
