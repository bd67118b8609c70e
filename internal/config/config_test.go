package config_test

import (
	"testing"

	"github.com/coursechat/coursechat/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != config.DefaultPort {
		t.Errorf("port = %d, want %d", cfg.Port, config.DefaultPort)
	}
	if cfg.MaxToolRounds != config.DefaultMaxToolRounds {
		t.Errorf("max tool rounds = %d, want %d", cfg.MaxToolRounds, config.DefaultMaxToolRounds)
	}
	if !cfg.ElasticsearchVerifyCerts {
		t.Error("cert verification should default to on")
	}
	if cfg.ChunksIndex != config.DefaultChunksIndex || cfg.CatalogIndex != config.DefaultCatalogIndex {
		t.Errorf("indices = %q/%q", cfg.ChunksIndex, cfg.CatalogIndex)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("COURSECHAT_PORT", "9100")
	t.Setenv("COURSECHAT_MAX_TOOL_ROUNDS", "3")
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	t.Setenv("ELASTICSEARCH_HOST", "es.internal")
	t.Setenv("ELASTICSEARCH_VERIFY_CERTS", "false")
	t.Setenv("ELASTICSEARCH_MAX_RETRIES", "7")
	t.Setenv("COURSECHAT_CHUNKS_INDEX", "chunks_v2")
	t.Setenv("COURSECHAT_CATALOG_INDEX", "catalog_v2")
	t.Setenv("COURSECHAT_MAX_SEARCH_RESULTS", "10")
	t.Setenv("COURSECHAT_MAX_HISTORY", "4")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9100 {
		t.Errorf("port = %d", cfg.Port)
	}
	if cfg.MaxToolRounds != 3 {
		t.Errorf("max tool rounds = %d", cfg.MaxToolRounds)
	}
	if cfg.AnthropicAPIKey != "test-key" {
		t.Errorf("api key = %q", cfg.AnthropicAPIKey)
	}
	if cfg.ElasticsearchHost != "es.internal" {
		t.Errorf("es host = %q", cfg.ElasticsearchHost)
	}
	if cfg.ElasticsearchVerifyCerts {
		t.Error("cert verification should be disabled by the override")
	}
	if cfg.ElasticsearchMaxRetries != 7 {
		t.Errorf("es max retries = %d", cfg.ElasticsearchMaxRetries)
	}
	if cfg.ChunksIndex != "chunks_v2" || cfg.CatalogIndex != "catalog_v2" {
		t.Errorf("indices = %q/%q", cfg.ChunksIndex, cfg.CatalogIndex)
	}
	if cfg.MaxSearchResults != 10 {
		t.Errorf("max search results = %d", cfg.MaxSearchResults)
	}
	if cfg.MaxHistory != 4 {
		t.Errorf("max history = %d", cfg.MaxHistory)
	}
}

func TestLoadAPIKeysEnableAuth(t *testing.T) {
	t.Setenv("COURSECHAT_API_KEYS", "k1,k2")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.EnableAuth {
		t.Error("supplying API keys should enable auth")
	}
	if len(cfg.APIKeys) != 2 {
		t.Errorf("api keys = %v", cfg.APIKeys)
	}
}

func TestLoadInvalidNumericIgnored(t *testing.T) {
	t.Setenv("COURSECHAT_PORT", "not-a-number")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != config.DefaultPort {
		t.Errorf("port = %d, want the default on an unparsable override", cfg.Port)
	}
}
