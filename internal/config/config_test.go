package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/codelogic-mcp/internal/searcher"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvDBPath, EnvProvider, EnvLogLevel, EnvPoolSize} {
		t.Setenv(key, "")
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, ".", cfg.Workspace.Root)
	assert.Equal(t, searcher.DefaultWeights(), cfg.Search)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, 0, cfg.Pool.Size)
	assert.Equal(t, searcher.DefaultCacheSize, cfg.Responses.CacheSize)
	assert.Equal(t, filepath.Join(".", ".codelogic", "symbols.db"), cfg.DBPath())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLKeepsUnsetDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
workspace:
  root: /srv/shop
embeddings:
  provider: local
  cache_size: 50
search:
  centrality_multiplier: 0.1
  test_path_penalty: 0
responses:
  cache_size: 25
logging:
  format: json
pool:
  size: 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	defaults := searcher.DefaultWeights()
	assert.Equal(t, 0.1, cfg.Search.CentralityMultiplier)
	assert.Equal(t, 0.0, cfg.Search.TestPathPenalty, "explicit zero is honoured")
	assert.Equal(t, defaults.KeywordWeight, cfg.Search.KeywordWeight)
	assert.Equal(t, defaults.MaxGraphCandidates, cfg.Search.MaxGraphCandidates)

	assert.Equal(t, "local", cfg.Embeddings.Provider)
	assert.Equal(t, 50, cfg.EmbedderConfig().CacheSize)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 2, cfg.Pool.Size)
	assert.Equal(t, 25, cfg.Responses.CacheSize)
	assert.Equal(t, filepath.Join("/srv/shop", ".codelogic", "symbols.db"), cfg.DBPath())
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
workspace:
  db_path: /tmp/from-file.db
logging:
  level: info
`)
	t.Setenv(EnvDBPath, "/tmp/from-env.db")
	t.Setenv(EnvProvider, "openai")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvPoolSize, "3")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/from-env.db", cfg.DBPath())
	assert.Equal(t, "openai", cfg.Embeddings.Provider)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 3, cfg.Pool.Size)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	t.Run("explicit path missing", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "search: [unclosed"))
		assert.Error(t, err)
	})

	t.Run("weight out of range", func(t *testing.T) {
		_, err := Load(writeConfig(t, "search:\n  prior_weight: 1.5\n"))
		assert.ErrorIs(t, err, searcher.ErrInvalidWeights)
	})

	t.Run("zero over-fetch factor", func(t *testing.T) {
		_, err := Load(writeConfig(t, "search:\n  over_fetch_factor: 0\n"))
		assert.ErrorIs(t, err, searcher.ErrInvalidWeights)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := Load(writeConfig(t, "embeddings:\n  provider: ollama\n"))
		assert.Error(t, err)
	})

	t.Run("zero response cache size", func(t *testing.T) {
		_, err := Load(writeConfig(t, "responses:\n  cache_size: 0\n"))
		assert.Error(t, err)
	})

	t.Run("bad pool size env", func(t *testing.T) {
		t.Setenv(EnvPoolSize, "many")
		_, err := Load(writeConfig(t, "pool:\n  size: 1\n"))
		assert.Error(t, err)
	})
}

func TestLoad_DefaultPathMissingIsFine(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, NewConfig().Search, cfg.Search)
}

func TestWriteYAML_RoundTrip(t *testing.T) {
	clearEnv(t)
	cfg := NewConfig()
	cfg.Search.OverFetchFactor = 5
	cfg.Workspace.DBPath = "/data/symbols.db"

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestDBPath_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := NewConfig()
	cfg.Workspace.DBPath = "~/idx/symbols.db"
	assert.Equal(t, filepath.Join(home, "idx", "symbols.db"), cfg.DBPath())
}
