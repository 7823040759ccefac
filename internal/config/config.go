// Package config loads codelogic configuration from YAML with environment
// variable overrides.
//
// Precedence, lowest to highest:
//  1. Built-in defaults (NewConfig)
//  2. The YAML file (~/.codelogic/config.yaml, or the path given to Load)
//  3. Environment variables (CODELOGIC_*)
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/codelogic-mcp/internal/embedder"
	"github.com/dshills/codelogic-mcp/internal/logging"
	"github.com/dshills/codelogic-mcp/internal/searcher"
)

// Environment overrides
const (
	EnvDBPath   = "CODELOGIC_DB_PATH"
	EnvProvider = embedder.EnvProvider
	EnvLogLevel = "CODELOGIC_LOG_LEVEL"
	EnvPoolSize = "CODELOGIC_POOL_SIZE"
)

// defaultDBFile is joined onto the workspace root when db_path is unset
var defaultDBFile = filepath.Join(".codelogic", "symbols.db")

// Config is the complete codelogic configuration.
type Config struct {
	Workspace  WorkspaceConfig  `yaml:"workspace"`
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	Search     searcher.Weights `yaml:"search"`
	Responses  ResponsesConfig  `yaml:"responses"`
	Logging    logging.Config   `yaml:"logging"`
	Pool       PoolConfig       `yaml:"pool"`
}

// ResponsesConfig sizes the find_business_logic response cache.
type ResponsesConfig struct {
	CacheSize int `yaml:"cache_size"`
}

// WorkspaceConfig locates the symbol store.
type WorkspaceConfig struct {
	Root   string `yaml:"root"`
	DBPath string `yaml:"db_path"` // Defaults to <root>/.codelogic/symbols.db
}

// EmbeddingsConfig selects the embedding provider.
type EmbeddingsConfig struct {
	Provider  string `yaml:"provider"` // local, jina, openai; empty auto-detects
	Endpoint  string `yaml:"endpoint"`
	CacheSize int    `yaml:"cache_size"`
}

// PoolConfig sizes the blocking worker pool. Zero means NumCPU.
type PoolConfig struct {
	Size int `yaml:"size"`
}

// NewConfig returns the built-in defaults.
func NewConfig() *Config {
	return &Config{
		Workspace:  WorkspaceConfig{Root: "."},
		Embeddings: EmbeddingsConfig{CacheSize: embedder.DefaultCacheSize},
		Search:     searcher.DefaultWeights(),
		Responses:  ResponsesConfig{CacheSize: searcher.DefaultCacheSize},
		Logging:    logging.DefaultConfig(),
	}
}

// DefaultPath returns ~/.codelogic/config.yaml, or "" when the home
// directory cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".codelogic", "config.yaml")
}

// Load reads configuration from path. An empty path reads DefaultPath and
// tolerates its absence; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if path != "" {
		if err := cfg.loadYAML(path); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadYAML decodes path over the current values, so keys absent from the
// file keep their defaults and explicit zeros are honoured.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies CODELOGIC_* environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(EnvDBPath); v != "" {
		c.Workspace.DBPath = v
	}
	if v := os.Getenv(EnvProvider); v != "" {
		c.Embeddings.Provider = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvPoolSize); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s must be an integer, got %q", EnvPoolSize, v)
		}
		c.Pool.Size = n
	}
	return nil
}

// Validate checks the final configuration.
func (c *Config) Validate() error {
	if err := c.Search.Validate(); err != nil {
		return err
	}

	if err := c.Logging.Validate(); err != nil {
		return err
	}

	if c.Embeddings.Provider != "" {
		switch strings.ToLower(c.Embeddings.Provider) {
		case embedder.ProviderLocal, embedder.ProviderJina, embedder.ProviderOpenAI:
		default:
			return fmt.Errorf("embeddings.provider must be 'local', 'jina', 'openai', or empty (auto-detect), got %s", c.Embeddings.Provider)
		}
	}

	if c.Embeddings.CacheSize < 0 {
		return fmt.Errorf("embeddings.cache_size must be non-negative, got %d", c.Embeddings.CacheSize)
	}

	if c.Responses.CacheSize < 1 {
		return fmt.Errorf("responses.cache_size must be positive, got %d", c.Responses.CacheSize)
	}

	if c.Pool.Size < 0 {
		return fmt.Errorf("pool.size must be non-negative, got %d", c.Pool.Size)
	}

	return nil
}

// DBPath resolves the store location, expanding a leading ~.
func (c *Config) DBPath() string {
	path := c.Workspace.DBPath
	if path == "" {
		root := c.Workspace.Root
		if root == "" {
			root = "."
		}
		path = filepath.Join(root, defaultDBFile)
	}
	return expandHome(path)
}

// EmbedderConfig maps the embeddings section onto the embedder factory.
func (c *Config) EmbedderConfig() embedder.Config {
	return embedder.Config{
		Provider:  c.Embeddings.Provider,
		Endpoint:  c.Embeddings.Endpoint,
		CacheSize: c.Embeddings.CacheSize,
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
