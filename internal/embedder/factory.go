package embedder

import (
	"fmt"
	"os"
	"strings"
)

// EnvProvider selects the embedding provider explicitly
const EnvProvider = "CODELOGIC_EMBEDDING_PROVIDER"

// Config holds embedder configuration
type Config struct {
	Provider  string // jina, openai, local; empty auto-detects
	APIKey    string
	Endpoint  string // Optional endpoint override for HTTP providers
	CacheSize int
}

// NewFromEnv creates an embedder based on environment variables
// Priority:
// 1. CODELOGIC_EMBEDDING_PROVIDER (jina, openai, local)
// 2. Check for API keys: JINA_API_KEY, OPENAI_API_KEY
// 3. Default to local if no API keys found
func NewFromEnv() (Embedder, error) {
	return New(Config{Provider: os.Getenv(EnvProvider), CacheSize: DefaultCacheSize})
}

// New creates an embedder with explicit configuration. An empty provider is
// resolved the same way NewFromEnv does.
func New(cfg Config) (Embedder, error) {
	cache := NewCache(cfg.CacheSize)

	var opts []ProviderOption
	if cfg.Endpoint != "" {
		opts = append(opts, WithEndpoint(cfg.Endpoint))
	}

	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = DetectProvider()
	}

	switch provider {
	case ProviderJina:
		return NewJinaProvider(cfg.APIKey, cache, opts...)
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cache, opts...)
	case ProviderLocal:
		return NewLocalProvider(cache)
	default:
		return nil, fmt.Errorf("%w: unknown provider %s", ErrUnsupportedModel, cfg.Provider)
	}
}

// DetectProvider returns the provider that would be used based on current environment
func DetectProvider() string {
	provider := os.Getenv(EnvProvider)
	if provider != "" {
		return strings.ToLower(provider)
	}

	if os.Getenv(EnvJinaAPIKey) != "" {
		return ProviderJina
	}
	if os.Getenv(EnvOpenAIAPIKey) != "" {
		return ProviderOpenAI
	}

	return ProviderLocal
}
