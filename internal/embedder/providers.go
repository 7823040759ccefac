package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"sort"
	"time"
)

// Provider configuration
const (
	ProviderJina   = "jina"
	ProviderOpenAI = "openai"
	ProviderLocal  = "local"

	// Environment variables holding API keys
	EnvJinaAPIKey   = "JINA_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"

	// Default models
	DefaultJinaModel   = "jina-embeddings-v3"
	DefaultOpenAIModel = "text-embedding-3-small"
	DefaultLocalModel  = "local-hash-384"

	// Default endpoints
	JinaEndpoint   = "https://api.jina.ai/v1/embeddings"
	OpenAIEndpoint = "https://api.openai.com/v1/embeddings"

	// Dimensions
	JinaDimension   = 1024
	OpenAIDimension = 1536
	LocalDimension  = 384

	// Batch limits
	DefaultBatchSize = 50
	MaxBatchSize     = 100

	// Retry configuration
	MaxRetries        = 3
	InitialBackoffMs  = 100
	MaxBackoffMs      = 5000
	BackoffMultiplier = 2.0
)

// ProviderOption customizes an HTTP embedding provider
type ProviderOption func(*apiClient)

// WithEndpoint overrides the embeddings endpoint URL
func WithEndpoint(url string) ProviderOption {
	return func(c *apiClient) {
		c.endpoint = url
	}
}

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(client *http.Client) ProviderOption {
	return func(c *apiClient) {
		c.httpClient = client
	}
}

// WithRetryConfig replaces the default backoff policy
func WithRetryConfig(cfg RetryConfig) ProviderOption {
	return func(c *apiClient) {
		c.retry = cfg
	}
}

// WithModel overrides the default model name
func WithModel(model string) ProviderOption {
	return func(c *apiClient) {
		c.model = model
	}
}

// apiClient implements Embedder for OpenAI-compatible /v1/embeddings endpoints.
// Jina and OpenAI share the request and response format.
type apiClient struct {
	provider   string
	endpoint   string
	apiKey     string
	model      string
	dimension  int
	httpClient *http.Client
	cache      *Cache
	retry      RetryConfig
}

func newAPIClient(provider, envKey, apiKey, model, endpoint string, dimension int, cache *Cache, opts []ProviderOption) (*apiClient, error) {
	if apiKey == "" {
		apiKey = os.Getenv(envKey)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s not set", ErrNoProviderEnabled, envKey)
	}

	c := &apiClient{
		provider:  provider,
		endpoint:  endpoint,
		apiKey:    apiKey,
		model:     model,
		dimension: dimension,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache: cache,
		retry: DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *apiClient) GenerateEmbedding(ctx context.Context, req EmbeddingRequest) (*Embedding, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	// Use batch API for consistency; it consults the cache
	resp, err := c.GenerateBatch(ctx, BatchEmbeddingRequest{
		Texts: []string{req.Text},
		Model: req.Model,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("%w: no embeddings returned", ErrProviderFailed)
	}

	return resp.Embeddings[0], nil
}

func (c *apiClient) GenerateBatch(ctx context.Context, req BatchEmbeddingRequest) (*BatchEmbeddingResponse, error) {
	if err := ValidateBatchRequest(req); err != nil {
		return nil, err
	}

	if len(req.Texts) > MaxBatchSize {
		return nil, fmt.Errorf("%w: max %d texts allowed", ErrBatchTooLarge, MaxBatchSize)
	}

	model := req.Model
	if model == "" {
		model = c.model
	}

	// Serve what we can from cache, call the API for the rest
	embeddings := make([]*Embedding, len(req.Texts))
	missing := make([]int, 0, len(req.Texts))
	for i, text := range req.Texts {
		if c.cache != nil {
			if emb, ok := c.cache.Get(CacheKey(model, text)); ok {
				embeddings[i] = emb
				continue
			}
		}
		missing = append(missing, i)
	}

	if len(missing) > 0 {
		texts := make([]string, len(missing))
		for i, idx := range missing {
			texts[i] = req.Texts[idx]
		}

		fetched, err := retryWithBackoff(ctx, c.retry, func() ([]*Embedding, error) {
			return c.callAPI(ctx, texts, model)
		})
		if err != nil {
			return nil, fmt.Errorf("%w after %d retries: %v", ErrProviderFailed, c.retry.MaxRetries, err)
		}
		if len(fetched) != len(texts) {
			return nil, fmt.Errorf("%w: expected %d embeddings, got %d", ErrProviderFailed, len(texts), len(fetched))
		}

		for i, emb := range fetched {
			idx := missing[i]
			emb.Hash = CacheKey(model, req.Texts[idx])
			embeddings[idx] = emb
			if c.cache != nil {
				c.cache.Set(emb.Hash, emb)
			}
		}
	}

	return &BatchEmbeddingResponse{
		Embeddings: embeddings,
		Provider:   c.provider,
		Model:      model,
	}, nil
}

func (c *apiClient) callAPI(ctx context.Context, texts []string, model string) ([]*Embedding, error) {
	reqBody := map[string]interface{}{
		"input": texts,
		"model": model,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("api error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		} `json:"data"`
		Model string `json:"model"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	// The API may reorder items; index is authoritative
	sort.SliceStable(apiResp.Data, func(i, j int) bool {
		return apiResp.Data[i].Index < apiResp.Data[j].Index
	})

	respModel := apiResp.Model
	if respModel == "" {
		respModel = model
	}

	embeddings := make([]*Embedding, len(apiResp.Data))
	for i, data := range apiResp.Data {
		embeddings[i] = &Embedding{
			Vector:    data.Embedding,
			Dimension: len(data.Embedding),
			Provider:  c.provider,
			Model:     respModel,
		}
	}

	return embeddings, nil
}

func (c *apiClient) Dimension() int {
	return c.dimension
}

func (c *apiClient) Provider() string {
	return c.provider
}

func (c *apiClient) Model() string {
	return c.model
}

func (c *apiClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// JinaProvider implements Embedder using Jina AI API
type JinaProvider struct {
	*apiClient
}

// NewJinaProvider creates a new Jina AI embedder
func NewJinaProvider(apiKey string, cache *Cache, opts ...ProviderOption) (*JinaProvider, error) {
	c, err := newAPIClient(ProviderJina, EnvJinaAPIKey, apiKey, DefaultJinaModel, JinaEndpoint, JinaDimension, cache, opts)
	if err != nil {
		return nil, err
	}
	return &JinaProvider{apiClient: c}, nil
}

// OpenAIProvider implements Embedder using OpenAI API
type OpenAIProvider struct {
	*apiClient
}

// NewOpenAIProvider creates a new OpenAI embedder
func NewOpenAIProvider(apiKey string, cache *Cache, opts ...ProviderOption) (*OpenAIProvider, error) {
	c, err := newAPIClient(ProviderOpenAI, EnvOpenAIAPIKey, apiKey, DefaultOpenAIModel, OpenAIEndpoint, OpenAIDimension, cache, opts)
	if err != nil {
		return nil, err
	}
	return &OpenAIProvider{apiClient: c}, nil
}

// NormalizeVector normalizes a vector to unit length (for cosine similarity)
func NormalizeVector(v []float32) []float32 {
	var sum float64
	for _, val := range v {
		sum += float64(val) * float64(val)
	}

	if sum == 0 {
		return v
	}

	norm := float32(math.Sqrt(sum))
	result := make([]float32, len(v))
	for i, val := range v {
		result[i] = val / norm
	}

	return result
}
