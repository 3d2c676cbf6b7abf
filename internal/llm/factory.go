package llm

import (
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultClientCacheSize = 16

// Factory builds clients from configuration and caches them so concurrent
// requests share one transport per backend.
type Factory struct {
	mu    sync.Mutex
	cache *lru.Cache[string, Client]
}

// NewFactory returns a factory with a small client cache.
func NewFactory() *Factory {
	cache, err := lru.New[string, Client](defaultClientCacheSize)
	if err != nil {
		// lru.New only fails on a non-positive size.
		panic(err)
	}
	return &Factory{cache: cache}
}

// GetClient returns the backend selected by config.Provider, building it on
// first use. Provider choice affects transport and credentials only; every
// backend satisfies the same Client contract.
func (f *Factory) GetClient(config Config) (Client, error) {
	provider := strings.ToLower(strings.TrimSpace(config.Provider))
	if provider == "" {
		provider = "gemini"
	}

	key := cacheKey(provider, config)

	f.mu.Lock()
	defer f.mu.Unlock()

	if client, ok := f.cache.Get(key); ok {
		return client, nil
	}

	var (
		client Client
		err    error
	)
	switch provider {
	case "gemini":
		client, err = NewGeminiClient(config)
	case "azure":
		client, err = NewAzureClient(config)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q (want gemini or azure)", config.Provider)
	}
	if err != nil {
		return nil, err
	}

	f.cache.Add(key, client)
	return client, nil
}

func cacheKey(provider string, config Config) string {
	switch provider {
	case "azure":
		return fmt.Sprintf("azure|%s|%s|%s", config.AzureEndpoint, config.AzureDeployment, config.AzureAPIVersion)
	default:
		model := config.GeminiModel
		if model == "" {
			model = defaultGeminiModel
		}
		return "gemini|" + model + "|" + config.GeminiBaseURL
	}
}
