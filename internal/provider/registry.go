package provider

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/rmedina/placepix/internal/config"
	"github.com/rmedina/placepix/internal/model"
)

// Resolver resolves provider names to adapters. Consumers accept this
// interface so tests can substitute scripted providers.
type Resolver interface {
	ForName(name string) (Provider, error)
	Default() Provider
}

// Registry resolves provider names to adapters. The provider set is closed:
// all three adapters are constructed up front, and a fourth provider means
// one new adapter type plus one entry here.
type Registry struct {
	providers map[model.ProviderName]Provider
}

// NewRegistry wires all adapters from the configured credentials. Adapters
// with a missing key are still registered; they return ErrMissingCredential
// on use, so the operator gets a configuration message instead of a silent gap.
func NewRegistry(cfg config.ProvidersConfig, logger *zap.Logger) *Registry {
	return &Registry{
		providers: map[model.ProviderName]Provider{
			model.ProviderPixabay:  NewPixabay(cfg.PixabayKey, logger),
			model.ProviderUnsplash: NewUnsplash(cfg.UnsplashKey, logger),
			model.ProviderPexels:   NewPexels(cfg.PexelsKey, logger),
		},
	}
}

// ForName returns the adapter for a provider name.
func (r *Registry) ForName(name string) (Provider, error) {
	p, ok := r.providers[model.ProviderName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return p, nil
}

// Default returns the adapter used when the operator hasn't picked one.
func (r *Registry) Default() Provider {
	return r.providers[model.DefaultProvider]
}
