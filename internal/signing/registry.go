package signing

import (
	"fmt"

	"complitracker/internal/config"
	"complitracker/internal/domain"
	"complitracker/internal/port"
)

// Factory is a function that creates a ProviderClient from a provider config.
type Factory func(cfg *config.ProviderConfig) (port.ProviderClient, error)

// registry of provider factories, populated by init() in each provider package
// or explicitly via Register.
var factories = map[domain.SignatureProvider]Factory{}

// Register registers a provider client factory by provider identifier.
func Register(provider domain.SignatureProvider, factory Factory) {
	factories[provider] = factory
}

// Registry holds the provider clients resolved once at startup. Webhook and
// lifecycle code selects clients by provider identifier; the set of providers
// stays open for extension via Register.
type Registry struct {
	clients map[domain.SignatureProvider]port.ProviderClient
}

// NewRegistry builds clients for every enabled provider in the config.
func NewRegistry(cfg *config.SigningConfig) (*Registry, error) {
	configs := map[domain.SignatureProvider]*config.ProviderConfig{
		domain.ProviderDocuSign:  &cfg.DocuSign,
		domain.ProviderAdobeSign: &cfg.AdobeSign,
	}

	clients := make(map[domain.SignatureProvider]port.ProviderClient)
	for provider, pc := range configs {
		if !pc.Enabled {
			continue
		}
		factory, ok := factories[provider]
		if !ok {
			return nil, fmt.Errorf("no client factory registered for provider %q", provider)
		}
		client, err := factory(pc)
		if err != nil {
			return nil, fmt.Errorf("building %s client: %w", provider, err)
		}
		clients[provider] = client
	}
	return &Registry{clients: clients}, nil
}

// NewRegistryFromClients builds a registry from pre-built clients (for testing).
func NewRegistryFromClients(clients map[domain.SignatureProvider]port.ProviderClient) *Registry {
	return &Registry{clients: clients}
}

// Get returns the client for a provider, or domain.ErrUnknownProvider when the
// provider is not registered or not enabled.
func (r *Registry) Get(provider domain.SignatureProvider) (port.ProviderClient, error) {
	client, ok := r.clients[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, provider)
	}
	return client, nil
}
