package signing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"complitracker/internal/config"
	"complitracker/internal/domain"
	"complitracker/internal/port"
	"complitracker/internal/signing"
	_ "complitracker/internal/signing/adobesign"
	_ "complitracker/internal/signing/docusign"
)

func TestNewRegistry_BuildsEnabledProviders(t *testing.T) {
	registry, err := signing.NewRegistry(&config.SigningConfig{
		DocuSign:  config.ProviderConfig{Enabled: true, BaseURL: "https://docusign.test"},
		AdobeSign: config.ProviderConfig{Enabled: false},
	})
	assert.NoError(t, err)

	_, err = registry.Get(domain.ProviderDocuSign)
	assert.NoError(t, err)

	_, err = registry.Get(domain.ProviderAdobeSign)
	assert.ErrorIs(t, err, domain.ErrUnknownProvider)
}

func TestRegistry_GetUnknownProvider(t *testing.T) {
	registry := signing.NewRegistryFromClients(map[domain.SignatureProvider]port.ProviderClient{})

	_, err := registry.Get(domain.SignatureProvider("hellosign"))
	assert.ErrorIs(t, err, domain.ErrUnknownProvider)
}
