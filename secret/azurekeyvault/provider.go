package azurekeyvault

import (
	"context"
	"fmt"
	"regexp"

	"github.com/0xalexb/hjarta-config/secret"

	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
)

// latestVersion is the empty version string, which Key Vault treats as the current version.
const latestVersion = ""

var referencePattern = regexp.MustCompile(
	`^https://([a-zA-Z0-9-]+)\.vault\.azure\.net/secrets/([a-zA-Z0-9-]+)(?:/([a-zA-Z0-9]+))?/?$`,
)

// Client captures the subset of the Key Vault secrets client used by the
// provider. *azsecrets.Client satisfies this interface.
type Client interface {
	GetSecret(ctx context.Context, name string, version string, options *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error)
}

// Reference is a parsed Key Vault secret URL.
type Reference struct {
	Vault   string
	Name    string
	Version string
}

// ParseReference splits a secret URL of the form
// https://<vault>.vault.azure.net/secrets/<name>[/<version>].
func ParseReference(value string) (Reference, bool) {
	match := referencePattern.FindStringSubmatch(value)
	if match == nil {
		return Reference{}, false
	}

	return Reference{Vault: match[1], Name: match[2], Version: match[3]}, true
}

// Provider resolves Azure Key Vault secret URLs.
//
// By default the version segment of a URL is parsed but not sent: the
// latest version is always returned. WithVersionPinning changes that.
type Provider struct {
	client     Client
	pinVersion bool
}

// Option configures the provider.
type Option func(*Provider)

// WithVersionPinning forwards the version segment of a reference to Key Vault.
func WithVersionPinning() Option {
	return func(p *Provider) {
		p.pinVersion = true
	}
}

// New constructs a Key Vault provider.
func New(client Client, opts ...Option) (*Provider, error) {
	if client == nil {
		return nil, fmt.Errorf("azurekeyvault: %w", secret.ErrNilClient)
	}

	p := &Provider{client: client}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// IsSecretReference reports whether value is a Key Vault secret URL.
func (p *Provider) IsSecretReference(value string) bool {
	return referencePattern.MatchString(value)
}

// ResolveSecret fetches the secret named in the URL.
func (p *Provider) ResolveSecret(ctx context.Context, ref string) (secret.Value, error) {
	parsed, ok := ParseReference(ref)
	if !ok {
		return secret.Value{}, fmt.Errorf("azurekeyvault: %w: %q", secret.ErrInvalidReference, ref)
	}

	version := latestVersion
	if p.pinVersion {
		version = parsed.Version
	}

	resp, err := p.client.GetSecret(ctx, parsed.Name, version, nil)
	if err != nil {
		return secret.Value{}, fmt.Errorf("azurekeyvault: %w", err)
	}

	if resp.Value == nil || *resp.Value == "" {
		return secret.Value{}, fmt.Errorf("azurekeyvault: secret %q: %w", parsed.Name, secret.ErrNotFound)
	}

	return secret.Text(*resp.Value), nil
}
