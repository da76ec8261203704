// Package factory turns a kind tag or a raw backend client into a secret.Provider.
package factory

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/0xalexb/hjarta-config/secret"
	"github.com/0xalexb/hjarta-config/secret/awsparamstore"
	"github.com/0xalexb/hjarta-config/secret/awssecretsmanager"
	"github.com/0xalexb/hjarta-config/secret/azurekeyvault"
	"github.com/0xalexb/hjarta-config/secret/gcpsecretmanager"
	"github.com/0xalexb/hjarta-config/secret/vault"

	vaultapi "github.com/hashicorp/vault/api"
)

// Kind names a secret backend.
type Kind string

const (
	KindAWSParameterStore Kind = "aws-parameter-store"
	KindAWSSecretsManager Kind = "aws-secrets-manager"
	KindAzureKeyVault     Kind = "azure-key-vault"
	KindGCPSecretManager  Kind = "gcp-secret-manager"
	KindVault             Kind = "vault"
	kindNone              Kind = ""
)

var (
	// ErrUnknownKind is returned for a kind tag that names no backend.
	ErrUnknownKind = errors.New("unknown provider kind")

	// ErrClientMismatch is returned when the client does not fit the requested kind.
	ErrClientMismatch = errors.New("client does not match provider kind")

	// ErrUnsupportedClient is returned when no backend recognizes the client.
	ErrUnsupportedClient = errors.New("unsupported secret backend client")
)

var aliases = map[string]Kind{
	string(KindAWSParameterStore): KindAWSParameterStore,
	"ssm":                         KindAWSParameterStore,
	string(KindAWSSecretsManager): KindAWSSecretsManager,
	"secretsmanager":              KindAWSSecretsManager,
	string(KindAzureKeyVault):     KindAzureKeyVault,
	"keyvault":                    KindAzureKeyVault,
	string(KindGCPSecretManager):  KindGCPSecretManager,
	"secretmanager":               KindGCPSecretManager,
	string(KindVault):             KindVault,
}

// ParseKind maps a tag or one of its aliases to a Kind, ignoring case and
// surrounding whitespace. An empty tag yields the empty Kind.
func ParseKind(tag string) (Kind, error) {
	normalized := strings.ToLower(strings.TrimSpace(tag))
	if normalized == "" {
		return kindNone, nil
	}

	kind, ok := aliases[normalized]
	if !ok {
		return kindNone, fmt.Errorf("%w: %q", ErrUnknownKind, tag)
	}

	return kind, nil
}

// Resolve picks the provider for one load.
//
// An explicit provider is returned unchanged. Otherwise a kind tag together
// with a client builds that backend, and a client alone is matched by the
// methods it implements. With neither tag nor client the result is a nil
// provider and no error, meaning secret resolution is skipped. A nil pointer
// stored in client counts as no client.
func Resolve(explicit secret.Provider, tag string, client any) (secret.Provider, error) {
	if explicit != nil {
		return explicit, nil
	}

	kind, err := ParseKind(tag)
	if err != nil {
		return nil, err
	}

	if isNil(client) {
		if kind != kindNone {
			return nil, fmt.Errorf("provider kind %q: %w", kind, secret.ErrNilClient)
		}

		return nil, nil
	}

	if kind == kindNone {
		return Detect(client)
	}

	return New(kind, client)
}

// New wraps client in the provider for kind.
func New(kind Kind, client any) (secret.Provider, error) {
	if isNil(client) {
		return nil, fmt.Errorf("provider kind %q: %w", kind, secret.ErrNilClient)
	}

	switch kind {
	case KindAWSParameterStore:
		if c, ok := client.(awsparamstore.Client); ok {
			p, err := awsparamstore.New(c)

			return provider(p, err)
		}
	case KindAWSSecretsManager:
		if c, ok := client.(awssecretsmanager.Client); ok {
			p, err := awssecretsmanager.New(c)

			return provider(p, err)
		}
	case KindAzureKeyVault:
		if c, ok := client.(azurekeyvault.Client); ok {
			p, err := azurekeyvault.New(c)

			return provider(p, err)
		}
	case KindGCPSecretManager:
		if c, ok := client.(gcpsecretmanager.Client); ok {
			p, err := gcpsecretmanager.New(c)

			return provider(p, err)
		}
	case KindVault:
		return newVault(client)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	return nil, fmt.Errorf("%w: %s cannot serve %T", ErrClientMismatch, kind, client)
}

// Detect chooses a backend from the methods client implements.
func Detect(client any) (secret.Provider, error) {
	kind, ok := DetectKind(client)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedClient, client)
	}

	return New(kind, client)
}

// DetectKind reports which backend client belongs to.
func DetectKind(client any) (Kind, bool) {
	switch client.(type) {
	case awssecretsmanager.Client:
		return KindAWSSecretsManager, true
	case awsparamstore.Client:
		return KindAWSParameterStore, true
	case azurekeyvault.Client:
		return KindAzureKeyVault, true
	case gcpsecretmanager.Client:
		return KindGCPSecretManager, true
	case *vaultapi.Client, vault.KV:
		return KindVault, true
	default:
		return kindNone, false
	}
}

func newVault(client any) (secret.Provider, error) {
	switch c := client.(type) {
	case *vaultapi.Client:
		p, err := vault.FromClient(c, vault.DefaultMount)

		return provider(p, err)
	case vault.KV:
		p, err := vault.New(c)

		return provider(p, err)
	default:
		return nil, fmt.Errorf("%w: %s cannot serve %T", ErrClientMismatch, KindVault, client)
	}
}

// isNil reports whether client is nil or a nil pointer, map or func held in
// an interface. SDK clients panic on first use when their pointer is nil.
func isNil(client any) bool {
	if client == nil {
		return true
	}

	value := reflect.ValueOf(client)

	switch value.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Interface, reflect.Slice, reflect.Chan:
		return value.IsNil()
	default:
		return false
	}
}

// provider keeps a failed constructor from leaking a typed nil into the interface.
func provider[P secret.Provider](p P, err error) (secret.Provider, error) {
	if err != nil {
		return nil, err
	}

	return p, nil
}
