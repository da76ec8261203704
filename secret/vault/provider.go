package vault

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/0xalexb/hjarta-config/secret"

	"github.com/goccy/go-json"
	vaultapi "github.com/hashicorp/vault/api"
)

const (
	// Prefix marks a configuration string as a Vault reference.
	Prefix = "vault:"

	// DefaultMount is the KV v2 mount used by FromClient when none is given.
	DefaultMount = "secret"

	defaultField   = "value"
	fieldSeparator = "#"
)

// ErrFieldNotFound is returned when the requested field is absent from the secret data.
var ErrFieldNotFound = errors.New("field not found")

// KV is the subset of the Vault KV v2 API the provider depends on.
// *vaultapi.KVv2 satisfies this interface.
type KV interface {
	Get(ctx context.Context, path string) (*vaultapi.KVSecret, error)
}

// Provider resolves vault:<path>[#<field>] references against a KV v2 mount.
type Provider struct {
	kv KV
}

// New creates a Vault provider using the given KV accessor.
func New(kv KV) (*Provider, error) {
	if kv == nil {
		return nil, fmt.Errorf("vault: %w", secret.ErrNilClient)
	}

	return &Provider{kv: kv}, nil
}

// FromClient derives a KV accessor from a Vault client and mount path.
func FromClient(client *vaultapi.Client, mount string) (*Provider, error) {
	if client == nil {
		return nil, fmt.Errorf("vault: %w", secret.ErrNilClient)
	}

	if mount == "" {
		mount = DefaultMount
	}

	return New(client.KVv2(mount))
}

// IsSecretReference reports whether value carries the vault: prefix and a path.
func (p *Provider) IsSecretReference(value string) bool {
	_, _, ok := parseReference(value)

	return ok
}

// ResolveSecret reads the secret at the referenced path.
//
// With an explicit #field the field is returned. Otherwise the "value"
// field, then a single field, and finally the whole data map as JSON.
func (p *Provider) ResolveSecret(ctx context.Context, ref string) (secret.Value, error) {
	path, field, ok := parseReference(ref)
	if !ok {
		return secret.Value{}, fmt.Errorf("vault: %w: %q", secret.ErrInvalidReference, ref)
	}

	kvSecret, err := p.kv.Get(ctx, path)
	if err != nil {
		return secret.Value{}, fmt.Errorf("vault: %w", err)
	}

	if kvSecret == nil || len(kvSecret.Data) == 0 {
		return secret.Value{}, fmt.Errorf("vault: secret %q: %w", path, secret.ErrNotFound)
	}

	text, err := extract(kvSecret.Data, field)
	if err != nil {
		return secret.Value{}, fmt.Errorf("vault: secret %q: %w", path, err)
	}

	return secret.Text(text), nil
}

func parseReference(value string) (string, string, bool) {
	rest, ok := strings.CutPrefix(value, Prefix)
	if !ok {
		return "", "", false
	}

	path, field, _ := strings.Cut(rest, fieldSeparator)
	path = strings.Trim(path, "/")

	if path == "" || strings.ContainsAny(path, " \t\n") {
		return "", "", false
	}

	return path, field, true
}

func extract(data map[string]any, field string) (string, error) {
	if field != "" {
		value, ok := data[field]
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrFieldNotFound, field)
		}

		return asString(value)
	}

	if value, ok := data[defaultField]; ok {
		if text, err := asString(value); err == nil {
			return text, nil
		}
	}

	if len(data) == 1 {
		for _, value := range data {
			if text, err := asString(value); err == nil {
				return text, nil
			}
		}
	}

	buf, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshal secret data: %w", err)
	}

	return string(buf), nil
}

func asString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	case bool, int, int64, float64:
		return fmt.Sprint(v), nil
	default:
		buf, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("encode field: %w", err)
		}

		return string(buf), nil
	}
}
