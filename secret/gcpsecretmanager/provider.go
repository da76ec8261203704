package gcpsecretmanager

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/0xalexb/hjarta-config/secret"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
)

// ErrNotUTF8 is returned with WithStrictUTF8 when a payload is not valid UTF-8 text.
var ErrNotUTF8 = errors.New("secret payload is not valid UTF-8")

var referencePattern = regexp.MustCompile(`^projects/[^/\s]+/secrets/[^/\s]+/versions/[^/\s]+$`)

// Client captures the subset of the Secret Manager client used by the
// provider. *secretmanager.Client satisfies this interface.
type Client interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
}

// Provider resolves Secret Manager version resource names.
//
// Payloads are decoded as UTF-8 with invalid bytes replaced by U+FFFD
// unless WithStrictUTF8 is set.
type Provider struct {
	client     Client
	callOpts   []gax.CallOption
	strictUTF8 bool
}

// Option configures the provider.
type Option func(*Provider)

// WithCallOptions forwards gax call options, such as retry settings, to each request.
func WithCallOptions(opts ...gax.CallOption) Option {
	return func(p *Provider) {
		p.callOpts = append(p.callOpts, opts...)
	}
}

// WithStrictUTF8 fails references whose payload is not valid UTF-8 with ErrNotUTF8.
func WithStrictUTF8() Option {
	return func(p *Provider) {
		p.strictUTF8 = true
	}
}

// New constructs a Secret Manager provider.
func New(client Client, opts ...Option) (*Provider, error) {
	if client == nil {
		return nil, fmt.Errorf("gcpsecretmanager: %w", secret.ErrNilClient)
	}

	p := &Provider{client: client}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// IsSecretReference reports whether value is a
// projects/<p>/secrets/<s>/versions/<v> resource name.
func (p *Provider) IsSecretReference(value string) bool {
	return referencePattern.MatchString(value)
}

// ResolveSecret accesses the secret version and returns its payload as text.
func (p *Provider) ResolveSecret(ctx context.Context, ref string) (secret.Value, error) {
	if !p.IsSecretReference(ref) {
		return secret.Value{}, fmt.Errorf("gcpsecretmanager: %w: %q", secret.ErrInvalidReference, ref)
	}

	resp, err := p.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: ref}, p.callOpts...)
	if err != nil {
		return secret.Value{}, fmt.Errorf("gcpsecretmanager: %w", err)
	}

	data := resp.GetPayload().GetData()
	if len(data) == 0 {
		return secret.Value{}, fmt.Errorf("gcpsecretmanager: secret %q: %w", ref, secret.ErrNotFound)
	}

	if utf8.Valid(data) {
		return secret.Text(string(data)), nil
	}

	if p.strictUTF8 {
		return secret.Value{}, fmt.Errorf("gcpsecretmanager: secret %q: %w", ref, ErrNotUTF8)
	}

	return secret.Text(strings.ToValidUTF8(string(data), string(utf8.RuneError))), nil
}
