package awssecretsmanager

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/0xalexb/hjarta-config/secret"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// ErrNotUTF8 is returned when a binary secret is not valid UTF-8 text.
var ErrNotUTF8 = errors.New("binary secret is not valid UTF-8")

var referencePattern = regexp.MustCompile(`^arn:aws:secretsmanager:[a-z0-9-]+:\d{12}:secret:\S+$`)

// Client captures the subset of the AWS Secrets Manager client used by the
// provider. *secretsmanager.Client satisfies this interface.
type Client interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Provider resolves AWS Secrets Manager secret ARNs.
type Provider struct {
	client       Client
	versionStage *string
	callOpts     []func(*secretsmanager.Options)
}

// Option configures the provider.
type Option func(*Provider)

// WithVersionStage requests a specific version stage (defaults to AWSCURRENT).
func WithVersionStage(stage string) Option {
	return func(p *Provider) {
		if stage != "" {
			p.versionStage = aws.String(stage)
		}
	}
}

// WithClientOptions forwards Secrets Manager call options to each request.
func WithClientOptions(opts ...func(*secretsmanager.Options)) Option {
	return func(p *Provider) {
		p.callOpts = append(p.callOpts, opts...)
	}
}

// New constructs a Secrets Manager provider.
func New(client Client, opts ...Option) (*Provider, error) {
	if client == nil {
		return nil, fmt.Errorf("awssecretsmanager: %w", secret.ErrNilClient)
	}

	p := &Provider{client: client}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// IsSecretReference reports whether value is a Secrets Manager secret ARN.
func (p *Provider) IsSecretReference(value string) bool {
	return referencePattern.MatchString(value)
}

// ResolveSecret returns the SecretString of the secret, or its SecretBinary
// as UTF-8 text when the string is absent or empty.
func (p *Provider) ResolveSecret(ctx context.Context, ref string) (secret.Value, error) {
	if !p.IsSecretReference(ref) {
		return secret.Value{}, fmt.Errorf("awssecretsmanager: %w: %q", secret.ErrInvalidReference, ref)
	}

	input := &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(ref),
	}
	if p.versionStage != nil {
		input.VersionStage = p.versionStage
	}

	out, err := p.client.GetSecretValue(ctx, input, p.callOpts...)
	if err != nil {
		return secret.Value{}, fmt.Errorf("awssecretsmanager: %w", err)
	}

	if out == nil {
		return secret.Value{}, fmt.Errorf("awssecretsmanager: secret %q: %w", ref, secret.ErrNotFound)
	}

	if aws.ToString(out.SecretString) != "" {
		return secret.Text(aws.ToString(out.SecretString)), nil
	}

	// The SDK has already decoded the base64 wire form of SecretBinary.
	if len(out.SecretBinary) > 0 {
		if !utf8.Valid(out.SecretBinary) {
			return secret.Value{}, fmt.Errorf("awssecretsmanager: secret %q: %w", ref, ErrNotUTF8)
		}

		return secret.Text(string(out.SecretBinary)), nil
	}

	return secret.Value{}, fmt.Errorf("awssecretsmanager: secret %q contained no payload: %w", ref, secret.ErrNotFound)
}
