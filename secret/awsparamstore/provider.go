package awsparamstore

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/0xalexb/hjarta-config/secret"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// pathSuffix marks a reference that resolves every parameter below a prefix.
const pathSuffix = "/*"

var referencePattern = regexp.MustCompile(`^(?:/\S*|arn:aws:ssm:[a-z0-9-]+:\d{12}:parameter/\S+)$`)

// Client captures the subset of the SSM client used by the provider.
// *ssm.Client satisfies this interface.
type Client interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// Provider resolves AWS Systems Manager Parameter Store references.
//
// A reference is a parameter name starting with "/" or a full parameter ARN.
// Names ending in "/*" resolve every parameter below the prefix, recursively
// and decrypted, into a list in the order the backend returns them.
type Provider struct {
	client   Client
	callOpts []func(*ssm.Options)
}

// Option configures the provider.
type Option func(*Provider)

// WithClientOptions forwards SSM call options to each request.
func WithClientOptions(opts ...func(*ssm.Options)) Option {
	return func(p *Provider) {
		p.callOpts = append(p.callOpts, opts...)
	}
}

// New constructs a Parameter Store provider.
func New(client Client, opts ...Option) (*Provider, error) {
	if client == nil {
		return nil, fmt.Errorf("awsparamstore: %w", secret.ErrNilClient)
	}

	p := &Provider{client: client}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// IsSecretReference reports whether value is a parameter name or ARN.
func (p *Provider) IsSecretReference(value string) bool {
	return referencePattern.MatchString(value)
}

// ResolveSecret fetches the parameter, or all parameters below a "/*" prefix.
func (p *Provider) ResolveSecret(ctx context.Context, ref string) (secret.Value, error) {
	if !p.IsSecretReference(ref) {
		return secret.Value{}, fmt.Errorf("awsparamstore: %w: %q", secret.ErrInvalidReference, ref)
	}

	if strings.HasSuffix(ref, pathSuffix) {
		return p.resolvePath(ctx, strings.TrimSuffix(ref, pathSuffix))
	}

	out, err := p.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(ref),
		WithDecryption: aws.Bool(true),
	}, p.callOpts...)
	if err != nil {
		return secret.Value{}, fmt.Errorf("awsparamstore: %w", err)
	}

	if out == nil || out.Parameter == nil || aws.ToString(out.Parameter.Value) == "" {
		return secret.Value{}, fmt.Errorf("awsparamstore: parameter %q: %w", ref, secret.ErrNotFound)
	}

	return secret.Text(aws.ToString(out.Parameter.Value)), nil
}

func (p *Provider) resolvePath(ctx context.Context, prefix string) (secret.Value, error) {
	if prefix == "" {
		prefix = "/"
	}

	paginator := ssm.NewGetParametersByPathPaginator(p.client, &ssm.GetParametersByPathInput{
		Path:           aws.String(prefix),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	})

	var values []string

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx, p.callOpts...)
		if err != nil {
			return secret.Value{}, fmt.Errorf("awsparamstore: %w", err)
		}

		for _, parameter := range page.Parameters {
			values = append(values, aws.ToString(parameter.Value))
		}
	}

	if len(values) == 0 {
		return secret.Value{}, fmt.Errorf("awsparamstore: path %q: %w", prefix, secret.ErrNotFound)
	}

	return secret.List(values), nil
}
