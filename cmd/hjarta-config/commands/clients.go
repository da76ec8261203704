package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/0xalexb/hjarta-config/secret"
	"github.com/0xalexb/hjarta-config/secret/awsparamstore"
	"github.com/0xalexb/hjarta-config/secret/awssecretsmanager"
	"github.com/0xalexb/hjarta-config/secret/azurekeyvault"
	"github.com/0xalexb/hjarta-config/secret/factory"
	"github.com/0xalexb/hjarta-config/secret/gcpsecretmanager"
	"github.com/0xalexb/hjarta-config/secret/vault"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	vaultapi "github.com/hashicorp/vault/api"
	"github.com/spf13/cobra"
)

// ErrVaultURLRequired is returned when the Key Vault backend is selected
// without a vault URL.
var ErrVaultURLRequired = errors.New("--azure-vault-url is required for azure-key-vault")

// backendFlags hold the settings used to build SDK clients.
type backendFlags struct {
	awsRegion     string
	awsProfile    string
	versionStage  string
	azureVaultURL string
	azurePin      bool
	vaultAddress  string
	vaultMount    string
}

func (b *backendFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringVar(&b.awsRegion, "aws-region", "", "AWS region (default from the shared AWS config)")
	flags.StringVar(&b.awsProfile, "aws-profile", "", "AWS shared config profile")
	flags.StringVar(&b.versionStage, "version-stage", "", "Secrets Manager version stage (default AWSCURRENT)")
	flags.StringVar(&b.azureVaultURL, "azure-vault-url", "", "Key Vault URL, e.g. https://my-vault.vault.azure.net")
	flags.BoolVar(&b.azurePin, "azure-pin-version", false, "request the version named in Key Vault references")
	flags.StringVar(&b.vaultAddress, "vault-address", "", "Vault address (default VAULT_ADDR)")
	flags.StringVar(&b.vaultMount, "vault-mount", vault.DefaultMount, "Vault KV v2 mount")
}

// provider builds the provider for the backend named by tag using ambient
// credentials. The returned function releases the client.
func (b *backendFlags) provider(ctx context.Context, tag string) (secret.Provider, func(), error) {
	kind, err := factory.ParseKind(tag)
	if err != nil {
		return nil, nil, err
	}

	switch kind {
	case factory.KindAWSParameterStore:
		return b.parameterStoreProvider(ctx)
	case factory.KindAWSSecretsManager:
		return b.secretsManagerProvider(ctx)
	case factory.KindAzureKeyVault:
		return b.azureProvider()
	case factory.KindGCPSecretManager:
		return gcpProvider(ctx)
	case factory.KindVault:
		return b.vaultProvider()
	}

	return nil, nil, fmt.Errorf("%w: %q", factory.ErrUnknownKind, tag)
}

func (b *backendFlags) loadAWSConfig(ctx context.Context) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if b.awsRegion != "" {
		opts = append(opts, awsconfig.WithRegion(b.awsRegion))
	}

	if b.awsProfile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(b.awsProfile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("loading AWS config: %w", err)
	}

	return cfg, nil
}

func (b *backendFlags) parameterStoreProvider(ctx context.Context) (secret.Provider, func(), error) {
	cfg, err := b.loadAWSConfig(ctx)
	if err != nil {
		return nil, nil, err
	}

	p, err := awsparamstore.New(ssm.NewFromConfig(cfg))
	if err != nil {
		return nil, nil, err
	}

	return p, func() {}, nil
}

func (b *backendFlags) secretsManagerProvider(ctx context.Context) (secret.Provider, func(), error) {
	cfg, err := b.loadAWSConfig(ctx)
	if err != nil {
		return nil, nil, err
	}

	p, err := awssecretsmanager.New(
		secretsmanager.NewFromConfig(cfg),
		awssecretsmanager.WithVersionStage(b.versionStage),
	)
	if err != nil {
		return nil, nil, err
	}

	return p, func() {}, nil
}

func gcpProvider(ctx context.Context) (secret.Provider, func(), error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("creating Secret Manager client: %w", err)
	}

	p, err := gcpsecretmanager.New(client)
	if err != nil {
		_ = client.Close()

		return nil, nil, err
	}

	return p, func() { _ = client.Close() }, nil
}

func (b *backendFlags) azureProvider() (secret.Provider, func(), error) {
	if b.azureVaultURL == "" {
		return nil, nil, ErrVaultURLRequired
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, nil, fmt.Errorf("creating Azure credential: %w", err)
	}

	client, err := azsecrets.NewClient(b.azureVaultURL, cred, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("creating Key Vault client: %w", err)
	}

	var opts []azurekeyvault.Option
	if b.azurePin {
		opts = append(opts, azurekeyvault.WithVersionPinning())
	}

	p, err := azurekeyvault.New(client, opts...)
	if err != nil {
		return nil, nil, err
	}

	return p, func() {}, nil
}

func (b *backendFlags) vaultProvider() (secret.Provider, func(), error) {
	cfg := vaultapi.DefaultConfig()
	if b.vaultAddress != "" {
		cfg.Address = b.vaultAddress
	}

	client, err := vaultapi.NewClient(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating Vault client: %w", err)
	}

	p, err := vault.FromClient(client, b.vaultMount)
	if err != nil {
		return nil, nil, err
	}

	return p, func() {}, nil
}
