package factory

import (
	"context"
	"testing"

	"github.com/0xalexb/hjarta-config/secret"
	"github.com/0xalexb/hjarta-config/secret/awsparamstore"
	"github.com/0xalexb/hjarta-config/secret/awssecretsmanager"
	"github.com/0xalexb/hjarta-config/secret/azurekeyvault"
	"github.com/0xalexb/hjarta-config/secret/gcpsecretmanager"
	"github.com/0xalexb/hjarta-config/secret/vault"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/googleapis/gax-go/v2"
	vaultapi "github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ssmClient struct{}

func (ssmClient) GetParameter(context.Context, *ssm.GetParameterInput, ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	return &ssm.GetParameterOutput{}, nil
}

func (ssmClient) GetParametersByPath(context.Context, *ssm.GetParametersByPathInput, ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error) {
	return &ssm.GetParametersByPathOutput{}, nil
}

type secretsManagerClient struct{}

func (secretsManagerClient) GetSecretValue(context.Context, *secretsmanager.GetSecretValueInput, ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	return &secretsmanager.GetSecretValueOutput{}, nil
}

type keyVaultClient struct{}

func (keyVaultClient) GetSecret(context.Context, string, string, *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error) {
	return azsecrets.GetSecretResponse{}, nil
}

type secretManagerClient struct{}

func (secretManagerClient) AccessSecretVersion(context.Context, *secretmanagerpb.AccessSecretVersionRequest, ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error) {
	return &secretmanagerpb.AccessSecretVersionResponse{}, nil
}

type kvClient struct{}

func (kvClient) Get(context.Context, string) (*vaultapi.KVSecret, error) {
	return &vaultapi.KVSecret{}, nil
}

type staticProvider struct{}

func (staticProvider) IsSecretReference(string) bool { return false }

func (staticProvider) ResolveSecret(context.Context, string) (secret.Value, error) {
	return secret.Text(""), nil
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		tag      string
		expected Kind
	}{
		{tag: "aws-parameter-store", expected: KindAWSParameterStore},
		{tag: "SSM", expected: KindAWSParameterStore},
		{tag: "aws-secrets-manager", expected: KindAWSSecretsManager},
		{tag: "SecretsManager", expected: KindAWSSecretsManager},
		{tag: "azure-key-vault", expected: KindAzureKeyVault},
		{tag: " keyvault ", expected: KindAzureKeyVault},
		{tag: "gcp-secret-manager", expected: KindGCPSecretManager},
		{tag: "secretmanager", expected: KindGCPSecretManager},
		{tag: "Vault", expected: KindVault},
		{tag: "", expected: ""},
	}

	for _, testCase := range testCases {
		t.Run(testCase.tag, func(t *testing.T) {
			t.Parallel()

			kind, err := ParseKind(testCase.tag)

			require.NoError(t, err)
			assert.Equal(t, testCase.expected, kind)
		})
	}

	_, err := ParseKind("consul")
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestResolve_ExplicitProviderWins(t *testing.T) {
	t.Parallel()

	explicit := staticProvider{}

	provider, err := Resolve(explicit, "ssm", secretsManagerClient{})

	require.NoError(t, err)
	assert.Equal(t, explicit, provider)
}

func TestResolve_NothingConfigured(t *testing.T) {
	t.Parallel()

	provider, err := Resolve(nil, "", nil)

	require.NoError(t, err)
	assert.Nil(t, provider)
}

func TestResolve_KindWithoutClient(t *testing.T) {
	t.Parallel()

	provider, err := Resolve(nil, "vault", nil)

	require.ErrorIs(t, err, secret.ErrNilClient)
	assert.Nil(t, provider)
}

func TestResolve_NilPointerClientMeansNoClient(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		tag    string
		client any
	}{
		{name: "parameter store", tag: "ssm", client: (*ssm.Client)(nil)},
		{name: "secrets manager", tag: "secretsmanager", client: (*secretsmanager.Client)(nil)},
		{name: "key vault", tag: "keyvault", client: (*azsecrets.Client)(nil)},
		{name: "vault", tag: "vault", client: (*vaultapi.Client)(nil)},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			provider, err := Resolve(nil, "", testCase.client)

			require.NoError(t, err)
			assert.Nil(t, provider)

			provider, err = Resolve(nil, testCase.tag, testCase.client)

			require.ErrorIs(t, err, secret.ErrNilClient)
			assert.Nil(t, provider)
		})
	}
}

func TestNew_NilPointerClient(t *testing.T) {
	t.Parallel()

	provider, err := New(KindAWSParameterStore, (*ssm.Client)(nil))

	require.ErrorIs(t, err, secret.ErrNilClient)
	assert.Nil(t, provider)
}

func TestResolve_ByKind(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		tag    string
		client any
		check  func(t *testing.T, provider secret.Provider)
	}{
		{
			name:   "parameter store",
			tag:    "ssm",
			client: ssmClient{},
			check: func(t *testing.T, provider secret.Provider) {
				t.Helper()
				assert.IsType(t, &awsparamstore.Provider{}, provider)
			},
		},
		{
			name:   "secrets manager",
			tag:    "aws-secrets-manager",
			client: secretsManagerClient{},
			check: func(t *testing.T, provider secret.Provider) {
				t.Helper()
				assert.IsType(t, &awssecretsmanager.Provider{}, provider)
			},
		},
		{
			name:   "key vault",
			tag:    "keyvault",
			client: keyVaultClient{},
			check: func(t *testing.T, provider secret.Provider) {
				t.Helper()
				assert.IsType(t, &azurekeyvault.Provider{}, provider)
			},
		},
		{
			name:   "secret manager",
			tag:    "gcp-secret-manager",
			client: secretManagerClient{},
			check: func(t *testing.T, provider secret.Provider) {
				t.Helper()
				assert.IsType(t, &gcpsecretmanager.Provider{}, provider)
			},
		},
		{
			name:   "vault kv",
			tag:    "vault",
			client: kvClient{},
			check: func(t *testing.T, provider secret.Provider) {
				t.Helper()
				assert.IsType(t, &vault.Provider{}, provider)
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			provider, err := Resolve(nil, testCase.tag, testCase.client)

			require.NoError(t, err)
			testCase.check(t, provider)
		})
	}
}

func TestResolve_ClientMismatch(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		tag    string
		client any
	}{
		{name: "ssm tag with secrets manager client", tag: "ssm", client: secretsManagerClient{}},
		{name: "key vault tag with gcp client", tag: "keyvault", client: secretManagerClient{}},
		{name: "vault tag with ssm client", tag: "vault", client: ssmClient{}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			provider, err := Resolve(nil, testCase.tag, testCase.client)

			require.ErrorIs(t, err, ErrClientMismatch)
			assert.Nil(t, provider)
		})
	}
}

func TestResolve_UnknownKind(t *testing.T) {
	t.Parallel()

	provider, err := Resolve(nil, "consul", kvClient{})

	require.ErrorIs(t, err, ErrUnknownKind)
	assert.Nil(t, provider)
}

func TestDetectKind(t *testing.T) {
	t.Parallel()

	vaultClient, err := vaultapi.NewClient(vaultapi.DefaultConfig())
	require.NoError(t, err)

	testCases := []struct {
		name     string
		client   any
		expected Kind
		ok       bool
	}{
		{name: "ssm", client: ssmClient{}, expected: KindAWSParameterStore, ok: true},
		{name: "secrets manager", client: secretsManagerClient{}, expected: KindAWSSecretsManager, ok: true},
		{name: "key vault", client: keyVaultClient{}, expected: KindAzureKeyVault, ok: true},
		{name: "secret manager", client: secretManagerClient{}, expected: KindGCPSecretManager, ok: true},
		{name: "vault kv", client: kvClient{}, expected: KindVault, ok: true},
		{name: "vault client", client: vaultClient, expected: KindVault, ok: true},
		{name: "sdk ssm client", client: &ssm.Client{}, expected: KindAWSParameterStore, ok: true},
		{name: "sdk secrets manager client", client: &secretsmanager.Client{}, expected: KindAWSSecretsManager, ok: true},
		{name: "sdk key vault client", client: &azsecrets.Client{}, expected: KindAzureKeyVault, ok: true},
		{name: "unknown", client: struct{}{}, expected: "", ok: false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			kind, ok := DetectKind(testCase.client)

			assert.Equal(t, testCase.ok, ok)
			assert.Equal(t, testCase.expected, kind)
		})
	}
}

func TestResolve_AutoDetect(t *testing.T) {
	t.Parallel()

	provider, err := Resolve(nil, "", secretManagerClient{})

	require.NoError(t, err)
	assert.IsType(t, &gcpsecretmanager.Provider{}, provider)
	assert.True(t, provider.IsSecretReference("projects/p/secrets/s/versions/1"))
}

func TestResolve_UnsupportedClient(t *testing.T) {
	t.Parallel()

	provider, err := Resolve(nil, "", "not a client")

	require.ErrorIs(t, err, ErrUnsupportedClient)
	assert.Nil(t, provider)
}
